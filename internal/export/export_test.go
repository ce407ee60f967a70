package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage/models"
)

type testRow struct {
	ID      int     `csv:"id"`
	Name    string  `csv:"name"`
	Value   float64 `csv:"value"`
	Active  bool
	Pointer *string `csv:"pointer"`
	Hidden  string  `csv:"-"`
	private string
}

func stringPtr(s string) *string { return &s }

func TestExportCSV(t *testing.T) {
	data := []*testRow{
		{ID: 1, Name: "Blue-Eyes", Value: 10.5, Active: true, Pointer: stringPtr("x"), Hidden: "no", private: "no"},
		{ID: 2, Name: "Dark, Magician", Value: 2},
	}

	var buf bytes.Buffer
	require.NoError(t, NewExporter(Options{Format: FormatCSV}).Export(&buf, data))

	assert.Equal(t, "id,name,value,Active,pointer\n"+
		"1,Blue-Eyes,10.50,true,x\n"+
		"2,\"Dark, Magician\",2.00,false,\n", buf.String())
}

func TestExportCSVRequiresStructSlice(t *testing.T) {
	e := NewExporter(Options{Format: FormatCSV})
	var buf bytes.Buffer

	assert.Error(t, e.Export(&buf, testRow{}))
	assert.Error(t, e.Export(&buf, []string{"a"}))

	require.NoError(t, e.Export(&buf, []testRow{}))
	assert.Empty(t, buf.String())
}

func TestExportJSON(t *testing.T) {
	created := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	rows := RunRows([]*models.Run{{ID: "r1", Kind: "wantlist", Needed: 3, CreatedAt: created}})

	var buf bytes.Buffer
	require.NoError(t, NewExporter(Options{Format: FormatJSON, PrettyJSON: true}).Export(&buf, rows))
	assert.True(t, strings.HasPrefix(buf.String(), "[\n  {\n"))

	var decoded []RunRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, rows, decoded)
}

func TestExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "entries.csv")
	e := NewExporter(Options{Format: FormatCSV})
	entries := EntryRows([]*models.RunEntry{
		{RunID: "r1", Seq: 0, Section: "deck dragons [main]", Line: "LOB-EN001"},
		{RunID: "r1", Seq: 1, Line: "SDK-001,*1"},
	})

	require.NoError(t, e.ExportFile(path, false, entries))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "run_id,seq,section,line\nr1,0,deck dragons [main],LOB-EN001\nr1,1,,\"SDK-001,*1\"\n", string(data))

	assert.Error(t, e.ExportFile(path, false, entries), "existing files are kept")
	assert.NoError(t, e.ExportFile(path, true, entries))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestGenerateFilename(t *testing.T) {
	name := GenerateFilename("runs", FormatCSV)
	assert.True(t, strings.HasPrefix(name, "runs_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
}
