package deckio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/cards"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/collection"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/wantlist"
)

func strs(list []*collection.Element) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.String())
	}
	return out
}

func TestReadElements(t *testing.T) {
	input := `# binder page 1
LOB-EN001,*1O

89631139
  SDK-001 , D+
`
	list, err := ReadElements(strings.NewReader(input), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"LOB-EN001,*1O", "89631139", "SDK-001,D+"}, strs(list))
	assert.Equal(t, "89631139", list[1].Card.PassCode)
	assert.True(t, list[2].DontRemove)
}

func TestReadElementsReportsLine(t *testing.T) {
	input := "LOB-EN001\n\nLOB-EN002,*x\n"

	_, err := ReadElements(strings.NewReader(input), nil)
	require.Error(t, err)

	var fe *collection.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 3, fe.Line)
	assert.Contains(t, err.Error(), "line 3")
}

func TestReadElementsResolverError(t *testing.T) {
	boom := errors.New("catalog offline")
	resolve := func(string) (*cards.Card, error) { return nil, boom }

	_, err := ReadElements(strings.NewReader("LOB-EN001\n"), resolve)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "line 1")
}

func TestWriteElementsRoundTrip(t *testing.T) {
	input := "LOB-EN001,*2O\nSDK-001\n46986414,D\n"
	list, err := ReadElements(strings.NewReader(input), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteElements(&buf, list))
	assert.Equal(t, input, buf.String())
}

func TestParseLines(t *testing.T) {
	list, err := ParseLines([]string{"LOB-EN001,O", "", "# note", "SDK-001"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"LOB-EN001,O", "SDK-001"}, strs(list))

	_, err = ParseLines([]string{"LOB-EN001", "LOB-EN002,Q"}, nil)
	var fe *collection.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 2, fe.Line)
}

func TestReadDeck(t *testing.T) {
	input := `#created by someone
#main
LOB-EN001
LOB-EN002,*1
#extra
LOB-EN003
!side
LOB-EN004
LOB-EN005
`
	deck, err := ReadDeck("Dragons", strings.NewReader(input), nil)
	require.NoError(t, err)

	assert.Equal(t, "Dragons", deck.Name)
	assert.Equal(t, []string{"LOB-EN001", "LOB-EN002,*1"}, strs(deck.Main))
	assert.Equal(t, []string{"LOB-EN003"}, strs(deck.Extra))
	assert.Equal(t, []string{"LOB-EN004", "LOB-EN005"}, strs(deck.Side))
}

func TestReadDeckWithoutHeaders(t *testing.T) {
	deck, err := ReadDeck("Loose", strings.NewReader("LOB-EN001\nLOB-EN002\n"), nil)
	require.NoError(t, err)
	assert.Len(t, deck.Main, 2)
	assert.Empty(t, deck.Extra)
	assert.Empty(t, deck.Side)
}

func TestReadDeckError(t *testing.T) {
	_, err := ReadDeck("Broken", strings.NewReader("#main\nLOB-EN001,*\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `deck "Broken"`)

	var fe *collection.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 2, fe.Line)
}

func TestWriteDeckRoundTrip(t *testing.T) {
	deck := &collection.Deck{Name: "Dragons"}
	deck.Main, _ = ParseLines([]string{"LOB-EN001,O", "LOB-EN002"}, nil)
	deck.Side, _ = ParseLines([]string{"LOB-EN004,D"}, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteDeck(&buf, deck))
	assert.Equal(t, "#main\nLOB-EN001,O\nLOB-EN002\n#extra\n!side\nLOB-EN004,D\n", buf.String())

	back, err := ReadDeck("Dragons", &buf, nil)
	require.NoError(t, err)
	assert.Equal(t, strs(deck.Main), strs(back.Main))
	assert.Empty(t, back.Extra)
	assert.Equal(t, strs(deck.Side), strs(back.Side))
}

func reconcileFixture(t *testing.T) (*collection.Registry, *collection.Owned) {
	deck, err := ReadDeck("Dragons", strings.NewReader("#main\nLOB-EN001\nLOB-EN002\n"), nil)
	require.NoError(t, err)
	owned, err := ParseLines([]string{"LOB-EN001"}, nil)
	require.NoError(t, err)

	reg := collection.NewRegistry([]*collection.Deck{deck}, nil)
	return reg, &collection.Owned{Boxes: []*collection.Box{{
		Name:   "Binder",
		Groups: []*collection.Group{{Name: "All", Cards: owned}},
	}}}
}

func TestWriteWantList(t *testing.T) {
	reg, owned := reconcileFixture(t)
	wl := wantlist.New(nil, wantlist.Options{}).CreateWantList(reg, owned)

	var buf bytes.Buffer
	require.NoError(t, WriteWantList(&buf, wl))
	assert.Equal(t, "# want-list: 1 needed, 1 covered, 0 surplus\nLOB-EN002\n", buf.String())

	back, err := ReadElements(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"LOB-EN002"}, strs(back))
}

func TestWriteDetailedWantList(t *testing.T) {
	reg, owned := reconcileFixture(t)
	d := wantlist.New(nil, wantlist.Options{}).CreateDetailedWantList(reg, owned)

	var buf bytes.Buffer
	require.NoError(t, WriteDetailedWantList(&buf, d, true))
	assert.Equal(t, `# detailed want-list: 1 needed, 1 covered, 0 owned left

# deck Dragons [main]
LOB-EN002
# have LOB-EN001
`, buf.String())

	back, err := ReadElements(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"LOB-EN002"}, strs(back))
}

func TestWriteDetailedWantListSkipsCoveredSections(t *testing.T) {
	deck, err := ReadDeck("Done", strings.NewReader("LOB-EN001\n"), nil)
	require.NoError(t, err)
	_, owned := reconcileFixture(t)
	reg := collection.NewRegistry([]*collection.Deck{deck}, nil)

	d := wantlist.New(nil, wantlist.Options{}).CreateDetailedWantList(reg, owned)

	var buf bytes.Buffer
	require.NoError(t, WriteDetailedWantList(&buf, d, false))
	assert.Equal(t, "# detailed want-list: 0 needed, 1 covered, 0 owned left\n", buf.String())
}

func TestWriteThirdParty(t *testing.T) {
	needed, err := ParseLines([]string{"LOB-EN002", "LOB-EN003"}, nil)
	require.NoError(t, err)
	offer, err := ParseLines([]string{"LOB-EN003", "LOB-EN009"}, nil)
	require.NoError(t, err)

	res := wantlist.New(nil, wantlist.Options{}).CrossCheckThirdParty(offer, needed)

	var buf bytes.Buffer
	require.NoError(t, WriteThirdParty(&buf, res))
	assert.Equal(t, `# third-party check: 1 obtainable, 1 still missing, 1 unneeded

# obtainable
LOB-EN003

# still missing
# LOB-EN002
`, buf.String())
}
