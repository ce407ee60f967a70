package export

import (
	"time"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage/models"
)

// RunRow is one recorded run.
type RunRow struct {
	ID        string    `csv:"id" json:"id"`
	Kind      string    `csv:"kind" json:"kind"`
	Needed    int       `csv:"needed" json:"needed"`
	Covered   int       `csv:"covered" json:"covered"`
	Surplus   int       `csv:"surplus" json:"surplus"`
	CreatedAt time.Time `csv:"created_at" json:"created_at"`
}

// EntryRow is one line written by a run.
type EntryRow struct {
	RunID   string `csv:"run_id" json:"run_id"`
	Seq     int    `csv:"seq" json:"seq"`
	Section string `csv:"section" json:"section,omitempty"`
	Line    string `csv:"line" json:"line"`
}

// RunRows converts stored runs to export rows, keeping their order.
func RunRows(runs []*models.Run) []RunRow {
	rows := make([]RunRow, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, RunRow{
			ID:        r.ID,
			Kind:      r.Kind,
			Needed:    r.Needed,
			Covered:   r.Covered,
			Surplus:   r.Surplus,
			CreatedAt: r.CreatedAt,
		})
	}
	return rows
}

// EntryRows converts stored run lines to export rows, keeping their order.
func EntryRows(entries []*models.RunEntry) []EntryRow {
	rows := make([]EntryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, EntryRow{RunID: e.RunID, Seq: e.Seq, Section: e.Section, Line: e.Line})
	}
	return rows
}
