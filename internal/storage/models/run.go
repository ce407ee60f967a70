package models

import "time"

// Run records one reconciliation run.
type Run struct {
	ID        string
	Kind      string // "wantlist", "detailed" or "thirdparty"
	Needed    int
	Covered   int
	Surplus   int
	CreatedAt time.Time
}

// RunEntry is one element line written by a run.
type RunEntry struct {
	RunID   string
	Seq     int
	Section string // Owner/deck/part for detailed runs, bucket name otherwise
	Line    string
}
