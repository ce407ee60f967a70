package deckio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/collection"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/wantlist"
)

// Reports are element lists with '#' headers, so ReadElements reads a
// report back as the list of cards it asks for.

// WriteWantList writes the needed cards of a flat want-list.
func WriteWantList(w io.Writer, wl *wantlist.WantList) error {
	rw := newReportWriter(w)
	s := wl.Summary()
	rw.comment("want-list: %d needed, %d covered, %d surplus", s.Needed, s.Covered, s.Surplus)
	rw.elements(wl.Needed)
	return rw.flush()
}

// WriteDetailedWantList writes the shortfall of every section under a header
// naming its owner. With showCovered, covered requirements are listed as
// comments too.
func WriteDetailedWantList(w io.Writer, d *wantlist.DetailedWantList, showCovered bool) error {
	rw := newReportWriter(w)
	s := d.Summary()
	rw.comment("detailed want-list: %d needed, %d covered, %d owned left", s.Needed, s.Covered, s.Surplus)

	for _, sec := range d.Sections {
		short := sec.Shortfall()
		if len(short) == 0 && !showCovered {
			continue
		}
		rw.blank()
		rw.comment("%s", SectionTitle(sec))
		rw.elements(short)
		if showCovered {
			for _, e := range sec.Covered() {
				rw.comment("have %s", e.String())
			}
		}
	}

	return rw.flush()
}

// WriteThirdParty writes the cards a third party can supply, then what stays missing.
func WriteThirdParty(w io.Writer, res *wantlist.ThirdPartyResult) error {
	rw := newReportWriter(w)
	s := res.Summary()
	rw.comment("third-party check: %d obtainable, %d still missing, %d unneeded", s.Covered, s.Needed, s.Surplus)

	rw.blank()
	rw.comment("obtainable")
	rw.elements(res.Obtainable)

	rw.blank()
	rw.comment("still missing")
	for _, e := range res.StillMissing {
		rw.comment("%s", e.String())
	}

	return rw.flush()
}

// SectionTitle names a detailed want-list section.
func SectionTitle(s *wantlist.Section) string {
	switch {
	case s.Kind == wantlist.KindDeck:
		return fmt.Sprintf("deck %s [%s]", s.Owner, s.Part)
	case s.Part == collection.PartOwn:
		return fmt.Sprintf("collection %s [%s]", s.Owner, s.Part)
	default:
		return fmt.Sprintf("collection %s unit %d deck %s [%s]", s.Owner, s.Unit+1, s.Deck, s.Part)
	}
}

// reportWriter keeps the first write error so callers check once.
type reportWriter struct {
	bw  *bufio.Writer
	err error
}

func newReportWriter(w io.Writer) *reportWriter {
	return &reportWriter{bw: bufio.NewWriter(w)}
}

func (r *reportWriter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.bw, format, args...)
}

func (r *reportWriter) comment(format string, args ...any) {
	r.printf("# "+format+"\n", args...)
}

func (r *reportWriter) blank() {
	r.printf("\n")
}

func (r *reportWriter) elements(list []*collection.Element) {
	for _, e := range list {
		r.printf("%s\n", e.String())
	}
}

func (r *reportWriter) flush() error {
	if r.err != nil {
		return fmt.Errorf("write report: %w", r.err)
	}
	return r.bw.Flush()
}
