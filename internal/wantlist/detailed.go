package wantlist

import (
	"go.uber.org/zap"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/cards"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/collection"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/reconcile"
)

// Kind tells whether a section belongs to a themed collection or a deck.
type Kind string

const (
	KindCollection Kind = "collection"
	KindDeck       Kind = "deck"
)

// Section is one wanted list of the detailed want-list, annotated in place.
type Section struct {
	Owner    string // Collection or deck name
	Kind     Kind
	Unit     int    // Unit index inside the collection, -1 otherwise
	Deck     string // Linked deck name, empty for a collection's own list
	Part     collection.Part
	Elements []*collection.Element
	Pairs    []reconcile.Pair // Owned copy serving each covered element, in match order
}

// Shortfall returns the elements no owned copy covers.
func (s *Section) Shortfall() []*collection.Element {
	return reconcile.Unmarked(s.Elements, reconcile.MarkOwned)
}

// Covered returns the elements an owned copy covers.
func (s *Section) Covered() []*collection.Element {
	out := make([]*collection.Element, 0, len(s.Elements))
	for _, e := range s.Elements {
		if e.Marked(reconcile.MarkOwned) {
			out = append(out, e)
		}
	}
	return out
}

// DetailedWantList keeps the per-collection and per-deck structure of the
// want-list, with covered requirements marked rather than removed.
type DetailedWantList struct {
	Sections  []*Section
	Remaining []*collection.Element // Owned copies left after every section was served
}

// Shortfall returns every uncovered element, section by section.
func (d *DetailedWantList) Shortfall() []*collection.Element {
	var out []*collection.Element
	for _, s := range d.Sections {
		out = append(out, s.Shortfall()...)
	}
	return out
}

// OwnerShortfall is the shortfall of one collection or deck.
type OwnerShortfall struct {
	Owner    string
	Kind     Kind
	Elements []*collection.Element
}

// ByOwner groups the shortfall by collection or deck, in processing order.
func (d *DetailedWantList) ByOwner() []OwnerShortfall {
	var out []OwnerShortfall
	index := make(map[Kind]map[string]int)
	for _, s := range d.Sections {
		if index[s.Kind] == nil {
			index[s.Kind] = make(map[string]int)
		}
		i, ok := index[s.Kind][s.Owner]
		if !ok {
			i = len(out)
			index[s.Kind][s.Owner] = i
			out = append(out, OwnerShortfall{Owner: s.Owner, Kind: s.Kind})
		}
		out[i].Elements = append(out[i].Elements, s.Shortfall()...)
	}
	return out
}

// CreateDetailedWantList reconciles every wanted list against one shared
// owned pool.
//
// Lists are served in a fixed order: collections first, and within a
// collection each unit's decks Main, Extra, Side before the collection's own
// remaining cards; then the top-level decks. A first pass over all lists
// matches exact printings, a second pass matches remaining requirements by
// global id. An owned copy consumed by one list is unavailable to every
// later list.
func (e *Engine) CreateDetailedWantList(reg *collection.Registry, owned *collection.Owned) *DetailedWantList {
	d := &DetailedWantList{Sections: buildSections(reg)}
	pool := owned.Clone().Flatten()

	for _, cmp := range []cards.Comparator{cards.ExactPrinting, cards.ByGlobalID} {
		matched := 0
		for _, s := range d.Sections {
			res := reconcile.Annotate(s.Elements, pool, cmp, e.options.Filter, reconcile.MarkOwned)
			if res.Matched > 0 {
				s.Pairs = append(s.Pairs, res.Pairs...)
				matched += res.Matched
				pool = reconcile.Unmarked(pool, reconcile.MarkOwned)
			}
		}
		e.logger.Debug("detailed want-list pass complete",
			zap.Int("matched", matched),
			zap.Int("owned_left", len(pool)),
		)
	}

	d.Remaining = pool
	return d
}

// buildSections lays out the wanted lists in processing order, on clones.
func buildSections(reg *collection.Registry) []*Section {
	var sections []*Section
	add := func(s *Section) {
		if len(s.Elements) > 0 {
			sections = append(sections, s)
		}
	}

	for _, c := range reg.Collections {
		m := c.MergeUnits()
		for ui, unit := range m.Units {
			for _, deck := range unit {
				for _, part := range deck.Sections() {
					add(&Section{
						Owner:    c.Name,
						Kind:     KindCollection,
						Unit:     ui,
						Deck:     deck.Name,
						Part:     part.Part,
						Elements: part.Cards,
					})
				}
			}
		}
		add(&Section{
			Owner:    c.Name,
			Kind:     KindCollection,
			Unit:     -1,
			Part:     collection.PartOwn,
			Elements: m.Leftover,
		})
	}

	for _, deck := range reg.Decks {
		cp := deck.Clone()
		for _, part := range cp.Sections() {
			add(&Section{
				Owner:    deck.Name,
				Kind:     KindDeck,
				Unit:     -1,
				Deck:     deck.Name,
				Part:     part.Part,
				Elements: part.Cards,
			})
		}
	}

	return sections
}
