package wantlist

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/cards"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/collection"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/reconcile"
)

func el(global, print string) *collection.Element {
	return collection.NewElement(&cards.Card{GlobalID: global, PrintCode: print})
}

func strs(list []*collection.Element) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.String())
	}
	return out
}

func ownedOf(list ...*collection.Element) *collection.Owned {
	return &collection.Owned{Boxes: []*collection.Box{{
		Name:   "Binder",
		Groups: []*collection.Group{{Name: "All", Cards: list}},
	}}}
}

func TestCreateWantList(t *testing.T) {
	deck := &collection.Deck{
		Name: "Dragons",
		Main: []*collection.Element{el("A", "P1"), el("B", "P2"), el("C", "P5")},
	}
	reg := collection.NewRegistry([]*collection.Deck{deck}, nil)
	owned := ownedOf(el("A", "P1"), el("A", "P1"), el("B", "P3"))

	wl := New(nil, Options{}).CreateWantList(reg, owned)

	assert.Equal(t, []string{"P5"}, strs(wl.Needed))
	assert.Equal(t, []string{"P1", "P3"}, strs(wl.Covered))
	assert.Equal(t, []string{"P1"}, strs(wl.Surplus))
	assert.Equal(t, Summary{Kind: "wantlist", Needed: 1, Covered: 2, Surplus: 1}, wl.Summary())
}

func TestCreateWantListDoesNotTouchInputs(t *testing.T) {
	deck := &collection.Deck{Name: "D", Main: []*collection.Element{el("A", "P1")}}
	reg := collection.NewRegistry([]*collection.Deck{deck}, nil)
	owned := ownedOf(el("A", "P1"))

	engine := New(nil, Options{})
	first := engine.CreateWantList(reg, owned)
	second := engine.CreateWantList(reg, owned)

	assert.NotSame(t, owned.Flatten()[0], first.Covered[0])
	assert.Equal(t, strs(first.Covered), strs(second.Covered))
}

func TestCreateDetailedWantListSharesPool(t *testing.T) {
	// One owned copy, two decks wanting it: only the first deck is served.
	first := &collection.Deck{Name: "First", Main: []*collection.Element{el("A", "P1")}}
	second := &collection.Deck{Name: "Second", Main: []*collection.Element{el("A", "P1")}}
	reg := collection.NewRegistry([]*collection.Deck{first, second}, nil)

	d := New(nil, Options{}).CreateDetailedWantList(reg, ownedOf(el("A", "P1")))

	require.Len(t, d.Sections, 2)
	assert.Empty(t, d.Sections[0].Shortfall())
	assert.Equal(t, []string{"P1"}, strs(d.Sections[1].Shortfall()))
	assert.Empty(t, d.Remaining)
	assert.False(t, first.Main[0].Marked(reconcile.MarkOwned), "source decks are not annotated")
}

func TestCreateDetailedWantListPrefersExactPrinting(t *testing.T) {
	// Deck 1 wants any printing of A, deck 2 wants exactly P2. Exact matches
	// are served before global-id matches, so deck 2 gets its printing.
	one := &collection.Deck{Name: "One", Main: []*collection.Element{el("A", "P9")}}
	two := &collection.Deck{Name: "Two", Main: []*collection.Element{el("A", "P2")}}
	reg := collection.NewRegistry([]*collection.Deck{one, two}, nil)
	owned := ownedOf(el("A", "P2"), el("A", "P3"))

	d := New(nil, Options{}).CreateDetailedWantList(reg, owned)

	assert.Empty(t, d.Shortfall())

	require.Len(t, d.Sections[1].Pairs, 1)
	assert.Equal(t, "P2", d.Sections[1].Pairs[0].Pool.Card.PrintCode, "deck Two gets its exact printing")
	assert.Same(t, d.Sections[1].Elements[0], d.Sections[1].Pairs[0].Source)

	require.Len(t, d.Sections[0].Pairs, 1)
	assert.Equal(t, "P3", d.Sections[0].Pairs[0].Pool.Card.PrintCode, "deck One falls back to another printing")
	assert.Empty(t, d.Remaining)
}

func TestCreateDetailedWantListIgnoresPersistedOwnedFlag(t *testing.T) {
	// The O flag read from a list is data, not the coverage marker: a wanted
	// line written as "P1,O" still needs an owned copy.
	wanted := el("A", "P1")
	wanted.Owned = true
	deck := &collection.Deck{Name: "Deck", Main: []*collection.Element{wanted}}
	reg := collection.NewRegistry([]*collection.Deck{deck}, nil)

	d := New(nil, Options{}).CreateDetailedWantList(reg, ownedOf())
	assert.Equal(t, []string{"P1,O"}, strs(d.Shortfall()))

	d = New(nil, Options{}).CreateDetailedWantList(reg, ownedOf(el("A", "P1")))
	assert.Empty(t, d.Shortfall())
	assert.Empty(t, d.Remaining, "the flagged line consumes an owned copy")
}

func TestCreateDetailedWantListOrdersCollectionsFirst(t *testing.T) {
	linked := &collection.Deck{
		Name:  "Linked",
		Main:  []*collection.Element{el("A", "P1")},
		Extra: []*collection.Element{el("X", "P7")},
	}
	theme := &collection.ThemeCollection{
		Name:  "Theme",
		Cards: []*collection.Element{el("Z", "P8")},
		Units: [][]*collection.Deck{{linked}},
	}
	top := &collection.Deck{Name: "Top", Main: []*collection.Element{el("A", "P1")}}
	reg := collection.NewRegistry([]*collection.Deck{top, linked}, []*collection.ThemeCollection{theme})

	d := New(nil, Options{}).CreateDetailedWantList(reg, ownedOf(el("A", "P1")))

	type key struct {
		Owner string
		Deck  string
		Part  collection.Part
	}
	var got []key
	for _, s := range d.Sections {
		got = append(got, key{s.Owner, s.Deck, s.Part})
	}
	want := []key{
		{"Theme", "Linked", collection.PartMain},
		{"Theme", "Linked", collection.PartExtra},
		{"Theme", "", collection.PartOwn},
		{"Top", "Top", collection.PartMain},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("section order mismatch (-want +got):\n%s", diff)
	}

	byOwner := d.ByOwner()
	require.Len(t, byOwner, 2)
	assert.Equal(t, "Theme", byOwner[0].Owner)
	assert.Equal(t, []string{"P7", "P8"}, strs(byOwner[0].Elements))
	assert.Equal(t, []string{"P1"}, strs(byOwner[1].Elements), "the collection consumed the only copy")
}

func TestCreateDetailedWantListFilter(t *testing.T) {
	keep := el("A", "P1")
	keep.DontRemove = true
	deck := &collection.Deck{Name: "D", Main: []*collection.Element{keep, el("B", "P2")}}
	reg := collection.NewRegistry([]*collection.Deck{deck}, nil)

	engine := New(nil, Options{Filter: reconcile.Filter{Excluded: []string{"D"}}})
	d := engine.CreateDetailedWantList(reg, ownedOf(el("A", "P1"), el("B", "P2")))

	assert.Equal(t, []string{"P1,D"}, strs(d.Shortfall()))
	assert.Equal(t, []string{"P1"}, strs(d.Remaining))
}

func TestCreateDetailedWantListIsRepeatable(t *testing.T) {
	deck := &collection.Deck{Name: "D", Main: []*collection.Element{el("A", "P1"), el("B", "P2"), el("A", "P1")}}
	reg := collection.NewRegistry([]*collection.Deck{deck}, nil)
	owned := ownedOf(el("A", "P3"), el("B", "P2"))
	engine := New(nil, Options{})

	first := strs(engine.CreateDetailedWantList(reg, owned).Shortfall())
	second := strs(engine.CreateDetailedWantList(reg, owned).Shortfall())

	assert.Equal(t, []string{"P1"}, first)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}

func TestCrossCheckThirdParty(t *testing.T) {
	needed := []*collection.Element{el("A", "P1"), el("B", "P2"), el("C", "P3")}
	offered := []*collection.Element{el("B", "P9"), el("A", "P1"), el("D", "P4")}

	res := New(nil, Options{}).CrossCheckThirdParty(offered, needed)

	assert.Equal(t, []string{"P1", "P9"}, strs(res.Obtainable))
	assert.Equal(t, []string{"P1", "P2"}, strs(res.Wanted))
	assert.Equal(t, []string{"P4"}, strs(res.Unneeded))
	assert.Equal(t, []string{"P3"}, strs(res.StillMissing))
}
