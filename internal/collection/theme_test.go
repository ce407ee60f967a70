package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/cards"
)

func el(print, pass string) *Element {
	return NewElement(&cards.Card{PrintCode: print, PassCode: pass})
}

func codes(list []*Element) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.String())
	}
	return out
}

func TestMergeUnitsDedupWithinUnit(t *testing.T) {
	v1 := &Deck{Name: "Dragons v1", Main: []*Element{el("LOB-EN001", "89631139"), el("LOB-EN005", "")}}
	v2 := &Deck{Name: "Dragons v2", Main: []*Element{el("LOB-EN001", "89631139"), el("SDK-002", "")}}
	c := &ThemeCollection{Name: "Dragons", Units: [][]*Deck{{v1, v2}}}

	assert.Equal(t, []string{"LOB-EN001", "LOB-EN005", "SDK-002"}, codes(c.ToList()))
}

func TestMergeUnitsOncePerUnit(t *testing.T) {
	a := &Deck{Name: "A", Main: []*Element{el("LOB-EN001", "")}}
	b := &Deck{Name: "B", Main: []*Element{el("LOB-EN001", "")}}
	c := &ThemeCollection{Name: "Two builds", Units: [][]*Deck{{a}, {b}}}

	assert.Equal(t, []string{"LOB-EN001", "LOB-EN001"}, codes(c.ToList()))
}

func TestMergeUnitsPrefersCollectionEntries(t *testing.T) {
	plain := el("LOB-EN001", "89631139")
	artwork := el("LOB-EN001", "89631139")
	artwork.SpecificArtwork = true
	artwork.Artwork = 2
	artwork.Owned = true

	deck := &Deck{Name: "Dragons", Main: []*Element{el("LOB-EN001", "89631139")}}
	c := &ThemeCollection{
		Name:  "Dragons",
		Cards: []*Element{plain, artwork},
		Units: [][]*Deck{{deck}},
	}

	got := c.ToList()
	require.Len(t, got, 1, "the plain entry shares the identity and is not re-added")
	assert.Equal(t, "LOB-EN001,*2O", got[0].String())
	assert.NotSame(t, artwork, got[0], "emitted elements are clones")
}

func TestMergeUnitsLookupByPassCode(t *testing.T) {
	own := el("", "89631139")
	own.DontRemove = true
	deck := &Deck{Name: "Dragons", Extra: []*Element{el("SDK-001", "89631139")}}
	c := &ThemeCollection{Cards: []*Element{own}, Units: [][]*Deck{{deck}}}

	m := c.MergeUnits()
	require.Len(t, m.Units[0][0].Extra, 1)
	assert.Equal(t, "89631139,D", m.Units[0][0].Extra[0].String())
	assert.Empty(t, m.Leftover)
}

func TestMergeUnitsCollectionCardOncePerUnitAcrossPrintings(t *testing.T) {
	own := el("LOB-EN001", "89631139")
	own.SpecificArtwork = true
	own.Artwork = 2

	tests := []struct {
		name   string
		v1, v2 *Element
	}{
		{"reprint first", el("SDK-001", "89631139"), el("LOB-EN001", "89631139")},
		{"collection printing first", el("LOB-EN001", "89631139"), el("SDK-001", "89631139")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v1 := &Deck{Name: "v1", Main: []*Element{tt.v1}}
			v2 := &Deck{Name: "v2", Main: []*Element{tt.v2}}
			c := &ThemeCollection{Cards: []*Element{own}, Units: [][]*Deck{{v1, v2}}}

			assert.Equal(t, []string{"LOB-EN001,*2"}, codes(c.ToList()))
		})
	}
}

func TestMergeUnitsAppendsLeftovers(t *testing.T) {
	deck := &Deck{Name: "D", Main: []*Element{el("LOB-EN001", "")}}
	c := &ThemeCollection{
		Cards: []*Element{el("MRD-EN001", ""), el("MRD-EN001", ""), el("LOB-EN001", "")},
		Units: [][]*Deck{{deck}},
	}

	assert.Equal(t, []string{"LOB-EN001", "MRD-EN001", "MRD-EN001"}, codes(c.ToList()))
}

func TestMergeUnitsDontRemoveKeepsCollectionMetadata(t *testing.T) {
	deckCard := el("LOB-EN001", "")
	deckCard.InDeck = true

	keep := el("LOB-EN001", "")
	keep.DontRemove = true

	a := &Deck{Name: "A", Main: []*Element{deckCard}}
	c := &ThemeCollection{Cards: []*Element{keep}, Units: [][]*Deck{{a}}}

	got := c.ToList()
	require.Len(t, got, 1)
	assert.Equal(t, "LOB-EN001,D", got[0].String())
}

func TestMergeUnitsDontRemoveAppearsExactlyOnce(t *testing.T) {
	artwork := el("LOB-EN001", "")
	artwork.SpecificArtwork = true
	artwork.Artwork = 1

	keep := el("LOB-EN001", "")
	keep.DontRemove = true

	first := &Deck{Name: "first", Main: []*Element{el("LOB-EN001", "")}}
	plain := &Deck{Name: "plain", Main: []*Element{el("XXX-000", "")}}
	c := &ThemeCollection{
		Cards: []*Element{artwork, keep},
		Units: [][]*Deck{{first}, {plain}},
	}

	got := codes(c.ToList())
	count := 0
	for _, s := range got {
		if s == "LOB-EN001,D" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Contains(t, got, "LOB-EN001,*1", "specific artwork entry is kept")
}

func TestReplaceDeckSlotInPlace(t *testing.T) {
	list := []*Element{el("LOB-EN001", ""), el("LOB-EN005", ""), el("LOB-EN007", "")}
	keep := el("LOB-EN005", "")
	keep.DontRemove = true

	fromCollection := &slot{list: &list, idx: 0, own: 3}
	fromDeck := &slot{list: &list, idx: 1, own: -1}

	require.True(t, replaceDeckSlot([]*slot{fromCollection, fromDeck}, 0, keep))
	assert.Equal(t, []string{"LOB-EN001", "LOB-EN005,D", "LOB-EN007"}, codes(list))
	assert.Equal(t, 0, fromDeck.own)

	assert.False(t, replaceDeckSlot([]*slot{fromCollection, fromDeck}, 1, keep), "no deck-sourced slot left")
}

func TestMergeUnitsSkipsExceptions(t *testing.T) {
	deck := &Deck{Name: "D", Main: []*Element{el("LOB-EN001", "89631139"), el("LOB-EN005", "")}}
	c := &ThemeCollection{
		Exceptions: []*Element{el("", "89631139")},
		Units:      [][]*Deck{{deck}},
	}

	assert.Equal(t, []string{"LOB-EN005"}, codes(c.ToList()))
}

func TestMergeUnitsKeepsUnidentifiableCards(t *testing.T) {
	blank := NewElement(&cards.Card{GlobalID: "4007"})
	deck := &Deck{Name: "D", Main: []*Element{blank, NewElement(&cards.Card{GlobalID: "4007"})}}
	c := &ThemeCollection{Units: [][]*Deck{{deck}}}

	assert.Len(t, c.ToList(), 2, "cards without print or pass code are never deduplicated")
}

func TestRegistryExcludesLinkedDecks(t *testing.T) {
	linked := &Deck{Name: "Linked", Main: []*Element{el("LOB-EN001", "")}}
	standalone := &Deck{Name: "Standalone", Main: []*Element{el("MRD-EN001", "")}}
	c := &ThemeCollection{Name: "C", Units: [][]*Deck{{linked}}}

	r := NewRegistry([]*Deck{linked, standalone}, []*ThemeCollection{c})

	assert.Equal(t, []string{"Standalone"}, r.DeckNames())
	assert.Equal(t, []string{"LOB-EN001", "MRD-EN001"}, codes(r.Flatten()), "collections come first")

	_, ok := r.Collection("C")
	assert.True(t, ok)
	_, ok = r.Deck("Linked")
	assert.False(t, ok)
}

func TestOwnedFlattenAndClone(t *testing.T) {
	inner := &Box{Name: "inner", Groups: []*Group{{Name: "g2", Cards: []*Element{el("C", "")}}}}
	owned := &Owned{Boxes: []*Box{{
		Name:   "outer",
		Groups: []*Group{{Name: "g1", Cards: []*Element{el("A", ""), el("B", "")}}},
		Boxes:  []*Box{inner},
	}}}

	assert.Equal(t, []string{"A", "B", "C"}, codes(owned.Flatten()))
	assert.Equal(t, 3, owned.Count())

	cp := owned.Clone()
	cp.Flatten()[0].Mark("O")
	assert.False(t, owned.Flatten()[0].Marked("O"))
	assert.Equal(t, 0, (*Owned)(nil).Count())
}
