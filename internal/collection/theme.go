package collection

import "github.com/ramonehamilton/TCG-Collection-Manager/internal/cards"

// ThemeCollection is a named want-list with its own cards and linked deck units.
//
// Each unit is a set of decks that are variants of the same build: a card is
// required once per unit, not once per deck.
type ThemeCollection struct {
	Name       string
	Cards      []*Element
	Exceptions []*Element // Deck cards matching these are never added
	Units      [][]*Deck
	Archetypes []string
}

// Merge is the effective card list of a collection, kept in the shape it was
// built in: one deck per linked deck of each unit, holding only the cards
// that unit contributes, followed by the collection cards no unit emitted.
type Merge struct {
	Units    [][]*Deck
	Leftover []*Element
}

// List flattens the merge: every unit deck's Main, Extra, Side, then leftovers.
func (m *Merge) List() []*Element {
	var out []*Element
	for _, unit := range m.Units {
		for _, d := range unit {
			out = append(out, d.Flatten()...)
		}
	}
	return append(out, m.Leftover...)
}

// slot locates an emitted element so it can be replaced in place.
type slot struct {
	list *[]*Element
	idx  int
	own  int // Index into the collection cards, -1 when the deck's own element was emitted
}

// MergeUnits builds the collection's effective card list.
//
// Cards of each unit are emitted deck by deck, skipping any identity already
// emitted for the same unit. A matching collection card is emitted in place
// of the deck's element so the collection's annotations win. Collection cards
// whose identity no unit emitted are appended afterwards; a collection card
// flagged DontRemove replaces a deck-sourced entry of the same identity
// instead of being dropped. Emitted elements are clones.
func (c *ThemeCollection) MergeUnits() *Merge {
	byPrint, byPass := c.lookupMaps()
	excepted := c.exceptionSet()

	m := &Merge{Units: make([][]*Deck, 0, len(c.Units))}
	emitted := make(map[string][]*slot)
	ownUsed := make(map[int]bool)

	for _, unit := range c.Units {
		seen := make(map[string]bool)
		unitOwn := make(map[int]bool)
		merged := make([]*Deck, 0, len(unit))
		for _, deck := range unit {
			out := &Deck{Name: deck.Name}
			for _, section := range deck.Sections() {
				list := out.List(section.Part)
				for _, e := range section.Cards {
					if isExcepted(excepted, e.Card) {
						continue
					}
					id := e.Identity()
					if id != "" && seen[id] {
						continue
					}

					s := &slot{list: list, own: -1}
					pick := e
					if i, ok := lookup(byPrint, byPass, e.Card); ok {
						// Another printing already pulled this collection card into the unit.
						if unitOwn[i] {
							if id != "" {
								seen[id] = true
							}
							continue
						}
						s.own = i
						unitOwn[i] = true
						ownUsed[i] = true
						pick = c.Cards[i]
					}
					*list = append(*list, pick.Clone())
					s.idx = len(*list) - 1

					for _, key := range []string{id, pick.Identity()} {
						if key != "" && !seen[key] {
							seen[key] = true
							emitted[key] = append(emitted[key], s)
						}
					}
				}
			}
			merged = append(merged, out)
		}
		m.Units = append(m.Units, merged)
	}

	for i, e := range c.Cards {
		if ownUsed[i] {
			continue
		}
		id := e.Identity()
		slots := emitted[id]
		if id == "" || len(slots) == 0 {
			m.Leftover = append(m.Leftover, e.Clone())
			continue
		}
		if !e.DontRemove {
			continue
		}
		if !replaceDeckSlot(slots, i, e) {
			m.Leftover = append(m.Leftover, e.Clone())
		}
	}

	return m
}

// ToList returns the collection's effective card list.
func (c *ThemeCollection) ToList() []*Element {
	return c.MergeUnits().List()
}

// Decks returns every linked deck, unit by unit.
func (c *ThemeCollection) Decks() []*Deck {
	var out []*Deck
	for _, unit := range c.Units {
		out = append(out, unit...)
	}
	return out
}

// HasArchetype reports whether the collection is tagged with archetype.
func (c *ThemeCollection) HasArchetype(archetype string) bool {
	for _, a := range c.Archetypes {
		if a == archetype {
			return true
		}
	}
	return false
}

// lookupMaps indexes the collection cards by print code and by pass code.
// When both a specific-artwork and a plain entry share a key, the
// specific-artwork entry is kept.
func (c *ThemeCollection) lookupMaps() (byPrint, byPass map[string]int) {
	byPrint = make(map[string]int)
	byPass = make(map[string]int)
	put := func(m map[string]int, key string, i int) {
		if key == "" {
			return
		}
		if j, ok := m[key]; ok && (c.Cards[j].SpecificArtwork || !c.Cards[i].SpecificArtwork) {
			return
		}
		m[key] = i
	}
	for i, e := range c.Cards {
		put(byPrint, e.Card.Key(cards.KeyPrintCode), i)
		put(byPass, e.Card.Key(cards.KeyPassCode), i)
	}
	return byPrint, byPass
}

func (c *ThemeCollection) exceptionSet() map[string]bool {
	set := make(map[string]bool)
	for _, e := range c.Exceptions {
		if v := e.Card.Key(cards.KeyPrintCode); v != "" {
			set["print:"+v] = true
		}
		if v := e.Card.Key(cards.KeyPassCode); v != "" {
			set["pass:"+v] = true
		}
	}
	return set
}

func isExcepted(set map[string]bool, card *cards.Card) bool {
	if len(set) == 0 {
		return false
	}
	if v := card.Key(cards.KeyPrintCode); v != "" && set["print:"+v] {
		return true
	}
	if v := card.Key(cards.KeyPassCode); v != "" && set["pass:"+v] {
		return true
	}
	return false
}

func lookup(byPrint, byPass map[string]int, card *cards.Card) (int, bool) {
	if v := card.Key(cards.KeyPrintCode); v != "" {
		if i, ok := byPrint[v]; ok {
			return i, true
		}
	}
	if v := card.Key(cards.KeyPassCode); v != "" {
		if i, ok := byPass[v]; ok {
			return i, true
		}
	}
	return 0, false
}

// replaceDeckSlot swaps the first deck-sourced slot for the collection card.
func replaceDeckSlot(slots []*slot, own int, e *Element) bool {
	for _, s := range slots {
		if s.own >= 0 {
			continue
		}
		(*s.list)[s.idx] = e.Clone()
		s.own = own
		return true
	}
	return false
}
