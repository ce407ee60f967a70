package collection

// Registry aggregates the top-level decks and the themed collections.
// A deck linked by any collection is reachable only through that collection.
type Registry struct {
	Decks       []*Deck
	Collections []*ThemeCollection
}

// NewRegistry builds a registry, dropping linked decks from the top-level list.
func NewRegistry(decks []*Deck, collections []*ThemeCollection) *Registry {
	linked := make(map[*Deck]bool)
	linkedNames := make(map[string]bool)
	for _, c := range collections {
		for _, d := range c.Decks() {
			linked[d] = true
			linkedNames[d.Name] = true
		}
	}

	r := &Registry{Collections: collections}
	for _, d := range decks {
		if linked[d] || linkedNames[d.Name] {
			continue
		}
		r.Decks = append(r.Decks, d)
	}
	return r
}

// Flatten returns every wanted card: collections first, then top-level decks.
func (r *Registry) Flatten() []*Element {
	var out []*Element
	for _, c := range r.Collections {
		out = append(out, c.ToList()...)
	}
	for _, d := range r.Decks {
		out = append(out, d.Flatten()...)
	}
	return out
}

// Collection returns the collection with the given name.
func (r *Registry) Collection(name string) (*ThemeCollection, bool) {
	for _, c := range r.Collections {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Deck returns the top-level deck with the given name.
func (r *Registry) Deck(name string) (*Deck, bool) {
	for _, d := range r.Decks {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// DeckNames returns the names of the top-level decks in order.
func (r *Registry) DeckNames() []string {
	names := make([]string, 0, len(r.Decks))
	for _, d := range r.Decks {
		names = append(names, d.Name)
	}
	return names
}
