package collection

// Part names one list of a deck, or the own card list of a themed collection.
type Part string

const (
	PartMain  Part = "main"
	PartExtra Part = "extra"
	PartSide  Part = "side"
	PartOwn   Part = "own"
)

// Deck is a named triple of card lists.
type Deck struct {
	Name  string
	Main  []*Element
	Extra []*Element
	Side  []*Element
}

// Section is one named list of a deck.
type Section struct {
	Part  Part
	Cards []*Element
}

// Sections returns the deck lists in Main, Extra, Side order.
func (d *Deck) Sections() []Section {
	return []Section{
		{Part: PartMain, Cards: d.Main},
		{Part: PartExtra, Cards: d.Extra},
		{Part: PartSide, Cards: d.Side},
	}
}

// List returns a pointer to the list for part, or nil for PartOwn.
func (d *Deck) List(part Part) *[]*Element {
	switch part {
	case PartMain:
		return &d.Main
	case PartExtra:
		return &d.Extra
	case PartSide:
		return &d.Side
	default:
		return nil
	}
}

// Flatten returns Main, Extra and Side concatenated.
func (d *Deck) Flatten() []*Element {
	out := make([]*Element, 0, d.Len())
	out = append(out, d.Main...)
	out = append(out, d.Extra...)
	out = append(out, d.Side...)
	return out
}

// Len returns the number of cards across all lists.
func (d *Deck) Len() int {
	return len(d.Main) + len(d.Extra) + len(d.Side)
}

// Clone deep-copies the deck.
func (d *Deck) Clone() *Deck {
	return &Deck{
		Name:  d.Name,
		Main:  CloneAll(d.Main),
		Extra: CloneAll(d.Extra),
		Side:  CloneAll(d.Side),
	}
}
