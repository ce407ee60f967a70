package collection

// Group is a named, ordered list of card elements inside a box.
type Group struct {
	Name  string
	Cards []*Element
}

// Box is a physical storage container of card groups, optionally holding
// nested boxes.
type Box struct {
	Name   string
	Groups []*Group
	Boxes  []*Box
}

// Flatten returns every element of the box, groups first, then nested boxes,
// in declaration order.
func (b *Box) Flatten() []*Element {
	var out []*Element
	for _, g := range b.Groups {
		out = append(out, g.Cards...)
	}
	for _, sub := range b.Boxes {
		out = append(out, sub.Flatten()...)
	}
	return out
}

// Clone deep-copies the box and its elements.
func (b *Box) Clone() *Box {
	cp := &Box{Name: b.Name}
	for _, g := range b.Groups {
		cp.Groups = append(cp.Groups, &Group{Name: g.Name, Cards: CloneAll(g.Cards)})
	}
	for _, sub := range b.Boxes {
		cp.Boxes = append(cp.Boxes, sub.Clone())
	}
	return cp
}

// Owned is the physical inventory: an ordered list of boxes.
type Owned struct {
	Boxes []*Box
}

// Flatten returns every owned element in box order.
func (o *Owned) Flatten() []*Element {
	if o == nil {
		return nil
	}
	var out []*Element
	for _, b := range o.Boxes {
		out = append(out, b.Flatten()...)
	}
	return out
}

// Count returns the number of owned elements.
func (o *Owned) Count() int {
	return len(o.Flatten())
}

// Clone deep-copies the inventory. A reconciliation run works on a clone so
// the loaded inventory is never annotated.
func (o *Owned) Clone() *Owned {
	if o == nil {
		return &Owned{}
	}
	cp := &Owned{Boxes: make([]*Box, 0, len(o.Boxes))}
	for _, b := range o.Boxes {
		cp.Boxes = append(cp.Boxes, b.Clone())
	}
	return cp
}
