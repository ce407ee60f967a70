package library

import (
	"fmt"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/collection"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/deckio"
)

// ownedFile is the YAML layout of the owned collection:
//
//	boxes:
//	  - name: Binder
//	    groups:
//	      - name: Dragons
//	        cards:
//	          - LOB-EN001,*1O
//	          - "89631139"
//	    boxes:
//	      - name: Sleeve box
//	        groups: [...]
type ownedFile struct {
	Boxes []boxFile `yaml:"boxes"`
}

type boxFile struct {
	Name   string      `yaml:"name"`
	Groups []groupFile `yaml:"groups"`
	Boxes  []boxFile   `yaml:"boxes"`
}

type groupFile struct {
	Name  string   `yaml:"name"`
	Cards []string `yaml:"cards"`
}

// collectionFile is the YAML layout of a themed collection. Units list the
// names of linked deck files; decks of one unit are variants of one build.
//
//	name: Dragons
//	archetypes: [Blue-Eyes]
//	cards:
//	  - LOB-EN001,D
//	exceptions:
//	  - LOB-EN010
//	units:
//	  - [blue-eyes-a, blue-eyes-b]
//	  - [chaos-dragons]
type collectionFile struct {
	Name       string     `yaml:"name"`
	Archetypes []string   `yaml:"archetypes"`
	Cards      []string   `yaml:"cards"`
	Exceptions []string   `yaml:"exceptions"`
	Units      [][]string `yaml:"units"`
}

func (f *ownedFile) build(resolve collection.Resolver) (*collection.Owned, error) {
	owned := &collection.Owned{Boxes: make([]*collection.Box, 0, len(f.Boxes))}
	for i := range f.Boxes {
		box, err := f.Boxes[i].build(resolve)
		if err != nil {
			return nil, err
		}
		owned.Boxes = append(owned.Boxes, box)
	}
	return owned, nil
}

func (f *boxFile) build(resolve collection.Resolver) (*collection.Box, error) {
	box := &collection.Box{Name: f.Name}
	for _, g := range f.Groups {
		list, err := deckio.ParseLines(g.Cards, resolve)
		if err != nil {
			return nil, fmt.Errorf("box %q group %q: %w", f.Name, g.Name, err)
		}
		box.Groups = append(box.Groups, &collection.Group{Name: g.Name, Cards: list})
	}
	for i := range f.Boxes {
		sub, err := f.Boxes[i].build(resolve)
		if err != nil {
			return nil, fmt.Errorf("box %q: %w", f.Name, err)
		}
		box.Boxes = append(box.Boxes, sub)
	}
	return box, nil
}

// build resolves the collection against the loaded decks.
func (f *collectionFile) build(decks map[string]*collection.Deck, resolve collection.Resolver) (*collection.ThemeCollection, error) {
	c := &collection.ThemeCollection{
		Name:       f.Name,
		Archetypes: f.Archetypes,
	}

	var err error
	if c.Cards, err = deckio.ParseLines(f.Cards, resolve); err != nil {
		return nil, fmt.Errorf("collection %q cards: %w", f.Name, err)
	}
	if c.Exceptions, err = deckio.ParseLines(f.Exceptions, resolve); err != nil {
		return nil, fmt.Errorf("collection %q exceptions: %w", f.Name, err)
	}

	for _, names := range f.Units {
		unit := make([]*collection.Deck, 0, len(names))
		for _, name := range names {
			deck, ok := decks[name]
			if !ok {
				return nil, &MissingDeckError{Collection: f.Name, Deck: name}
			}
			unit = append(unit, deck)
		}
		if len(unit) > 0 {
			c.Units = append(c.Units, unit)
		}
	}

	return c, nil
}
