package deckio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/collection"
)

// Deck file section headers.
const (
	headerMain  = "#main"
	headerExtra = "#extra"
	headerSide  = "!side"
)

// ReadDeck reads a deck file:
//
//	#created by ...
//	#main
//	89631139
//	LOB-EN001,*1O
//	#extra
//	...
//	!side
//	...
//
// Cards before any header belong to the main deck.
func ReadDeck(name string, r io.Reader, resolve collection.Resolver) (*collection.Deck, error) {
	deck := &collection.Deck{Name: name}
	list := &deck.Main

	err := scanLines(r, func(lineNo int, line string) error {
		switch strings.ToLower(line) {
		case headerMain:
			list = &deck.Main
			return nil
		case headerExtra:
			list = &deck.Extra
			return nil
		case headerSide:
			list = &deck.Side
			return nil
		}
		if isComment(line) {
			return nil
		}
		e, err := parseLine(lineNo, line, resolve)
		if err != nil {
			return err
		}
		*list = append(*list, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("deck %q: %w", name, err)
	}

	return deck, nil
}

// WriteDeck writes a deck file with every section header present.
func WriteDeck(w io.Writer, deck *collection.Deck) error {
	bw := bufio.NewWriter(w)
	sections := []struct {
		header string
		cards  []*collection.Element
	}{
		{headerMain, deck.Main},
		{headerExtra, deck.Extra},
		{headerSide, deck.Side},
	}

	for _, s := range sections {
		if _, err := fmt.Fprintln(bw, s.header); err != nil {
			return fmt.Errorf("write deck %q: %w", deck.Name, err)
		}
		for _, e := range s.cards {
			if _, err := fmt.Fprintln(bw, e.String()); err != nil {
				return fmt.Errorf("write deck %q: %w", deck.Name, err)
			}
		}
	}

	return bw.Flush()
}
