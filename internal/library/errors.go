package library

import "fmt"

// MissingDeckError reports a collection unit naming a deck that is not in the library.
type MissingDeckError struct {
	Collection string
	Deck       string
}

func (e *MissingDeckError) Error() string {
	return fmt.Sprintf("collection %q links unknown deck %q", e.Collection, e.Deck)
}
