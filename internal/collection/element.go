// Package collection holds the owned and wanted card hierarchies: card
// elements with their annotation flags, boxes of card groups, decks, themed
// collections and the registry of decks and collections.
package collection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/cards"
)

// Flag characters of the element line grammar: <code>[,[*artwork]][O][D][+]
const (
	flagSeparator  = ','
	flagArtwork    = '*'
	flagOwned      = 'O'
	flagDontRemove = 'D'
	flagInDeck     = '+'
)

// ErrEmptyCode is returned when an element line has no card code.
var ErrEmptyCode = errors.New("empty card code")

// FormatError reports a malformed element annotation.
type FormatError struct {
	Line int    // 1-based line number, 0 when unknown
	Text string // Offending text
	Err  error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: malformed card element %q: %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("malformed card element %q: %v", e.Text, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Marker records reconciliation state on an element, e.g. "already covered by
// an owned copy". Markers are kept apart from the persisted flags.
type Marker string

// Flags are the persisted annotations of an element.
type Flags struct {
	SpecificArtwork bool
	Artwork         int
	Owned           bool
	DontRemove      bool
	InDeck          bool
}

// ParseFlags parses the annotation text that follows the comma of an element line.
func ParseFlags(text string) (Flags, error) {
	var f Flags
	text = strings.TrimSpace(text)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case flagArtwork:
			j := i + 1
			for j < len(text) && text[j] >= '0' && text[j] <= '9' {
				j++
			}
			if j == i+1 {
				return Flags{}, &FormatError{Text: text, Err: errors.New("missing artwork number")}
			}
			n, err := strconv.Atoi(text[i+1 : j])
			if err != nil {
				return Flags{}, &FormatError{Text: text, Err: fmt.Errorf("invalid artwork number: %w", err)}
			}
			f.SpecificArtwork = true
			f.Artwork = n
			i = j - 1
		case flagOwned:
			f.Owned = true
		case flagDontRemove:
			f.DontRemove = true
		case flagInDeck:
			f.InDeck = true
		case ' ', '\t':
		default:
			return Flags{}, &FormatError{Text: text, Err: fmt.Errorf("unknown flag %q", text[i])}
		}
	}
	return f, nil
}

// String renders the flags in canonical order.
func (f Flags) String() string {
	var sb strings.Builder
	if f.SpecificArtwork {
		sb.WriteByte(flagArtwork)
		sb.WriteString(strconv.Itoa(f.Artwork))
	}
	if f.Owned {
		sb.WriteByte(flagOwned)
	}
	if f.DontRemove {
		sb.WriteByte(flagDontRemove)
	}
	if f.InDeck {
		sb.WriteByte(flagInDeck)
	}
	return sb.String()
}

// Resolver turns a card code into a card record.
type Resolver func(code string) (*cards.Card, error)

// Element is one card slot in a list: a card reference plus its annotations.
type Element struct {
	Card *cards.Card
	Code string // Code the element was read with; derived from the card when empty
	Flags

	marks []Marker
}

// NewElement creates an element for a card with no annotations.
func NewElement(card *cards.Card) *Element {
	return &Element{Card: card}
}

// ParseElement parses one element line. resolve may be nil, in which case
// the card is built from the code alone.
func ParseElement(line string, resolve Resolver) (*Element, error) {
	line = strings.TrimSpace(line)
	code, flagText, _ := strings.Cut(line, string(flagSeparator))
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &FormatError{Text: line, Err: ErrEmptyCode}
	}

	flags, err := ParseFlags(flagText)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Text = line
		}
		return nil, err
	}

	var card *cards.Card
	if resolve != nil {
		card, err = resolve(code)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", code, err)
		}
	} else {
		card = cards.FromCode(code)
	}

	return &Element{Card: card, Code: code, Flags: flags}, nil
}

// CardCode returns the code used when the element is written out.
func (e *Element) CardCode() string {
	if e.Code != "" {
		return e.Code
	}
	for _, k := range []cards.Key{cards.KeyPrintCode, cards.KeyPassCode, cards.KeyGlobalID} {
		if v := e.Card.Key(k); v != "" {
			return v
		}
	}
	return ""
}

// FlagText returns the persisted annotation text, without markers.
func (e *Element) FlagText() string {
	return e.Flags.String()
}

// AnnotationText returns the annotation text with reconciliation markers
// appended. Tag filters are evaluated against it.
func (e *Element) AnnotationText() string {
	text := e.FlagText()
	for _, m := range e.marks {
		text += string(m)
	}
	return text
}

// String renders the element in the line grammar.
func (e *Element) String() string {
	flags := e.FlagText()
	if flags == "" {
		return e.CardCode()
	}
	return e.CardCode() + string(flagSeparator) + flags
}

// Identity returns the print code, falling back to the pass code.
func (e *Element) Identity() string {
	if id := e.Card.Key(cards.KeyPrintCode); id != "" {
		return id
	}
	return e.Card.Key(cards.KeyPassCode)
}

// Mark records a marker on the element. Marking twice is a no-op.
func (e *Element) Mark(m Marker) {
	if !e.Marked(m) {
		e.marks = append(e.marks, m)
	}
}

// Marked reports whether the element carries m.
func (e *Element) Marked(m Marker) bool {
	for _, have := range e.marks {
		if have == m {
			return true
		}
	}
	return false
}

// ClearMarks removes every marker.
func (e *Element) ClearMarks() {
	e.marks = nil
}

// Clone returns a copy of the element sharing the card record.
func (e *Element) Clone() *Element {
	cp := *e
	if e.marks != nil {
		cp.marks = append([]Marker(nil), e.marks...)
	}
	return &cp
}

// CloneAll clones every element of list into a new slice.
func CloneAll(list []*Element) []*Element {
	if list == nil {
		return nil
	}
	out := make([]*Element, len(list))
	for i, e := range list {
		out[i] = e.Clone()
	}
	return out
}
