package cards

import (
	"regexp"
	"strings"
)

// Comparator decides whether two cards match for reconciliation purposes.
// Every comparator in this package returns false when either card lacks the
// key it compares, so unidentifiable cards never match.
type Comparator func(a, b *Card) bool

// ByKey returns a comparator matching cards that share a non-empty value for k.
func ByKey(k Key) Comparator {
	return func(a, b *Card) bool {
		va, vb := a.Key(k), b.Key(k)
		return va != "" && va == vb
	}
}

var (
	// ByPassCode matches cards by pass code.
	ByPassCode = ByKey(KeyPassCode)

	// ByPrintCode matches cards by print code.
	ByPrintCode = ByKey(KeyPrintCode)

	// ByGlobalID matches cards by global id, regardless of printing.
	ByGlobalID = ByKey(KeyGlobalID)
)

// ExactPrinting matches the same printing: equal print codes and, when both
// cards carry an image path, the same artwork.
func ExactPrinting(a, b *Card) bool {
	if !ByPrintCode(a, b) {
		return false
	}
	if a.ImagePath != "" && b.ImagePath != "" {
		return a.ImagePath == b.ImagePath
	}
	return true
}

var (
	passCodePattern  = regexp.MustCompile(`^\d{5,10}$`)
	printCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,6}-[A-Z]{0,3}\d{2,4}$`)
)

// ClassifyCode guesses which identity key a bare code refers to.
// Digits-only codes are pass codes, set-prefixed codes are print codes, and
// anything else is treated as a global id.
func ClassifyCode(code string) Key {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch {
	case passCodePattern.MatchString(code):
		return KeyPassCode
	case printCodePattern.MatchString(code):
		return KeyPrintCode
	default:
		return KeyGlobalID
	}
}

// FromCode builds a card carrying only the key that code refers to.
func FromCode(code string) *Card {
	code = strings.TrimSpace(code)
	card := &Card{}
	if code == "" {
		return card
	}
	switch ClassifyCode(code) {
	case KeyPassCode:
		card.PassCode = code
	case KeyPrintCode:
		card.PrintCode = strings.ToUpper(code)
	default:
		card.GlobalID = code
	}
	return card
}
