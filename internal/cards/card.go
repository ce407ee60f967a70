// Package cards defines the card record and the identity rules used to decide
// whether two card records denote the same card.
package cards

import "strings"

// DefaultLocale is used when a name is requested for a locale the card has no entry for.
const DefaultLocale = "en"

// Card represents one printed card.
//
// A card is identified by up to three independent keys. Any of them may be
// empty, which means the key is absent for that printing.
type Card struct {
	// Identity keys
	GlobalID  string `json:"global_id" yaml:"global_id"`   // Database-wide card id, shared by every printing
	PassCode  string `json:"pass_code" yaml:"pass_code"`   // 8-digit code printed on the card
	PrintCode string `json:"print_code" yaml:"print_code"` // Set code of one printing (e.g. "LOB-EN001")

	// Display information
	Names     map[string]string `json:"names" yaml:"names"` // Locale -> name
	Type      string            `json:"type" yaml:"type"`
	ImagePath string            `json:"image_path" yaml:"image_path"`

	// Gameplay stats
	Attack  int `json:"attack" yaml:"attack"`
	Defense int `json:"defense" yaml:"defense"`
	Level   int `json:"level" yaml:"level"`

	Price float64 `json:"price" yaml:"price"`
}

// Key selects one of the identity keys of a card.
type Key int

const (
	KeyPassCode Key = iota
	KeyPrintCode
	KeyGlobalID
)

// keyPriority is the fixed order in which SameCard checks keys.
var keyPriority = []Key{KeyPassCode, KeyPrintCode, KeyGlobalID}

// String returns the key name.
func (k Key) String() string {
	switch k {
	case KeyPassCode:
		return "pass_code"
	case KeyPrintCode:
		return "print_code"
	case KeyGlobalID:
		return "global_id"
	default:
		return "unknown"
	}
}

// Key returns the value of the given identity key, or "" when absent.
func (c *Card) Key(k Key) string {
	if c == nil {
		return ""
	}
	switch k {
	case KeyPassCode:
		return strings.TrimSpace(c.PassCode)
	case KeyPrintCode:
		return strings.TrimSpace(c.PrintCode)
	case KeyGlobalID:
		return strings.TrimSpace(c.GlobalID)
	default:
		return ""
	}
}

// HasIdentity reports whether the card carries at least one identity key.
func (c *Card) HasIdentity() bool {
	for _, k := range keyPriority {
		if c.Key(k) != "" {
			return true
		}
	}
	return false
}

// SameCard reports whether c and other denote the same card under the given keys.
// Keys are checked in the fixed order pass code, print code, global id, and the
// first key that both cards carry with equal values decides a match. With no
// keys given all three are considered.
func (c *Card) SameCard(other *Card, keys ...Key) bool {
	if c == nil || other == nil {
		return false
	}
	wanted := keys
	if len(wanted) == 0 {
		wanted = keyPriority
	}
	for _, k := range keyPriority {
		if !containsKey(wanted, k) {
			continue
		}
		a, b := c.Key(k), other.Key(k)
		if a != "" && a == b {
			return true
		}
	}
	return false
}

func containsKey(keys []Key, k Key) bool {
	for _, candidate := range keys {
		if candidate == k {
			return true
		}
	}
	return false
}

// Name returns the card name for a locale, falling back to DefaultLocale and
// then to the first identity key.
func (c *Card) Name(locale string) string {
	if c == nil {
		return ""
	}
	if name, ok := c.Names[locale]; ok && name != "" {
		return name
	}
	if name, ok := c.Names[DefaultLocale]; ok && name != "" {
		return name
	}
	for _, k := range []Key{KeyPrintCode, KeyPassCode, KeyGlobalID} {
		if v := c.Key(k); v != "" {
			return v
		}
	}
	return ""
}

// CacheKey returns the key used to share rendered images between card values.
// Two cards with the same image path are interchangeable for caching only;
// identity matching never uses it.
func (c *Card) CacheKey() string {
	if c == nil {
		return ""
	}
	return c.ImagePath
}

// Clone returns a copy of the card with its own names map.
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Names != nil {
		cp.Names = make(map[string]string, len(c.Names))
		for k, v := range c.Names {
			cp.Names[k] = v
		}
	}
	return &cp
}
