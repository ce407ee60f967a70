package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/cards"
)

// SearchResult is one fuzzy match of a card name.
type SearchResult struct {
	Card  *cards.Card
	Name  string
	Score int
}

// nameSource implements fuzzy.Source over card names in one locale.
type nameSource struct {
	cards  []*cards.Card
	locale string
}

func (n nameSource) String(i int) string {
	return strings.ToLower(n.cards[i].Name(n.locale))
}

func (n nameSource) Len() int {
	return len(n.cards)
}

// Search finds cards whose name in locale fuzzily matches query, best match
// first. A limit of 0 or less returns every match.
func (s *Service) Search(ctx context.Context, query, locale string, limit int) ([]SearchResult, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	src := nameSource{cards: all, locale: locale}
	matches := fuzzy.FindFrom(query, src)

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		card := all[m.Index]
		results = append(results, SearchResult{
			Card:  card,
			Name:  card.Name(locale),
			Score: m.Score,
		})
		if limit > 0 && len(results) == limit {
			break
		}
	}

	return results, nil
}
