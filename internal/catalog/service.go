// Package catalog resolves card codes read from deck and box files into card
// records from the card database.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/cards"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/collection"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage/repository"
)

// ErrNotFound is returned when a code matches no card and placeholders are disabled.
var ErrNotFound = errors.New("card not found")

// Config holds catalog settings.
type Config struct {
	// CacheSize is the number of resolved codes kept in memory.
	// Default: 4096
	CacheSize int

	// CreateUnknown builds a placeholder card from the code itself when the
	// database has no match. The placeholder carries only the key the code
	// looks like, so it still matches other cards read with the same code.
	CreateUnknown bool
}

// DefaultConfig returns the default catalog settings.
func DefaultConfig() *Config {
	return &Config{
		CacheSize:     4096,
		CreateUnknown: true,
	}
}

// Service looks cards up by code with an LRU cache in front of the repository.
type Service struct {
	repo   repository.CardRepository
	cache  *lru.Cache
	config *Config
	logger *zap.Logger
}

// NewService creates a catalog service.
func NewService(repo repository.CardRepository, config *Config, logger *zap.Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	size := config.CacheSize
	if size <= 0 {
		size = DefaultConfig().CacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create card cache: %w", err)
	}

	return &Service{
		repo:   repo,
		cache:  cache,
		config: config,
		logger: logger,
	}, nil
}

// Resolve returns the card for a print code, pass code or global id, tried
// in that order.
func (s *Service) Resolve(ctx context.Context, code string) (*cards.Card, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("empty card code")
	}

	if cached, ok := s.cache.Get(code); ok {
		return cached.(*cards.Card), nil
	}

	card, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	if card == nil {
		if !s.config.CreateUnknown {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
		}
		s.logger.Debug("card not in catalog, using placeholder", zap.String("code", code))
		card = cards.FromCode(code)
	}

	s.cache.Add(code, card)
	return card, nil
}

func (s *Service) lookup(ctx context.Context, code string) (*cards.Card, error) {
	lookups := []func(context.Context, string) (*cards.Card, error){
		s.repo.GetByPrintCode,
		s.repo.GetByPassCode,
		s.repo.GetByGlobalID,
	}

	candidates := []string{code}
	if upper := strings.ToUpper(code); upper != code {
		candidates = append(candidates, upper)
	}

	for _, get := range lookups {
		for _, candidate := range candidates {
			card, err := get(ctx, candidate)
			if err != nil {
				return nil, fmt.Errorf("failed to look up %q: %w", code, err)
			}
			if card != nil {
				return card, nil
			}
		}
	}
	return nil, nil
}

// Resolver adapts the service to the element parser.
func (s *Service) Resolver(ctx context.Context) collection.Resolver {
	return func(code string) (*cards.Card, error) {
		return s.Resolve(ctx, code)
	}
}

// Purge empties the lookup cache. Call it after the catalog changes.
func (s *Service) Purge() {
	s.cache.Purge()
}
