package catalog

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/cards"
)

// ImportFile is the YAML layout of a catalog import:
//
//	cards:
//	  - global_id: "4007"
//	    pass_code: "89631139"
//	    print_code: LOB-EN001
//	    names: {en: Blue-Eyes White Dragon}
//	    type: Normal Monster
//	    attack: 3000
type ImportFile struct {
	Cards []*cards.Card `yaml:"cards"`
}

// ImportResult counts what an import did.
type ImportResult struct {
	Imported int
	Skipped  int // Entries without any identity key
}

// Import upserts every card of a YAML import into the catalog.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var file ImportFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return &ImportResult{}, nil
		}
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}

	res := &ImportResult{}
	for i, card := range file.Cards {
		if card == nil || !card.HasIdentity() {
			res.Skipped++
			s.logger.Warn("skipping catalog entry without identity", zap.Int("index", i))
			continue
		}
		if err := s.repo.Upsert(ctx, card); err != nil {
			return res, fmt.Errorf("import card %d: %w", i, err)
		}
		res.Imported++
	}

	s.Purge()
	s.logger.Info("catalog import complete",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
	)

	return res, nil
}
