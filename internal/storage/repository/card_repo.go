package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/cards"
)

// CardRepository handles database operations for the card catalog.
type CardRepository interface {
	// Upsert inserts or updates a card, keyed by its identity keys.
	Upsert(ctx context.Context, card *cards.Card) error

	// GetByPrintCode retrieves the card with the given print code.
	GetByPrintCode(ctx context.Context, printCode string) (*cards.Card, error)

	// GetByPassCode retrieves the first card with the given pass code.
	GetByPassCode(ctx context.Context, passCode string) (*cards.Card, error)

	// GetByGlobalID retrieves the first card with the given global id.
	GetByGlobalID(ctx context.Context, globalID string) (*cards.Card, error)

	// All retrieves every card ordered by insertion.
	All(ctx context.Context) ([]*cards.Card, error)

	// Count returns the number of cards.
	Count(ctx context.Context) (int, error)
}

// cardRepository is the concrete implementation of CardRepository.
type cardRepository struct {
	db Querier
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db Querier) CardRepository {
	return &cardRepository{db: db}
}

const cardColumns = `global_id, pass_code, print_code, names, type, attack, defense, level, price, image_path`

// Upsert inserts or updates a card.
func (r *cardRepository) Upsert(ctx context.Context, card *cards.Card) error {
	if card == nil || !card.HasIdentity() {
		return fmt.Errorf("card has no identity key")
	}

	names, err := json.Marshal(card.Names)
	if err != nil {
		return fmt.Errorf("failed to encode card names: %w", err)
	}

	query := `
		INSERT INTO cards (` + cardColumns + `, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(print_code, pass_code, global_id) DO UPDATE SET
			names = excluded.names,
			type = excluded.type,
			attack = excluded.attack,
			defense = excluded.defense,
			level = excluded.level,
			price = excluded.price,
			image_path = excluded.image_path,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		card.Key(cards.KeyGlobalID),
		card.Key(cards.KeyPassCode),
		card.Key(cards.KeyPrintCode),
		string(names),
		card.Type,
		card.Attack,
		card.Defense,
		card.Level,
		card.Price,
		card.ImagePath,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert card: %w", err)
	}

	return nil
}

// GetByPrintCode retrieves the card with the given print code.
func (r *cardRepository) GetByPrintCode(ctx context.Context, printCode string) (*cards.Card, error) {
	return r.getOne(ctx, "print_code", printCode)
}

// GetByPassCode retrieves the first card with the given pass code.
func (r *cardRepository) GetByPassCode(ctx context.Context, passCode string) (*cards.Card, error) {
	return r.getOne(ctx, "pass_code", passCode)
}

// GetByGlobalID retrieves the first card with the given global id.
func (r *cardRepository) GetByGlobalID(ctx context.Context, globalID string) (*cards.Card, error) {
	return r.getOne(ctx, "global_id", globalID)
}

// getOne returns nil, nil when no card matches.
func (r *cardRepository) getOne(ctx context.Context, column, value string) (*cards.Card, error) {
	if value == "" {
		return nil, nil
	}

	query := `SELECT ` + cardColumns + ` FROM cards WHERE ` + column + ` = ? ORDER BY id LIMIT 1`

	card, err := scanCard(r.db.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card by %s: %w", column, err)
	}

	return card, nil
}

// All retrieves every card ordered by insertion.
func (r *cardRepository) All(ctx context.Context) ([]*cards.Card, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []*cards.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		out = append(out, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return out, nil
}

// Count returns the number of cards.
func (r *cardRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (*cards.Card, error) {
	card := &cards.Card{}
	var names string
	err := row.Scan(
		&card.GlobalID,
		&card.PassCode,
		&card.PrintCode,
		&names,
		&card.Type,
		&card.Attack,
		&card.Defense,
		&card.Level,
		&card.Price,
		&card.ImagePath,
	)
	if err != nil {
		return nil, err
	}
	if names != "" && names != "null" {
		if err := json.Unmarshal([]byte(names), &card.Names); err != nil {
			return nil, fmt.Errorf("failed to decode card names: %w", err)
		}
	}
	return card, nil
}
