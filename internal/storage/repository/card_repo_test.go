package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/cards"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage/models"
)

// setupTestDB creates an in-memory database with the catalog and run tables.
func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE cards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			global_id TEXT NOT NULL DEFAULT '',
			pass_code TEXT NOT NULL DEFAULT '',
			print_code TEXT NOT NULL DEFAULT '',
			names TEXT NOT NULL DEFAULT '{}',
			type TEXT NOT NULL DEFAULT '',
			attack INTEGER NOT NULL DEFAULT 0,
			defense INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 0,
			price REAL NOT NULL DEFAULT 0,
			image_path TEXT NOT NULL DEFAULT '',
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX idx_cards_identity ON cards(print_code, pass_code, global_id);

		CREATE TABLE runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			needed INTEGER NOT NULL DEFAULT 0,
			covered INTEGER NOT NULL DEFAULT 0,
			surplus INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE run_entries (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			section TEXT NOT NULL DEFAULT '',
			line TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Error closing database: %v", err)
		}
	})

	return db
}

func TestCardRepository_UpsertAndGet(t *testing.T) {
	repo := NewCardRepository(setupTestDB(t))
	ctx := context.Background()

	blueEyes := &cards.Card{
		GlobalID:  "4007",
		PassCode:  "89631139",
		PrintCode: "LOB-EN001",
		Names:     map[string]string{"en": "Blue-Eyes White Dragon"},
		Type:      "Normal Monster",
		Attack:    3000,
		Defense:   2500,
		Level:     8,
		Price:     12.5,
	}
	require.NoError(t, repo.Upsert(ctx, blueEyes))

	got, err := repo.GetByPrintCode(ctx, "LOB-EN001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, blueEyes, got)

	byPass, err := repo.GetByPassCode(ctx, "89631139")
	require.NoError(t, err)
	assert.Equal(t, "LOB-EN001", byPass.PrintCode)

	byGlobal, err := repo.GetByGlobalID(ctx, "4007")
	require.NoError(t, err)
	assert.Equal(t, "LOB-EN001", byGlobal.PrintCode)

	blueEyes.Price = 20
	require.NoError(t, repo.Upsert(ctx, blueEyes))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "upsert updates the existing printing")

	got, err = repo.GetByPrintCode(ctx, "LOB-EN001")
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.Price)
}

func TestCardRepository_Missing(t *testing.T) {
	repo := NewCardRepository(setupTestDB(t))
	ctx := context.Background()

	got, err := repo.GetByPrintCode(ctx, "NOPE-001")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByPassCode(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, repo.Upsert(ctx, &cards.Card{Type: "Spell"}), "cards without identity are rejected")
}

func TestCardRepository_AllKeepsOrder(t *testing.T) {
	repo := NewCardRepository(setupTestDB(t))
	ctx := context.Background()

	for _, code := range []string{"LOB-EN001", "SDK-001", "MRD-EN001"} {
		require.NoError(t, repo.Upsert(ctx, &cards.Card{PrintCode: code}))
	}

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "SDK-001", all[1].PrintCode)
}

func TestRunRepository_RoundTrip(t *testing.T) {
	repo := NewRunRepository(setupTestDB(t))
	ctx := context.Background()

	older := &models.Run{ID: "run-1", Kind: "wantlist", Needed: 3, Covered: 2, Surplus: 1, CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.Run{ID: "run-2", Kind: "detailed", Needed: 1, CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	require.NoError(t, repo.AddEntries(ctx, []*models.RunEntry{
		{RunID: "run-1", Seq: 1, Section: "needed", Line: "LOB-EN001"},
		{RunID: "run-1", Seq: 0, Section: "needed", Line: "SDK-001,*1"},
	}))

	got, err := repo.Get(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "wantlist", got.Kind)
	assert.Equal(t, 3, got.Needed)

	entries, err := repo.Entries(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "SDK-001,*1", entries[0].Line)

	recent, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "run-2", recent[0].ID)

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRunRepository_Delete(t *testing.T) {
	repo := NewRunRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Run{ID: "run-1", Kind: "wantlist", CreatedAt: time.Now()}))
	require.NoError(t, repo.AddEntries(ctx, []*models.RunEntry{{RunID: "run-1", Line: "LOB-EN001"}}))

	require.NoError(t, repo.Delete(ctx, "run-1"))
	require.NoError(t, repo.Delete(ctx, "run-1"), "deleting a missing run is a no-op")

	got, err := repo.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	entries, err := repo.Entries(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	all, err := repo.Recent(ctx, -1)
	require.NoError(t, err)
	assert.Empty(t, all)
}
