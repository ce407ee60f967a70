package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/cards"
)

// fastEncryption keeps key derivation cheap in tests.
func fastEncryption(password string) *EncryptionConfig {
	return &EncryptionConfig{Password: password, Argon2Time: 1, Argon2Memory: 1024, Argon2Threads: 1}
}

func seedCards(t *testing.T, db *DB, n int) {
	t.Helper()
	svc := NewService(db)
	for i := 0; i < n; i++ {
		code := "LOB-EN00" + string(rune('1'+i))
		require.NoError(t, svc.Cards().Upsert(context.Background(), &cards.Card{PrintCode: code}))
	}
}

func countCards(t *testing.T, path string) int {
	t.Helper()
	db, err := Open(DefaultConfig(path))
	require.NoError(t, err)
	defer func() { assert.NoError(t, db.Close()) }()

	n, err := NewService(db).Cards().Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestBackupAndRestore(t *testing.T) {
	db := NewTestDB(t)
	seedCards(t, db, 3)
	ctx := context.Background()

	dir := t.TempDir()
	path, err := db.Backup(ctx, BackupOptions{Dir: dir, Name: "nightly"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nightly.db"), path)

	_, err = db.Backup(ctx, BackupOptions{Dir: dir, Name: "nightly"})
	assert.Error(t, err, "existing backups are not overwritten")

	target := filepath.Join(t.TempDir(), "restored.db")
	require.NoError(t, os.WriteFile(target, []byte("stale"), 0o644))
	require.NoError(t, Restore(ctx, path, target, nil))

	assert.Equal(t, 3, countCards(t, target))

	matches, err := filepath.Glob(target + ".old.*")
	require.NoError(t, err)
	assert.Len(t, matches, 1, "replaced database is kept aside")
}

func TestEncryptedBackup(t *testing.T) {
	db := NewTestDB(t)
	seedCards(t, db, 2)
	ctx := context.Background()

	dir := t.TempDir()
	path, err := db.Backup(ctx, BackupOptions{Dir: dir, Name: "sealed", Encryption: fastEncryption("hunter2")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sealed.db.enc"), path)

	_, err = os.Stat(filepath.Join(dir, "sealed.db"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "plain copy removed")

	encrypted, err := IsEncrypted(path)
	require.NoError(t, err)
	assert.True(t, encrypted)

	target := filepath.Join(t.TempDir(), "restored.db")
	assert.Error(t, Restore(ctx, path, target, nil))
	assert.True(t, errors.Is(Restore(ctx, path, target, fastEncryption("wrong")), ErrWrongPassword))

	require.NoError(t, Restore(ctx, path, target, fastEncryption("hunter2")))
	assert.Equal(t, 2, countCards(t, target))
}

func TestRestoreRejectsForeignFile(t *testing.T) {
	bogus := filepath.Join(t.TempDir(), "bogus.db")
	require.NoError(t, os.WriteFile(bogus, []byte("not a database at all"), 0o644))

	target := filepath.Join(t.TempDir(), "target.db")
	assert.Error(t, Restore(context.Background(), bogus, target, nil))

	_, err := os.Stat(target)
	assert.True(t, errors.Is(err, os.ErrNotExist), "target untouched")
}

func TestListBackups(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	none, err := ListBackups(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = db.Backup(ctx, BackupOptions{Dir: dir, Name: "a"})
	require.NoError(t, err)
	_, err = db.Backup(ctx, BackupOptions{Dir: dir, Name: "b", Encryption: fastEncryption("pw")})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	backups, err := ListBackups(dir)
	require.NoError(t, err)
	require.Len(t, backups, 2)

	byName := map[string]BackupInfo{}
	for _, b := range backups {
		byName[b.Name] = b
	}
	assert.False(t, byName["a.db"].Encrypted)
	assert.True(t, byName["b.db.enc"].Encrypted)
	assert.Len(t, byName["a.db"].Checksum, 64)
}
