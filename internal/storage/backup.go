package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	backupExt          = ".db"
	encryptedBackupExt = ".db.enc"
)

// BackupOptions configure a backup.
type BackupOptions struct {
	// Dir receives the backup; DefaultBackupDir when empty.
	Dir string

	// Name is the file name without extension; timestamp based when empty.
	Name string

	// Encryption seals the backup when set.
	Encryption *EncryptionConfig
}

// BackupInfo describes one backup file.
type BackupInfo struct {
	Path      string
	Name      string
	Size      int64
	ModTime   time.Time
	Encrypted bool
	Checksum  string // SHA-256 of the file
}

// DefaultBackupDir returns the backups directory next to the database.
func DefaultBackupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "backups")
}

// Backup writes a consistent copy of the database with VACUUM INTO and
// returns its path.
func (db *DB) Backup(ctx context.Context, opts BackupOptions) (string, error) {
	dir := opts.Dir
	if dir == "" {
		dir = DefaultBackupDir(db.path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = "backup_" + time.Now().Format("20060102_150405")
	}
	plainPath := filepath.Join(dir, name+backupExt)
	if _, err := os.Stat(plainPath); err == nil {
		return "", fmt.Errorf("backup %s already exists", plainPath)
	}

	if _, err := db.conn.ExecContext(ctx, "VACUUM INTO ?", plainPath); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := verifyDatabase(ctx, plainPath); err != nil {
		_ = os.Remove(plainPath)
		return "", fmt.Errorf("backup verification failed: %w", err)
	}

	if opts.Encryption == nil {
		return plainPath, nil
	}

	sealedPath := filepath.Join(dir, name+encryptedBackupExt)
	err := EncryptFile(plainPath, sealedPath, opts.Encryption)
	_ = os.Remove(plainPath)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt backup: %w", err)
	}
	return sealedPath, nil
}

// Restore replaces the database at dbPath with a backup. The database must
// be closed. The replaced files are kept with an ".old.<timestamp>" suffix.
func Restore(ctx context.Context, backupPath, dbPath string, encryption *EncryptionConfig) error {
	encrypted, err := IsEncrypted(backupPath)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	tempPath := dbPath + ".restore.tmp"
	if encrypted {
		if encryption == nil {
			return fmt.Errorf("backup %s is encrypted: password required", backupPath)
		}
		err = DecryptFile(backupPath, tempPath, encryption)
	} else {
		err = copyFile(backupPath, tempPath)
	}
	if err != nil {
		_ = os.Remove(tempPath)
		return err
	}

	if err := verifyDatabase(ctx, tempPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("restored database verification failed: %w", err)
	}

	suffix := ".old." + time.Now().Format("20060102_150405")
	for _, ext := range []string{"", "-wal", "-shm"} {
		current := dbPath + ext
		if _, err := os.Stat(current); err != nil {
			continue
		}
		if err := os.Rename(current, current+suffix); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to set aside %s: %w", current, err)
		}
	}

	if err := os.Rename(tempPath, dbPath); err != nil {
		return fmt.Errorf("failed to replace database with backup: %w", err)
	}
	return nil
}

// ListBackups returns the backups in dir, oldest first. A missing directory
// holds no backups.
func ListBackups(dir string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		encrypted := strings.HasSuffix(name, encryptedBackupExt)
		if !encrypted && filepath.Ext(name) != backupExt {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, name)
		checksum, err := fileChecksum(path)
		if err != nil {
			checksum = "unknown"
		}

		backups = append(backups, BackupInfo{
			Path:      path,
			Name:      name,
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Encrypted: encrypted,
			Checksum:  checksum,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].ModTime.Before(backups[j].ModTime)
		}
		return backups[i].Name < backups[j].Name
	})
	return backups, nil
}

// verifyDatabase checks that path is a readable SQLite database with the cards table.
func verifyDatabase(ctx context.Context, path string) error {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = conn.Close() }()

	var result string
	if err := conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check of %s: %s", path, result)
	}

	var n int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM cards").Scan(&n); err != nil {
		return fmt.Errorf("%s is not a collection database: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
