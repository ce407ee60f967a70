package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

const (
	// EncryptionMagicHeader starts every encrypted backup.
	EncryptionMagicHeader = "TCGCENC1"

	// Argon2id parameters (RFC 9106 second recommended option)
	defaultArgon2Time    = 3
	defaultArgon2Memory  = 64 * 1024 // KiB
	defaultArgon2Threads = 4
	argon2KeyLen         = 32 // AES-256

	saltLength = 16
)

// ErrWrongPassword is returned when an encrypted backup fails authentication.
var ErrWrongPassword = errors.New("wrong password or corrupted backup")

// EncryptionConfig holds the password and key derivation cost.
type EncryptionConfig struct {
	Password string

	Argon2Time    uint32
	Argon2Memory  uint32 // KiB
	Argon2Threads uint8
}

// DefaultEncryptionConfig returns encryption config with the default cost.
func DefaultEncryptionConfig(password string) *EncryptionConfig {
	return &EncryptionConfig{
		Password:      password,
		Argon2Time:    defaultArgon2Time,
		Argon2Memory:  defaultArgon2Memory,
		Argon2Threads: defaultArgon2Threads,
	}
}

func (c *EncryptionConfig) gcm(salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(c.Password), salt, c.Argon2Time, c.Argon2Memory, c.Argon2Threads, argon2KeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with AES-256-GCM under an Argon2id key.
// Layout: header || salt || nonce || ciphertext+tag.
func (c *EncryptionConfig) Encrypt(plaintext []byte) ([]byte, error) {
	if c == nil || c.Password == "" {
		return nil, fmt.Errorf("encryption password required")
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	gcm, err := c.gcm(salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(EncryptionMagicHeader)+len(salt)+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, EncryptionMagicHeader...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Decrypt opens data sealed by Encrypt.
func (c *EncryptionConfig) Decrypt(data []byte) ([]byte, error) {
	if c == nil || c.Password == "" {
		return nil, fmt.Errorf("encryption password required")
	}
	if !bytes.HasPrefix(data, []byte(EncryptionMagicHeader)) {
		return nil, fmt.Errorf("data is not an encrypted backup")
	}
	data = data[len(EncryptionMagicHeader):]
	if len(data) < saltLength {
		return nil, fmt.Errorf("encrypted data too short")
	}

	gcm, err := c.gcm(data[:saltLength])
	if err != nil {
		return nil, err
	}
	data = data[saltLength:]
	if len(data) < gcm.NonceSize()+gcm.Overhead() {
		return nil, fmt.Errorf("encrypted data too short")
	}

	plaintext, err := gcm.Open(nil, data[:gcm.NonceSize()], data[gcm.NonceSize():], nil)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}

// EncryptFile writes an encrypted copy of sourcePath to destPath.
func EncryptFile(sourcePath, destPath string, config *EncryptionConfig) error {
	plaintext, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", sourcePath, err)
	}
	sealed, err := config.Encrypt(plaintext)
	if err != nil {
		return err
	}
	if err := os.WriteFile(destPath, sealed, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}
	return nil
}

// DecryptFile writes the decrypted content of sourcePath to destPath.
func DecryptFile(sourcePath, destPath string, config *EncryptionConfig) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", sourcePath, err)
	}
	plaintext, err := config.Decrypt(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(destPath, plaintext, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}
	return nil
}

// IsEncrypted reports whether the file starts with the encryption header.
func IsEncrypted(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, len(EncryptionMagicHeader))
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return n == len(header) && string(header) == EncryptionMagicHeader, nil
}
