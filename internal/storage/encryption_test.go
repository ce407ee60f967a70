package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	config := fastEncryption("correct horse")
	plaintext := []byte("cards table contents")

	sealed, err := config.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "cards table")

	again, err := config.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "fresh salt and nonce per call")

	opened, err := config.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestDecryptFailures(t *testing.T) {
	config := fastEncryption("pw")
	sealed, err := config.Encrypt([]byte("data"))
	require.NoError(t, err)

	_, err = fastEncryption("other").Decrypt(sealed)
	assert.True(t, errors.Is(err, ErrWrongPassword))

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xff
	_, err = config.Decrypt(tampered)
	assert.True(t, errors.Is(err, ErrWrongPassword))

	_, err = config.Decrypt([]byte("plain sqlite"))
	assert.Error(t, err)

	_, err = config.Decrypt([]byte(EncryptionMagicHeader + "short"))
	assert.Error(t, err)

	_, err = (&EncryptionConfig{}).Encrypt([]byte("x"))
	assert.Error(t, err)
}

func TestEncryptFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plain")
	sealed := filepath.Join(dir, "sealed")
	back := filepath.Join(dir, "back")
	require.NoError(t, os.WriteFile(src, []byte("owned cards"), 0o644))

	config := fastEncryption("pw")
	require.NoError(t, EncryptFile(src, sealed, config))

	isEnc, err := IsEncrypted(sealed)
	require.NoError(t, err)
	assert.True(t, isEnc)

	isEnc, err = IsEncrypted(src)
	require.NoError(t, err)
	assert.False(t, isEnc)

	require.NoError(t, DecryptFile(sealed, back, config))
	data, err := os.ReadFile(back)
	require.NoError(t, err)
	assert.Equal(t, "owned cards", string(data))
}

func TestDefaultEncryptionConfig(t *testing.T) {
	c := DefaultEncryptionConfig("pw")
	assert.Equal(t, "pw", c.Password)
	assert.Equal(t, uint32(64*1024), c.Argon2Memory)
}
