package backup

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	apperrors "fintrack/internal/errors"
)

// Sealed bundles start with magic, followed by the PBKDF2 salt, the GCM
// nonce and the ciphertext.
var magic = []byte("FTBK1")

const (
	saltSize   = 16
	keySize    = 32
	iterations = 100_000
)

// IsSealed reports whether data is a passphrase-sealed bundle.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

// Seal encrypts plaintext with AES-256-GCM under a key derived from
// passphrase.
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase is empty")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	out := make([]byte, 0, len(magic)+saltSize+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, magic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, magic), nil
}

// Open decrypts a sealed bundle. A wrong passphrase or tampered data is
// reported as an invalid backup.
func Open(data []byte, passphrase string) ([]byte, error) {
	if !IsSealed(data) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidBackup, "backup is not sealed")
	}
	if passphrase == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidBackup, "backup is encrypted; a passphrase is required")
	}

	body := data[len(magic):]
	if len(body) < saltSize {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidBackup, "sealed backup is truncated")
	}
	salt, rest := body[:saltSize], body[saltSize:]

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}
	if len(rest) < gcm.NonceSize() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidBackup, "sealed backup is truncated")
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, magic)
	if err != nil {
		return nil, apperrors.Wrap(
			apperrors.WithMessage(apperrors.ErrInvalidBackup, "backup could not be decrypted; check the passphrase"), err)
	}
	return plaintext, nil
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(passphrase), salt, iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return gcm, nil
}
