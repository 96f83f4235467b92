package token

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	apperrors "github.com/jrsteele09/go-catalog-admin/internal/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealInfo = "catalog-admin token store v1"

// sealedStore encrypts values at rest. The key name is bound as additional
// data so a value cannot be moved between keys.
type sealedStore struct {
	inner Store
	aead  cipher.AEAD
}

var _ Store = (*sealedStore)(nil)

// Sealed wraps inner so every value is encrypted with XChaCha20-Poly1305
// using a key derived from secret.
func Sealed(inner Store, secret string) (Store, error) {
	if secret == "" {
		return nil, errors.New("sealing secret is required")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("deriving sealing key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	return &sealedStore{inner: inner, aead: aead}, nil
}

func (s *sealedStore) Get(key string) (string, bool, error) {
	encoded, ok, err := s.inner.Get(key)
	if err != nil || !ok {
		return "", ok, err
	}

	data, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", false, apperrors.Wrapf(apperrors.ErrStorage, "decoding %s", key)
	}
	if len(data) < s.aead.NonceSize() {
		return "", false, apperrors.Wrapf(apperrors.ErrStorage, "sealed %s is truncated", key)
	}

	nonce, ciphertext := data[:s.aead.NonceSize()], data[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", false, apperrors.Wrapf(apperrors.ErrStorage, "opening sealed %s", key)
	}
	return string(plaintext), true, nil
}

func (s *sealedStore) Set(key, value string) error {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.inner.Set(key, base64.RawStdEncoding.EncodeToString(sealed))
}

func (s *sealedStore) Remove(key string) error {
	return s.inner.Remove(key)
}
