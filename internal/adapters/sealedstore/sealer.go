package sealedstore

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// Sealer encrypts and authenticates session records bound to a storage key.
type Sealer interface {
	Seal(key string, plaintext []byte) ([]byte, error)
	Open(key string, sealed []byte) ([]byte, error)
}

var (
	// Versioned prefix to allow future key/algorithm rotations.
	sealPrefixV1 = []byte("v1:")
	noopPrefix   = []byte("noop:")
)

// AESGCMSealer implements Sealer using AES-256-GCM. The storage key is used
// as additional data, so a record copied into another slot fails to open.
type AESGCMSealer struct {
	aead cipher.AEAD
}

// NewAESGCMSealer constructs a sealer. Key must be 32 bytes (AES-256).
func NewAESGCMSealer(key []byte) (*AESGCMSealer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("aes-gcm key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCMSealer{aead: aead}, nil
}

// KeyFromSecret derives a 32-byte key. A 64-character hex string is used as
// is; anything else is hashed with SHA-256.
func KeyFromSecret(secret string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("encryption key is required")
	}
	if decoded, err := hex.DecodeString(secret); err == nil && len(decoded) == 32 {
		return decoded, nil
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:], nil
}

// Seal returns prefix||base64(nonce||ciphertext).
func (s *AESGCMSealer) Seal(key string, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	ct := s.aead.Seal(nonce, nonce, plaintext, []byte(key))

	out := make([]byte, len(sealPrefixV1)+base64.StdEncoding.EncodedLen(len(ct)))
	copy(out, sealPrefixV1)
	base64.StdEncoding.Encode(out[len(sealPrefixV1):], ct)
	return out, nil
}

// Open reverses Seal. Only authenticated v1 records are accepted; noop
// records carry no authentication and are rejected.
func (s *AESGCMSealer) Open(key string, sealed []byte) ([]byte, error) {
	if bytes.HasPrefix(sealed, noopPrefix) {
		return nil, errors.New("unauthenticated record rejected")
	}
	if !bytes.HasPrefix(sealed, sealPrefixV1) {
		return nil, fmt.Errorf("unknown sealed record version (prefix: %q)", head(sealed, 8))
	}
	data, err := base64.StdEncoding.DecodeString(string(sealed[len(sealPrefixV1):]))
	if err != nil {
		return nil, fmt.Errorf("decode sealed record: %w", err)
	}
	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("sealed record too short")
	}
	pt, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], []byte(key))
	if err != nil {
		return nil, fmt.Errorf("open sealed record: %w", err)
	}
	return pt, nil
}

// NoopSealer marks records without encrypting them. Useful in tests.
type NoopSealer struct{}

func (NoopSealer) Seal(_ string, plaintext []byte) ([]byte, error) {
	out := make([]byte, len(noopPrefix)+base64.StdEncoding.EncodedLen(len(plaintext)))
	copy(out, noopPrefix)
	base64.StdEncoding.Encode(out[len(noopPrefix):], plaintext)
	return out, nil
}

func (NoopSealer) Open(_ string, sealed []byte) ([]byte, error) {
	if !bytes.HasPrefix(sealed, noopPrefix) {
		return nil, errors.New("invalid noop record")
	}
	return base64.StdEncoding.DecodeString(string(sealed[len(noopPrefix):]))
}

func head(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
