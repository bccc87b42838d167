// Package crypto seals free-text personal data, such as availability notes,
// before it reaches storage.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// sealedPrefix marks values written by SealString; anything else is returned as is.
const sealedPrefix = "enc:v1:"

const keySize = 32

var ErrCiphertextTooShort = errors.New("ciphertext too short")

type Service struct {
	aead cipher.AEAD
}

// New builds a sealer from a 32 byte key given as hex, base64 or raw text.
// An empty key yields a pass-through service.
func New(key string) (*Service, error) {
	if key == "" {
		return &Service{}, nil
	}
	decoded := decodeKey(key)
	if len(decoded) != keySize {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be 32 bytes after decoding")
	}
	block, err := aes.NewCipher(decoded)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Service{aead: aead}, nil
}

func (s *Service) Configured() bool {
	return s != nil && s.aead != nil
}

// SealString encrypts value for storage. Empty values stay empty.
func (s *Service) SealString(value string) (string, error) {
	if value == "" || !s.Configured() {
		return value, nil
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(value), nil)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

// OpenString reverses SealString. Values without the sealed prefix were
// written before a key was configured and are returned unchanged.
func (s *Service) OpenString(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	if !s.Configured() {
		return "", errors.New("sealed value found but DATA_ENCRYPTION_KEY is not set")
	}
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}
	if len(raw) < s.aead.NonceSize() {
		return "", ErrCiphertextTooShort
	}
	nonce, data := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, data, nil)
	if err != nil {
		return "", fmt.Errorf("open sealed value: %w", err)
	}
	return string(plain), nil
}

// decodeKey accepts a hex or base64 encoding only when it yields a full key;
// anything else is taken as raw bytes.
func decodeKey(raw string) []byte {
	if decoded, err := hex.DecodeString(raw); err == nil && len(decoded) == keySize {
		return decoded
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil && len(decoded) == keySize {
		return decoded
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil && len(decoded) == keySize {
		return decoded
	}
	return []byte(raw)
}
