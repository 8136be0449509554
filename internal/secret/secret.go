// Package secret handles the pre-shared key: at-rest encryption with a
// process-wide symmetric key, and redaction of rendered output.
package secret

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// RedactedPlaceholder replaces every PSK occurrence in redacted text.
const RedactedPlaceholder = "<redacted-psk>"

var (
	// ErrCrypto indicates a token that fails authentication: corrupted,
	// truncated, or sealed with a different key.
	ErrCrypto = errors.New("psk token decryption failed")
	// ErrKeyNotFound is returned by a KeyStore that holds no key yet.
	ErrKeyNotFound = errors.New("secret key not found")
)

// KeyStore persists the symmetric key across restarts.
type KeyStore interface {
	Load() ([]byte, error)
	Store(key []byte) error
	Describe() string
}

// Manager encrypts and decrypts PSKs with one symmetric key. It holds no
// mutable state once constructed and is safe for concurrent use.
type Manager struct {
	aead cipher.AEAD
}

// Open loads the key from store, generating and persisting a new one when
// the store is empty.
func Open(store KeyStore) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("key store is required")
	}
	key, err := store.Load()
	switch {
	case err == nil:
	case errors.Is(err, ErrKeyNotFound):
		key, err = GenerateKey()
		if err != nil {
			return nil, err
		}
		if err := store.Store(key); err != nil {
			return nil, fmt.Errorf("persist secret key to %s: %w", store.Describe(), err)
		}
	default:
		return nil, fmt.Errorf("load secret key from %s: %w", store.Describe(), err)
	}
	return NewManager(key)
}

// NewManager builds a manager around an existing key.
func NewManager(key []byte) (*Manager, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Manager{aead: aead}, nil
}

// GenerateKey returns a fresh random key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate secret key: %w", err)
	}
	return key, nil
}

// Encrypt seals psk and returns a URL-safe token (nonce followed by
// ciphertext, base64 encoded).
func (m *Manager) Encrypt(psk string) (string, error) {
	nonce := make([]byte, m.aead.NonceSize(), m.aead.NonceSize()+len(psk)+m.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := m.aead.Seal(nonce, nonce, []byte(psk), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a token produced by Encrypt.
func (m *Manager) Decrypt(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return "", fmt.Errorf("%w: token is not valid base64", ErrCrypto)
	}
	if len(raw) < m.aead.NonceSize()+m.aead.Overhead() {
		return "", fmt.Errorf("%w: token too short", ErrCrypto)
	}
	nonce, ciphertext := raw[:m.aead.NonceSize()], raw[m.aead.NonceSize():]
	plaintext, err := m.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", ErrCrypto)
	}
	return string(plaintext), nil
}

// Redact replaces every literal occurrence of psk in text. Coincidental
// matches elsewhere in the text are replaced too. A psk that is itself part
// of RedactedPlaceholder would survive; request parsing rejects those.
func Redact(text, psk string) string {
	if psk == "" {
		return text
	}
	return strings.ReplaceAll(text, psk, RedactedPlaceholder)
}

// Policy is the caller-selected PSK handling for one request.
type Policy struct {
	// IncludePSK keeps the plaintext PSK in responses and, when not
	// encrypting, in saved artifacts.
	IncludePSK bool
	// SaveEncrypted stores only the encrypted token in saved artifacts.
	SaveEncrypted bool
}

// Output applies the policy to text about to leave the process in a response.
func (p Policy) Output(text, psk string) string {
	if p.IncludePSK {
		return text
	}
	return Redact(text, psk)
}

// Stored applies the policy to text about to be written to disk.
func (p Policy) Stored(text, psk string) string {
	if p.SaveEncrypted || !p.IncludePSK {
		return Redact(text, psk)
	}
	return text
}
