// Package auth guards the HTTP API with a single bearer token. Only the
// bcrypt hash of the token is kept in configuration.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor used when hashing tokens.
// It can be lowered in tests via the package variable.
var bcryptCost = bcrypt.DefaultCost

var ErrInvalidHash = errors.New("invalid token hash")

// Manager validates bearer tokens against a stored hash. A Manager without a
// hash accepts every request.
type Manager struct {
	hash []byte
}

// NewManager creates a manager for tokenHash. An empty hash disables
// authentication.
func NewManager(tokenHash string) (*Manager, error) {
	tokenHash = strings.TrimSpace(tokenHash)
	if tokenHash == "" {
		return &Manager{}, nil
	}
	if _, err := bcrypt.Cost([]byte(tokenHash)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return &Manager{hash: []byte(tokenHash)}, nil
}

// Enabled reports whether requests must carry a token.
func (m *Manager) Enabled() bool {
	return m != nil && len(m.hash) > 0
}

// ValidateToken returns true if token matches the stored hash.
func (m *Manager) ValidateToken(token string) bool {
	if token == "" || !m.Enabled() {
		return false
	}
	return bcrypt.CompareHashAndPassword(m.hash, []byte(token)) == nil
}

// HashToken returns the bcrypt hash to store for token.
func HashToken(token string) (string, error) {
	if token == "" {
		return "", errors.New("token cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateToken returns a new random token and its hash.
func GenerateToken() (string, string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	token := hex.EncodeToString(b)
	hash, err := HashToken(token)
	if err != nil {
		return "", "", err
	}
	return token, hash, nil
}
