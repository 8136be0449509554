package secret

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"ipsec-confgen/internal/util"
)

// FileStore keeps the key base64 encoded in a 0600 file.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: strings.TrimSpace(path)}
}

func (s *FileStore) Describe() string {
	return "file " + s.Path
}

func (s *FileStore) Load() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return decodeKey(string(data))
}

func (s *FileStore) Store(key []byte) error {
	if s.Path == "" {
		return fmt.Errorf("key file path is required")
	}
	return util.WriteFileAtomic(s.Path, []byte(base64.StdEncoding.EncodeToString(key)+"\n"), 0o600)
}

// KeyringStore keeps the key in the operating system keyring.
type KeyringStore struct {
	Service string
	User    string
}

// NewKeyringStore returns a store for the given keyring service and user.
func NewKeyringStore(service, user string) *KeyringStore {
	return &KeyringStore{Service: service, User: user}
}

func (s *KeyringStore) Describe() string {
	return fmt.Sprintf("keyring %s/%s", s.Service, s.User)
}

func (s *KeyringStore) Load() ([]byte, error) {
	encoded, err := keyring.Get(s.Service, s.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return decodeKey(encoded)
}

func (s *KeyringStore) Store(key []byte) error {
	return keyring.Set(s.Service, s.User, base64.StdEncoding.EncodeToString(key))
}

func decodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("stored secret key is not valid base64: %w", err)
	}
	return key, nil
}
