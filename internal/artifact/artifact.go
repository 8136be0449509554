// Package artifact persists generated configurations as a text file plus a
// JSON metadata sidecar, optionally recording each save in a SQLite index.
package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ipsec-confgen/internal/secret"
	"ipsec-confgen/internal/util"
	"ipsec-confgen/internal/vpn"
)

var (
	ErrStorage = errors.New("artifact storage failed")
	// ErrNotEncrypted is returned when revealing a PSK from an artifact that
	// was saved without an encrypted token.
	ErrNotEncrypted = errors.New("artifact has no encrypted psk")
)

// Metadata is the JSON sidecar written next to every saved config.
type Metadata struct {
	Vendor       string  `json:"vendor"`
	TunnelName   string  `json:"tunnel_name"`
	File         string  `json:"file"`
	EncryptedPSK *string `json:"encrypted_psk"`
}

// Artifact describes one saved configuration.
type Artifact struct {
	ID           string  `json:"id,omitempty"`
	Vendor       string  `json:"vendor"`
	TunnelName   string  `json:"tunnel_name"`
	FilePath     string  `json:"file_path"`
	MetadataPath string  `json:"metadata_path"`
	EncryptedPSK *string `json:"encrypted_psk"`
}

// Writer stores artifacts under one directory.
type Writer struct {
	dir     string
	secrets *secret.Manager
	index   *Index
}

// NewWriter returns a writer rooted at dir. secrets is needed only for
// encrypted saves; index may be nil.
func NewWriter(dir string, secrets *secret.Manager, index *Index) (*Writer, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	return &Writer{dir: dir, secrets: secrets, index: index}, nil
}

// Dir returns the storage directory.
func (w *Writer) Dir() string {
	return w.dir
}

// BaseName returns the file stem for a vendor and tunnel: "{vendor}_{tunnel}"
// with spaces replaced by underscores.
func BaseName(vendor, tunnelName string) (string, error) {
	if err := vpn.ValidateVendor(vendor); err != nil {
		return "", err
	}
	if err := vpn.ValidateTunnelName(tunnelName); err != nil {
		return "", err
	}
	return strings.ReplaceAll(vendor+"_"+tunnelName, " ", "_"), nil
}

// Save writes configText and its sidecar. With saveEncrypted the text is
// always redacted and the sidecar carries the encrypted PSK; otherwise the
// text keeps the plaintext PSK only when includePSK is set. An existing
// artifact with the same base name is replaced.
func (w *Writer) Save(ctx context.Context, vendor string, req *vpn.Request, configText string, includePSK, saveEncrypted bool) (*Artifact, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrStorage)
	}
	base, err := BaseName(vendor, req.TunnelName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	policy := secret.Policy{IncludePSK: includePSK, SaveEncrypted: saveEncrypted}
	text := policy.Stored(configText, req.PSK)

	var token *string
	if saveEncrypted {
		if w.secrets == nil {
			return nil, fmt.Errorf("%w: encrypted save requires a secret key", ErrStorage)
		}
		sealed, err := w.secrets.Encrypt(req.PSK)
		if err != nil {
			return nil, fmt.Errorf("%w: encrypt psk: %v", ErrStorage, err)
		}
		token = &sealed
	}

	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrStorage, w.dir, err)
	}
	art := &Artifact{
		Vendor:       vendor,
		TunnelName:   req.TunnelName,
		FilePath:     filepath.Join(w.dir, base+".txt"),
		MetadataPath: filepath.Join(w.dir, base+".json"),
		EncryptedPSK: token,
	}
	if err := util.WriteFileAtomic(art.FilePath, []byte(text), 0o600); err != nil {
		return nil, fmt.Errorf("%w: write %s: %v", ErrStorage, art.FilePath, err)
	}
	meta, err := json.MarshalIndent(Metadata{
		Vendor:       vendor,
		TunnelName:   req.TunnelName,
		File:         art.FilePath,
		EncryptedPSK: token,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encode metadata: %v", ErrStorage, err)
	}
	meta = append(meta, '\n')
	if err := util.WriteFileAtomic(art.MetadataPath, meta, 0o600); err != nil {
		return nil, fmt.Errorf("%w: write %s: %v", ErrStorage, art.MetadataPath, err)
	}

	if w.index != nil {
		id, err := w.index.Record(ctx, base, art)
		if err != nil {
			return nil, fmt.Errorf("%w: index %s: %v", ErrStorage, base, err)
		}
		art.ID = id
	}
	return art, nil
}

// Load reads the sidecar of a previously saved artifact.
func (w *Writer) Load(vendor, tunnelName string) (*Artifact, error) {
	base, err := BaseName(vendor, tunnelName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	metaPath := filepath.Join(w.dir, base+".json")
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, metaPath, err)
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStorage, metaPath, err)
	}
	return &Artifact{
		Vendor:       meta.Vendor,
		TunnelName:   meta.TunnelName,
		FilePath:     meta.File,
		MetadataPath: metaPath,
		EncryptedPSK: meta.EncryptedPSK,
	}, nil
}

// RevealPSK loads an artifact and decrypts its PSK token.
func (w *Writer) RevealPSK(vendor, tunnelName string) (string, error) {
	art, err := w.Load(vendor, tunnelName)
	if err != nil {
		return "", err
	}
	if art.EncryptedPSK == nil {
		return "", ErrNotEncrypted
	}
	if w.secrets == nil {
		return "", fmt.Errorf("secret key is not configured")
	}
	return w.secrets.Decrypt(*art.EncryptedPSK)
}
