package artifact

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one row of the artifact index.
type Entry struct {
	ID           string    `json:"id"`
	BaseName     string    `json:"base_name"`
	Vendor       string    `json:"vendor"`
	TunnelName   string    `json:"tunnel_name"`
	FilePath     string    `json:"file_path"`
	MetadataPath string    `json:"metadata_path"`
	Encrypted    bool      `json:"encrypted"`
	Saves        int       `json:"saves"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Index records saved artifacts in SQLite.
type Index struct {
	db  *sql.DB
	now func() time.Time
}

// NewIndex creates an index backed by an existing SQLite handle.
func NewIndex(db *sql.DB) (*Index, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	return &Index{db: db, now: time.Now}, nil
}

// Record upserts the artifact by base name and appends a save row. The
// artifact ID is stable across overwrites.
func (x *Index) Record(ctx context.Context, baseName string, art *Artifact) (string, error) {
	now := x.now().UTC().Unix()
	encrypted := boolToInt(art.EncryptedPSK != nil)

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO artifacts (id, base_name, vendor, tunnel_name, file_path, metadata_path, encrypted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(base_name) DO UPDATE SET
			vendor = excluded.vendor,
			tunnel_name = excluded.tunnel_name,
			file_path = excluded.file_path,
			metadata_path = excluded.metadata_path,
			encrypted = excluded.encrypted,
			updated_at = excluded.updated_at
	`, uuid.NewString(), baseName, art.Vendor, art.TunnelName, art.FilePath, art.MetadataPath, encrypted, now, now); err != nil {
		return "", err
	}

	var id string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM artifacts WHERE base_name = ?`, baseName).Scan(&id); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO artifact_saves (artifact_id, saved_at, encrypted)
		VALUES (?, ?, ?)
	`, id, now, encrypted); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// List returns every indexed artifact, most recently saved first.
func (x *Index) List(ctx context.Context) ([]Entry, error) {
	rows, err := x.db.QueryContext(ctx, `
		SELECT a.id, a.base_name, a.vendor, a.tunnel_name, a.file_path, a.metadata_path,
		       a.encrypted, a.updated_at, COUNT(s.id)
		FROM artifacts a
		LEFT JOIN artifact_saves s ON s.artifact_id = a.id
		GROUP BY a.id
		ORDER BY a.updated_at DESC, a.base_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			entry     Entry
			encrypted int
			updatedAt int64
		)
		if err := rows.Scan(
			&entry.ID, &entry.BaseName, &entry.Vendor, &entry.TunnelName,
			&entry.FilePath, &entry.MetadataPath, &encrypted, &updatedAt, &entry.Saves,
		); err != nil {
			return nil, err
		}
		entry.Encrypted = encrypted != 0
		entry.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
