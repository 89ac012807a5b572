package firmware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	// StorageKey names the firmware history document.
	StorageKey = "ringext_firmware_history"

	// StorageVersion is the schema version written by this build.
	StorageVersion = 1
)

// Store loads and saves the firmware history document.
type Store interface {
	Load(ctx context.Context) (Data, error)
	Save(ctx context.Context, d Data) error
}

// SQLiteStore keeps the document as one JSON row in the firmware_store table.
type SQLiteStore struct {
	db  *sql.DB
	key string
}

// NewSQLiteStore creates a store over an open, migrated database.
//
// Parameters:
//   - db: Open SQLite connection with the firmware_store table
//
// Returns:
//   - *SQLiteStore: Store using StorageKey
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, key: StorageKey}
}

// Load reads the document. A missing row is an empty document, not an error.
//
// Returns:
//   - Data: The stored document, with non-nil maps
//   - error: ErrUnsupportedVersion for a newer schema, ErrCorruptStore for
//     undecodable JSON, otherwise the database error
func (s *SQLiteStore) Load(ctx context.Context) (Data, error) {
	var (
		version int
		raw     string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT version, data FROM firmware_store WHERE key = ?", s.key,
	).Scan(&version, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return emptyData(), nil
	}
	if err != nil {
		return Data{}, fmt.Errorf("querying firmware store: %w", err)
	}
	if version != StorageVersion {
		return Data{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	d := emptyData()
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Data{}, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	if d.History == nil {
		d.History = make(map[string][]Entry)
	}
	if d.CurrentVersions == nil {
		d.CurrentVersions = make(map[string]string)
	}
	return d, nil
}

// Save replaces the document.
func (s *SQLiteStore) Save(ctx context.Context, d Data) error {
	if d.History == nil {
		d.History = make(map[string][]Entry)
	}
	if d.CurrentVersions == nil {
		d.CurrentVersions = make(map[string]string)
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshalling firmware history: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO firmware_store (key, version, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			version = excluded.version,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		s.key,
		StorageVersion,
		string(raw),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving firmware history: %w", err)
	}
	return nil
}

func emptyData() Data {
	return Data{
		History:         make(map[string][]Entry),
		CurrentVersions: make(map[string]string),
	}
}
