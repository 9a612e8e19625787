package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/donhulam/trolyvanban/internal/models"
)

// The history lives in a single named slot as a versioned JSON envelope; the
// whole ordered array is rewritten on every mutation.
const schema = `
CREATE TABLE IF NOT EXISTS slots (
    name        TEXT PRIMARY KEY,
    version     INTEGER NOT NULL,
    data        TEXT NOT NULL,
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
`

const (
	slotName    = "savedDocuments"
	slotVersion = 1
)

// DBPath returns the sqlite file path under the given data directory,
// creating the directory if needed.
func DBPath(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return filepath.Join(dataDir, "trolyvanban.db"), nil
}

// Open opens the history database and runs the schema migration.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running schema migration: %w", err)
	}
	return db, nil
}

// SQLiteRepository stores the serialized history in the slots table.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type slotEnvelope struct {
	Version   int                    `json:"version"`
	Documents []models.SavedDocument `json:"documents"`
}

func (r *SQLiteRepository) LoadAll() ([]models.SavedDocument, error) {
	var data string
	err := r.db.QueryRow(`SELECT data FROM slots WHERE name = ?`, slotName).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history slot: %w", err)
	}
	return decodeSlot([]byte(data))
}

func (r *SQLiteRepository) SaveAll(docs []models.SavedDocument) error {
	data, err := json.Marshal(slotEnvelope{Version: slotVersion, Documents: docs})
	if err != nil {
		return fmt.Errorf("serializing history: %w", err)
	}
	_, err = r.db.Exec(
		`INSERT INTO slots (name, version, data) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET version = excluded.version, data = excluded.data, updated_at = datetime('now')`,
		slotName, slotVersion, string(data),
	)
	if err != nil {
		return fmt.Errorf("writing history slot: %w", err)
	}
	return nil
}

// decodeSlot accepts the versioned envelope as well as the bare array the
// browser version of the app stored in localStorage.
func decodeSlot(data []byte) ([]models.SavedDocument, error) {
	var envelope slotEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Version > 0 {
		return envelope.Documents, nil
	}
	var docs []models.SavedDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing history slot: %w", err)
	}
	return docs, nil
}
