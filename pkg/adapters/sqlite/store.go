package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/aretw0/blockflow/pkg/ports"

	_ "modernc.org/sqlite"
)

// Store is a WorkflowStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver. Open registers
// "modernc.org/sqlite" (driver name "sqlite"), a pure Go build.
type Store struct {
	db *sql.DB
}

var _ ports.WorkflowStore = (*Store)(nil)

// Open opens (or creates) the database at path and prepares the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" one database.
	db.SetMaxOpenConns(1)

	s, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore initializes the required schema in the given database and returns a new Store.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to init sqlite schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS workflows (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			version TEXT NOT NULL,
			created TEXT NOT NULL,
			updated TEXT NOT NULL,
			document BLOB NOT NULL
		);`,
	)
	return err
}

// Save upserts the document.
func (s *Store) Save(ctx context.Context, workflowID string, doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, version, created, updated, document)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			created = excluded.created,
			updated = excluded.updated,
			document = excluded.document`,
		workflowID,
		doc.Metadata.Name,
		doc.Metadata.Version,
		doc.Metadata.Created.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
		data,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow %q: %w", workflowID, err)
	}
	return nil
}

// Load reads the document back.
func (s *Store) Load(ctx context.Context, workflowID string) (*domain.Document, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM workflows WHERE id = ?`, workflowID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to load workflow %q: %w", workflowID, err)
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %q: %w", workflowID, err)
	}
	return &doc, nil
}

// Delete removes the row; unknown IDs are ignored.
func (s *Store) Delete(ctx context.Context, workflowID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = ?`, workflowID); err != nil {
		return fmt.Errorf("failed to delete workflow %q: %w", workflowID, err)
	}
	return nil
}

// List returns workflow IDs ordered by ID.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM workflows ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
