package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tellfind/internal/models"
	"tellfind/internal/sqlitex"
)

const mediaSchemaSQL = `
CREATE TABLE IF NOT EXISTS media (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  mime TEXT NOT NULL,
  name TEXT NOT NULL,
  data BLOB NOT NULL,
  created_at TEXT NOT NULL
);
`

// SQLite stores media payloads in their own database file, kept separate
// from the record collection: binary payloads have very different size
// and durability characteristics than the structured records.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the media database at path and bootstraps the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sqlitex.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(mediaSchemaSQL); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutBatch writes the batch inside one transaction.
func (s *SQLite) PutBatch(ctx context.Context, entries []Entry) (err error) {
	if s == nil || s.db == nil {
		return fmt.Errorf("blob store is not configured")
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := sqlitex.FormatTime(time.Now())
	for _, entry := range entries {
		if strings.TrimSpace(entry.ID) == "" {
			continue
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO media (id, kind, mime, name, data, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET kind = excluded.kind,
				mime = excluded.mime,
				name = excluded.name,
				data = excluded.data
		`, entry.ID, string(entry.Kind), entry.MIME, entry.Name, entry.Data, now); err != nil {
			return fmt.Errorf("failed to write media %s: %w", entry.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) Get(ctx context.Context, id string) (*Entry, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, kind, mime, name, data FROM media WHERE id = ?`, id)

	var (
		entry Entry
		kind  string
	)
	err := row.Scan(&entry.ID, &kind, &entry.MIME, &entry.Name, &entry.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entry.Kind = models.MediaKind(kind)
	return &entry, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("blob store is not configured")
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	return err
}
