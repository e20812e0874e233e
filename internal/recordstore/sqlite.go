package recordstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"tellfind/internal/models"
	"tellfind/internal/sqlitex"
)

const findColumns = "id, site, plot, layer, description, location, datetime_text, created_at, created_by, updated_at, media_json"

const findsSchemaSQL = `
CREATE TABLE IF NOT EXISTS finds (
  id TEXT PRIMARY KEY,
  site TEXT NOT NULL,
  plot TEXT NOT NULL,
  layer TEXT NOT NULL,
  description TEXT NOT NULL,
  location TEXT NOT NULL,
  datetime_text TEXT NOT NULL,
  created_at TEXT NOT NULL,
  created_by TEXT NOT NULL,
  updated_at TEXT,
  media_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_finds_site ON finds(site);
`

// SQLite is the database-backed record store, the alternate backing for
// devices where the JSON collection is impractical.
//
// Rows keep their rowid across updates, so ORDER BY rowid DESC preserves
// insertion order with in-place edits, matching the JSON backing.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the record database at path and bootstraps the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sqlitex.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(findsSchemaSQL); err != nil {
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

func (s *SQLite) List(ctx context.Context) ([]models.Find, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+findColumns+` FROM finds ORDER BY rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	finds := []models.Find{}
	for rows.Next() {
		find, err := scanFind(rows)
		if err != nil {
			return nil, err
		}
		finds = append(finds, *find)
	}
	return finds, rows.Err()
}

func (s *SQLite) GetByID(ctx context.Context, id string) (*models.Find, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+findColumns+` FROM finds WHERE id = ?`, id)
	find, err := scanFind(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return find, nil
}

func (s *SQLite) Add(ctx context.Context, find *models.Find) error {
	if find == nil {
		return fmt.Errorf("find is required")
	}
	mediaJSON, err := mediaToJSON(find.Media)
	if err != nil {
		return err
	}
	var updatedAt any
	if find.UpdatedAt != nil {
		updatedAt = sqlitex.FormatTime(*find.UpdatedAt)
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM finds WHERE id = ? LIMIT 1`, find.ID).Scan(&exists)
	if err == nil {
		return ErrDuplicateID
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO finds (`+findColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, find.ID, find.Site, find.Plot, find.Layer, find.Description, find.Location,
		find.DatetimeText, sqlitex.FormatTime(find.CreatedAt), find.CreatedBy, updatedAt, mediaJSON)
	if err != nil {
		return fmt.Errorf("failed to insert find: %w", err)
	}
	return nil
}

func (s *SQLite) Update(ctx context.Context, find *models.Find) error {
	if find == nil {
		return fmt.Errorf("find is required")
	}
	mediaJSON, err := mediaToJSON(find.Media)
	if err != nil {
		return err
	}
	var updatedAt any
	if find.UpdatedAt != nil {
		updatedAt = sqlitex.FormatTime(*find.UpdatedAt)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE finds
		SET site = ?, plot = ?, layer = ?, description = ?, location = ?,
		    datetime_text = ?, created_at = ?, created_by = ?, updated_at = ?, media_json = ?
		WHERE id = ?
	`, find.Site, find.Plot, find.Layer, find.Description, find.Location,
		find.DatetimeText, sqlitex.FormatTime(find.CreatedAt), find.CreatedBy, updatedAt, mediaJSON, find.ID)
	if err != nil {
		return fmt.Errorf("failed to update find: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) DeleteByID(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM finds WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFind(row rowScanner) (*models.Find, error) {
	var (
		find         models.Find
		createdAtRaw string
		updatedAtRaw sql.NullString
		mediaJSON    string
	)
	err := row.Scan(&find.ID, &find.Site, &find.Plot, &find.Layer, &find.Description,
		&find.Location, &find.DatetimeText, &createdAtRaw, &find.CreatedBy, &updatedAtRaw, &mediaJSON)
	if err != nil {
		return nil, err
	}

	find.CreatedAt, err = sqlitex.ParseTime(createdAtRaw)
	if err != nil {
		return nil, fmt.Errorf("bad created_at for %s: %w", find.ID, err)
	}
	if updatedAtRaw.Valid {
		t, err := sqlitex.ParseTime(updatedAtRaw.String)
		if err != nil {
			return nil, fmt.Errorf("bad updated_at for %s: %w", find.ID, err)
		}
		find.UpdatedAt = &t
	}
	if err := json.Unmarshal([]byte(mediaJSON), &find.Media); err != nil {
		return nil, fmt.Errorf("bad media references for %s: %w", find.ID, err)
	}
	if find.Media == nil {
		find.Media = []models.MediaRef{}
	}
	return &find, nil
}

func mediaToJSON(media []models.MediaRef) (string, error) {
	if media == nil {
		media = []models.MediaRef{}
	}
	raw, err := json.Marshal(media)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
