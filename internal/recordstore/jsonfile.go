package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tellfind/internal/models"
)

// JSONFile stores the whole find collection as one JSON array on disk.
//
// Every mutation reads the full collection, applies the change and writes
// the full collection back. Two processes writing at once race with
// last-writer-wins; the single-user usage model accepts that tradeoff.
type JSONFile struct {
	path string
	mu   sync.Mutex
}

// NewJSONFile creates a JSON-backed store at path, creating the parent
// directory if needed.
func NewJSONFile(path string) (*JSONFile, error) {
	if path == "" {
		return nil, fmt.Errorf("records path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &JSONFile{path: path}, nil
}

func (s *JSONFile) List(ctx context.Context) ([]models.Find, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll(), nil
}

func (s *JSONFile) GetByID(ctx context.Context, id string) (*models.Find, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, find := range s.readAll() {
		if find.ID == id {
			out := find.Clone()
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *JSONFile) Add(ctx context.Context, find *models.Find) error {
	if find == nil {
		return fmt.Errorf("find is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	finds := s.readAll()
	for _, existing := range finds {
		if existing.ID == find.ID {
			return ErrDuplicateID
		}
	}
	finds = append([]models.Find{find.Clone()}, finds...)
	return s.writeAll(finds)
}

func (s *JSONFile) Update(ctx context.Context, find *models.Find) error {
	if find == nil {
		return fmt.Errorf("find is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	finds := s.readAll()
	for i := range finds {
		if finds[i].ID == find.ID {
			finds[i] = find.Clone()
			return s.writeAll(finds)
		}
	}
	return ErrNotFound
}

func (s *JSONFile) DeleteByID(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	finds := s.readAll()
	kept := finds[:0]
	removed := false
	for _, find := range finds {
		if find.ID == id {
			removed = true
			continue
		}
		kept = append(kept, find)
	}
	if !removed {
		return false, nil
	}
	if err := s.writeAll(kept); err != nil {
		return false, err
	}
	return true, nil
}

// readAll treats a missing or corrupt file as an empty collection.
func (s *JSONFile) readAll() []models.Find {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return []models.Find{}
	}
	var finds []models.Find
	if err := json.Unmarshal(raw, &finds); err != nil {
		return []models.Find{}
	}
	if finds == nil {
		return []models.Find{}
	}
	return finds
}

// writeAll writes via a temp file and rename so readers never observe a
// half-written collection.
func (s *JSONFile) writeAll(finds []models.Find) error {
	raw, err := json.Marshal(finds)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "finds-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
