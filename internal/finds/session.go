package finds

import (
	"tellfind/internal/media"
	"tellfind/internal/models"
)

// ComposingSession holds the in-progress input for one create or edit.
// It is a plain value owned by the caller: opening the compose screen
// starts a session, saving or discarding ends it. The session owns the
// staged media payloads until then.
type ComposingSession struct {
	// FindID is the candidate id on create (empty means generate one).
	// On edit it is the id of the record being edited.
	FindID string

	Plot        string
	Layer       string
	Description string

	editing  bool
	original *models.Find
	items    []*media.Item
	removed  []string
	done     bool
}

// Editing reports whether the session edits an existing find.
func (s *ComposingSession) Editing() bool {
	return s.editing
}

// Media returns the staged items in attachment order.
func (s *ComposingSession) Media() []*media.Item {
	out := make([]*media.Item, len(s.items))
	copy(out, s.items)
	return out
}

// AddMedia appends staged items, preserving attachment order.
func (s *ComposingSession) AddMedia(items ...*media.Item) {
	for _, item := range items {
		if item == nil {
			continue
		}
		s.items = append(s.items, item)
	}
}

// RemoveMedia drops the item with the given id from the session. If the
// item was already durable its blob is deleted on save; an item that was
// only staged is simply released. Reports whether an item was removed.
func (s *ComposingSession) RemoveMedia(id string) bool {
	for i, item := range s.items {
		if item.ID != id {
			continue
		}
		if item.Stored {
			s.removed = append(s.removed, item.ID)
		}
		item.Release()
		s.items = append(s.items[:i], s.items[i+1:]...)
		return true
	}
	return false
}

// Discard ends the session without saving, releasing every payload.
func (s *ComposingSession) Discard() {
	s.finish()
}

func (s *ComposingSession) finish() {
	for _, item := range s.items {
		item.Release()
	}
	s.done = true
}
