// Package finds orchestrates the find lifecycle across the record and
// blob stores. The stores know nothing about each other; the invariants
// between them (id uniqueness, media-before-record commit ordering,
// cascade deletes) are enforced here.
package finds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tellfind/internal/blobstore"
	"tellfind/internal/geo"
	"tellfind/internal/ids"
	"tellfind/internal/media"
	"tellfind/internal/models"
	"tellfind/internal/recordstore"
)

// datetimeLayout renders the creation wall-clock snapshot the way the
// field app displays it (day first).
const datetimeLayout = "02/01/2006, 15:04:05"

// Service is the find lifecycle manager.
type Service struct {
	records recordstore.Store
	blobs   blobstore.Store
	locator geo.Locator
	logger  *slog.Logger

	now func() time.Time
}

// NewService constructs a Service. locator may be nil, in which case new
// finds record the unavailable marker.
func NewService(records recordstore.Store, blobs blobstore.Store, locator geo.Locator) *Service {
	return &Service{
		records: records,
		blobs:   blobs,
		locator: locator,
		logger:  slog.Default(),
		now:     time.Now,
	}
}

// SetLogger overrides the default logger.
func (s *Service) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// ListFinds returns all finds, most recently created first.
func (s *Service) ListFinds(ctx context.Context) ([]models.Find, error) {
	finds, err := s.records.List(ctx)
	if err != nil {
		return nil, storageError(ErrCodeStoreFailure, err)
	}
	return finds, nil
}

// GetFind returns one find by id.
func (s *Service) GetFind(ctx context.Context, id string) (*models.Find, error) {
	find, err := s.records.GetByID(ctx, id)
	if errors.Is(err, recordstore.ErrNotFound) {
		return nil, notFoundError(ErrCodeFindNotFound, fmt.Errorf("find %s not found", id))
	}
	if err != nil {
		return nil, storageError(ErrCodeStoreFailure, err)
	}
	return find, nil
}

// NewComposeSession starts a session for a new find.
func (s *Service) NewComposeSession() *ComposingSession {
	return &ComposingSession{}
}

// EditSession loads an existing find into a session, rehydrating media
// payloads from the blob store for preview. A missing blob marks the
// item as missing; it never fails the load.
func (s *Service) EditSession(ctx context.Context, id string) (*ComposingSession, error) {
	find, err := s.GetFind(ctx, id)
	if err != nil {
		return nil, err
	}

	items := make([]*media.Item, 0, len(find.Media))
	for _, ref := range find.Media {
		item := &media.Item{ID: ref.ID, Kind: ref.Kind, MIME: ref.MIME, Name: ref.Name, Stored: true}
		entry, err := s.blobs.Get(ctx, ref.ID)
		switch {
		case err != nil:
			s.logger.Warn("media rehydration failed", "find", find.ID, "media", ref.ID, "error", err)
			item.Missing = true
		case entry == nil:
			item.Missing = true
		default:
			item.Data = entry.Data
		}
		items = append(items, item)
	}

	return &ComposingSession{
		FindID:      find.ID,
		Plot:        find.Plot,
		Layer:       find.Layer,
		Description: find.Description,
		editing:     true,
		original:    find,
		items:       items,
	}, nil
}

// SaveSession commits a session: staged media first, in one atomic
// batch, then the record. A failed save leaves all prior state in place
// and keeps the session open so the caller can retry or discard.
func (s *Service) SaveSession(ctx context.Context, sess *ComposingSession, user models.User) (*models.Find, error) {
	if sess == nil || sess.done {
		return nil, validationError(ErrCodeNoActiveSession, fmt.Errorf("no active compose session"))
	}
	if err := user.Validate(); err != nil {
		return nil, validationError(ErrCodeInvalidUser, err)
	}
	if err := validateInput(sess); err != nil {
		return nil, err
	}

	if sess.editing {
		return s.saveEdit(ctx, sess)
	}
	return s.saveCreate(ctx, sess, user)
}

// DeleteFind removes a find and, best-effort, every blob it references.
// A blob that cannot be deleted is logged and orphaned; only failure to
// delete the record itself is an error.
func (s *Service) DeleteFind(ctx context.Context, id string) error {
	find, err := s.GetFind(ctx, id)
	if err != nil {
		return err
	}

	for _, ref := range find.Media {
		if err := s.blobs.Delete(ctx, ref.ID); err != nil {
			s.logger.Warn("media cleanup failed, blob orphaned", "find", id, "media", ref.ID, "error", err)
		}
	}

	removed, err := s.records.DeleteByID(ctx, id)
	if err != nil {
		return storageError(ErrCodeStoreFailure, err)
	}
	if !removed {
		return notFoundError(ErrCodeFindNotFound, fmt.Errorf("find %s not found", id))
	}
	return nil
}

func (s *Service) saveCreate(ctx context.Context, sess *ComposingSession, user models.User) (*models.Find, error) {
	id, err := s.resolveCreateID(ctx, sess.FindID)
	if err != nil {
		return nil, err
	}

	if err := s.commitNewMedia(ctx, sess.items); err != nil {
		return nil, err
	}

	now := s.now()
	find := &models.Find{
		ID:           id,
		Site:         user.Site,
		Plot:         strings.TrimSpace(sess.Plot),
		Layer:        strings.TrimSpace(sess.Layer),
		Description:  strings.TrimSpace(sess.Description),
		Location:     s.resolveLocation(ctx),
		DatetimeText: now.Format(datetimeLayout),
		CreatedAt:    now.UTC(),
		CreatedBy:    user.Email,
		Media:        mediaRefs(sess.items),
	}

	if err := s.records.Add(ctx, find); err != nil {
		// Media is durable by now; a lost race or store failure orphans
		// those blobs rather than ever producing a record whose
		// references point at nothing.
		s.logger.Warn("record commit failed after media commit", "find", id, "error", err)
		if errors.Is(err, recordstore.ErrDuplicateID) {
			return nil, conflictError(ErrCodeFindIDExists, fmt.Errorf("find id %s already exists", id))
		}
		return nil, storageError(ErrCodeStoreFailure, err)
	}

	sess.finish()
	return find, nil
}

func (s *Service) saveEdit(ctx context.Context, sess *ComposingSession) (*models.Find, error) {
	if err := s.commitNewMedia(ctx, sess.items); err != nil {
		return nil, err
	}

	// Immutable fields (id, site, location, datetime snapshot,
	// provenance) carry over from the original record.
	updated := sess.original.Clone()
	updated.Plot = strings.TrimSpace(sess.Plot)
	updated.Layer = strings.TrimSpace(sess.Layer)
	updated.Description = strings.TrimSpace(sess.Description)
	updated.Media = mediaRefs(sess.items)
	editedAt := s.now().UTC()
	updated.UpdatedAt = &editedAt

	if err := s.records.Update(ctx, &updated); err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return nil, notFoundError(ErrCodeFindNotFound, fmt.Errorf("find %s no longer exists", updated.ID))
		}
		return nil, storageError(ErrCodeStoreFailure, err)
	}

	for _, id := range sess.removed {
		if err := s.blobs.Delete(ctx, id); err != nil {
			s.logger.Warn("removed media cleanup failed, blob orphaned", "find", updated.ID, "media", id, "error", err)
		}
	}

	sess.finish()
	return &updated, nil
}

func (s *Service) resolveCreateID(ctx context.Context, candidate string) (string, error) {
	candidate = strings.TrimSpace(candidate)
	exists := func(id string) (bool, error) {
		_, err := s.records.GetByID(ctx, id)
		if errors.Is(err, recordstore.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}

	if candidate != "" {
		taken, err := exists(candidate)
		if err != nil {
			return "", storageError(ErrCodeStoreFailure, err)
		}
		if taken {
			return "", conflictError(ErrCodeFindIDExists, fmt.Errorf("find id %s already exists", candidate))
		}
		return candidate, nil
	}

	id, err := ids.NewFindID(s.now(), exists)
	if err != nil {
		return "", storageError(ErrCodeStoreFailure, err)
	}
	return id, nil
}

// commitNewMedia writes every not-yet-durable item in one atomic batch
// and marks the items stored. Committing media before the record is
// deliberate: a crash between the two steps orphans a harmless blob
// instead of persisting a record with references pointing nowhere.
func (s *Service) commitNewMedia(ctx context.Context, items []*media.Item) error {
	var entries []blobstore.Entry
	var pending []*media.Item
	for _, item := range items {
		if item.Stored {
			continue
		}
		entries = append(entries, blobstore.Entry{
			ID:   item.ID,
			Kind: item.Kind,
			MIME: item.MIME,
			Name: item.Name,
			Data: item.Data,
		})
		pending = append(pending, item)
	}
	if len(entries) == 0 {
		return nil
	}

	if err := s.blobs.PutBatch(ctx, entries); err != nil {
		return storageError(ErrCodeMediaCommitFailed, fmt.Errorf("media commit failed: %w", err))
	}
	for _, item := range pending {
		item.Stored = true
	}
	return nil
}

func (s *Service) resolveLocation(ctx context.Context) string {
	if s.locator == nil {
		return geo.Unavailable
	}
	loc := s.locator.Locate(ctx)
	if strings.TrimSpace(loc) == "" {
		return geo.Unavailable
	}
	return loc
}

func validateInput(sess *ComposingSession) error {
	if strings.TrimSpace(sess.Plot) == "" {
		return validationError(ErrCodeMissingRequired, fmt.Errorf("plot is required"))
	}
	if strings.TrimSpace(sess.Layer) == "" {
		return validationError(ErrCodeMissingRequired, fmt.Errorf("layer is required"))
	}
	if strings.TrimSpace(sess.Description) == "" {
		return validationError(ErrCodeMissingRequired, fmt.Errorf("description is required"))
	}
	return nil
}

func mediaRefs(items []*media.Item) []models.MediaRef {
	refs := make([]models.MediaRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, item.Ref())
	}
	return refs
}
