package finds

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tellfind/internal/blobstore"
	"tellfind/internal/geo"
	"tellfind/internal/media"
	"tellfind/internal/models"
	"tellfind/internal/recordstore"
)

// fakeBlobStore keeps entries in memory and can be told to fail.
type fakeBlobStore struct {
	entries    map[string]blobstore.Entry
	failPut    error
	failDelete map[string]error
	failGet    map[string]error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		entries:    map[string]blobstore.Entry{},
		failDelete: map[string]error{},
		failGet:    map[string]error{},
	}
}

func (f *fakeBlobStore) PutBatch(ctx context.Context, entries []blobstore.Entry) error {
	if f.failPut != nil {
		return f.failPut
	}
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		f.entries[entry.ID] = entry
	}
	return nil
}

func (f *fakeBlobStore) Get(ctx context.Context, id string) (*blobstore.Entry, error) {
	if err := f.failGet[id]; err != nil {
		return nil, err
	}
	entry, ok := f.entries[id]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, id string) error {
	if err := f.failDelete[id]; err != nil {
		return err
	}
	delete(f.entries, id)
	return nil
}

// failingRecords wraps a real store and injects mutation failures.
type failingRecords struct {
	recordstore.Store
	failAdd    error
	failUpdate error
}

func (f *failingRecords) Add(ctx context.Context, find *models.Find) error {
	if f.failAdd != nil {
		return f.failAdd
	}
	return f.Store.Add(ctx, find)
}

func (f *failingRecords) Update(ctx context.Context, find *models.Find) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	return f.Store.Update(ctx, find)
}

func testUser() models.User {
	return models.User{Name: "דנה", Email: "dana@example.com", Role: models.RoleWorker, Site: "תל מגידו"}
}

func testService(t *testing.T) (*Service, recordstore.Store, *fakeBlobStore) {
	t.Helper()
	records, err := recordstore.NewJSONFile(filepath.Join(t.TempDir(), "finds.json"))
	if err != nil {
		t.Fatalf("new record store: %v", err)
	}
	blobs := newFakeBlobStore()
	svc := NewService(records, blobs, geo.Static{Position: "32.5856,35.1825"})
	return svc, records, blobs
}

func stagedImage(t *testing.T, name string) *media.Item {
	t.Helper()
	items, err := media.NewStager(0).StageFiles([]media.File{
		{Name: name, ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff, 0xe0}},
	})
	if err != nil || len(items) != 1 {
		t.Fatalf("stage image: (%d items, %v)", len(items), err)
	}
	return items[0]
}

func createFind(t *testing.T, svc *Service, id string) *models.Find {
	t.Helper()
	sess := svc.NewComposeSession()
	sess.FindID = id
	sess.Plot = "א"
	sess.Layer = "1"
	sess.Description = "חרס"
	find, err := svc.SaveSession(context.Background(), sess, testUser())
	if err != nil {
		t.Fatalf("create find: %v", err)
	}
	return find
}

func TestSaveSession_CreateThenList(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	sess := svc.NewComposeSession()
	sess.Plot = "ב"
	sess.Layer = "2"
	sess.Description = "מטבע"
	find, err := svc.SaveSession(ctx, sess, testUser())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(find.ID, "FIND-") {
		t.Fatalf("expected generated FIND- id, got %q", find.ID)
	}
	if find.Site != "תל מגידו" || find.CreatedBy != "dana@example.com" {
		t.Fatalf("provenance not taken from user: %+v", find)
	}
	if find.Location != "32.5856,35.1825" {
		t.Fatalf("location not captured: %q", find.Location)
	}
	if find.DatetimeText == "" || find.CreatedAt.IsZero() {
		t.Fatalf("creation snapshot missing: %+v", find)
	}
	if find.UpdatedAt != nil {
		t.Fatal("new find must have no updated_at")
	}

	finds, err := svc.ListFinds(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(finds) != 1 || finds[0].ID != find.ID || finds[0].Description != "מטבע" {
		t.Fatalf("list mismatch: %+v", finds)
	}
}

func TestSaveSession_CreateWithoutMedia_Scenario(t *testing.T) {
	svc, _, _ := testService(t)
	createFind(t, svc, "FIND-1")

	finds, err := svc.ListFinds(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(finds) != 1 {
		t.Fatalf("expected one find, got %d", len(finds))
	}
	got := finds[0]
	if got.ID != "FIND-1" || got.Site != "תל מגידו" || got.Plot != "א" || got.Layer != "1" || got.Description != "חרס" {
		t.Fatalf("field mismatch: %+v", got)
	}
	if len(got.Media) != 0 {
		t.Fatalf("expected empty media, got %d refs", len(got.Media))
	}
}

func TestSaveSession_ValidationFailureMutatesNothing(t *testing.T) {
	svc, _, blobs := testService(t)
	ctx := context.Background()

	sess := svc.NewComposeSession()
	sess.Plot = "א"
	sess.Layer = ""
	sess.Description = "חרס"
	sess.AddMedia(stagedImage(t, "a.jpg"))

	_, err := svc.SaveSession(ctx, sess, testUser())
	if !IsKind(err, KindValidation) || CodeOf(err) != ErrCodeMissingRequired {
		t.Fatalf("expected missing-required validation error, got %v", err)
	}
	finds, _ := svc.ListFinds(ctx)
	if len(finds) != 0 {
		t.Fatal("failed validation must not add a record")
	}
	if len(blobs.entries) != 0 {
		t.Fatal("failed validation must not commit media")
	}

	// The session stays open; fixing the input makes the save succeed.
	sess.Layer = "3"
	if _, err := svc.SaveSession(ctx, sess, testUser()); err != nil {
		t.Fatalf("retry after fixing input: %v", err)
	}
}

func TestSaveSession_UserSuppliedIDCollision(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()
	createFind(t, svc, "FIND-1")

	sess := svc.NewComposeSession()
	sess.FindID = "FIND-1"
	sess.Plot = "ג"
	sess.Layer = "4"
	sess.Description = "עצם"
	_, err := svc.SaveSession(ctx, sess, testUser())
	if !IsKind(err, KindConflict) || CodeOf(err) != ErrCodeFindIDExists {
		t.Fatalf("expected id conflict, got %v", err)
	}

	finds, _ := svc.ListFinds(ctx)
	if len(finds) != 1 || finds[0].Description != "חרס" {
		t.Fatalf("conflicting save must not alter the store: %+v", finds)
	}
}

func TestSaveSession_CreateWithMedia_CommitsBlobsThenRecord(t *testing.T) {
	svc, _, blobs := testService(t)
	ctx := context.Background()

	item := stagedImage(t, "a.jpg")
	sess := svc.NewComposeSession()
	sess.Plot = "א"
	sess.Layer = "1"
	sess.Description = "פסיפס"
	sess.AddMedia(item)

	find, err := svc.SaveSession(ctx, sess, testUser())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(find.Media) != 1 {
		t.Fatalf("expected one media ref, got %d", len(find.Media))
	}
	ref := find.Media[0]
	if ref.ID != item.ID || ref.Kind != models.MediaKindImage || ref.MIME != "image/jpeg" || ref.Name != "a.jpg" {
		t.Fatalf("media ref mismatch: %+v", ref)
	}

	entry, err := blobs.Get(ctx, ref.ID)
	if err != nil || entry == nil {
		t.Fatalf("blob missing after save: (%+v, %v)", entry, err)
	}
	if !bytes.Equal(entry.Data, []byte{0xff, 0xd8, 0xff, 0xe0}) {
		t.Fatal("blob payload mismatch")
	}

	// Payloads are released once the session ends by saving.
	if item.Data != nil {
		t.Fatal("payload must be released after save")
	}
	if !item.Stored {
		t.Fatal("item must be marked stored after commit")
	}
}

func TestSaveSession_MediaCommitFailureAbortsSave(t *testing.T) {
	svc, _, blobs := testService(t)
	ctx := context.Background()
	blobs.failPut = fmt.Errorf("quota exceeded")

	sess := svc.NewComposeSession()
	sess.Plot = "א"
	sess.Layer = "1"
	sess.Description = "חרס"
	sess.AddMedia(stagedImage(t, "a.jpg"))

	_, err := svc.SaveSession(ctx, sess, testUser())
	if !IsKind(err, KindStorage) || CodeOf(err) != ErrCodeMediaCommitFailed {
		t.Fatalf("expected media commit failure, got %v", err)
	}
	finds, _ := svc.ListFinds(ctx)
	if len(finds) != 0 {
		t.Fatal("aborted save must not add a record")
	}
}

func TestSaveSession_RecordAddFailureSurfacesStorageError(t *testing.T) {
	records, err := recordstore.NewJSONFile(filepath.Join(t.TempDir(), "finds.json"))
	if err != nil {
		t.Fatalf("new record store: %v", err)
	}
	failing := &failingRecords{Store: records, failAdd: fmt.Errorf("quota exceeded")}
	svc := NewService(failing, newFakeBlobStore(), nil)

	sess := svc.NewComposeSession()
	sess.Plot = "א"
	sess.Layer = "1"
	sess.Description = "חרס"
	_, err = svc.SaveSession(context.Background(), sess, testUser())
	if !IsKind(err, KindStorage) || CodeOf(err) != ErrCodeStoreFailure {
		t.Fatalf("expected storage failure, got %v", err)
	}
}

func TestSaveSession_LocatorAbsentRecordsUnavailable(t *testing.T) {
	records, err := recordstore.NewJSONFile(filepath.Join(t.TempDir(), "finds.json"))
	if err != nil {
		t.Fatalf("new record store: %v", err)
	}
	svc := NewService(records, newFakeBlobStore(), nil)

	sess := svc.NewComposeSession()
	sess.Plot = "א"
	sess.Layer = "1"
	sess.Description = "חרס"
	find, err := svc.SaveSession(context.Background(), sess, testUser())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if find.Location != geo.Unavailable {
		t.Fatalf("expected unavailable marker, got %q", find.Location)
	}
}

func TestEditSession_SaveWithoutMediaChangesKeepsReferences(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	sess := svc.NewComposeSession()
	sess.FindID = "FIND-1"
	sess.Plot = "א"
	sess.Layer = "1"
	sess.Description = "חרס"
	sess.AddMedia(stagedImage(t, "a.jpg"), stagedImage(t, "b.jpg"))
	created, err := svc.SaveSession(ctx, sess, testUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	edit, err := svc.EditSession(ctx, "FIND-1")
	if err != nil {
		t.Fatalf("edit session: %v", err)
	}
	edit.Description = "חרס מעוטר"
	updated, err := svc.SaveSession(ctx, edit, testUser())
	if err != nil {
		t.Fatalf("save edit: %v", err)
	}

	if len(updated.Media) != len(created.Media) {
		t.Fatalf("media length changed: %d -> %d", len(created.Media), len(updated.Media))
	}
	for i := range created.Media {
		if updated.Media[i] != created.Media[i] {
			t.Fatalf("media ref %d changed: %+v -> %+v", i, created.Media[i], updated.Media[i])
		}
	}
	if updated.UpdatedAt == nil {
		t.Fatal("edit must stamp updated_at")
	}
}

func TestEditSession_ImmutableFieldsCarryOver(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()
	created := createFind(t, svc, "FIND-1")

	edit, err := svc.EditSession(ctx, "FIND-1")
	if err != nil {
		t.Fatalf("edit session: %v", err)
	}
	edit.Plot = "ד"
	edit.Description = "תיאור חדש"

	// A different user saving the edit must not rewrite provenance.
	other := models.User{Name: "יוסי", Email: "yossi@example.com", Role: models.RoleAdmin, Site: "מצדה"}
	updated, err := svc.SaveSession(ctx, edit, other)
	if err != nil {
		t.Fatalf("save edit: %v", err)
	}

	if updated.ID != created.ID || updated.Site != created.Site || updated.CreatedBy != created.CreatedBy {
		t.Fatalf("immutable identity changed: %+v", updated)
	}
	if updated.Location != created.Location || updated.DatetimeText != created.DatetimeText {
		t.Fatalf("immutable snapshot changed: %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("created_at changed on edit")
	}
	if updated.Plot != "ד" || updated.Description != "תיאור חדש" {
		t.Fatalf("mutable fields not applied: %+v", updated)
	}
}

func TestEditSession_AddImage_Scenario(t *testing.T) {
	svc, _, blobs := testService(t)
	ctx := context.Background()
	createFind(t, svc, "FIND-1")

	edit, err := svc.EditSession(ctx, "FIND-1")
	if err != nil {
		t.Fatalf("edit session: %v", err)
	}
	item := stagedImage(t, "situ.jpg")
	edit.AddMedia(item)
	if _, err := svc.SaveSession(ctx, edit, testUser()); err != nil {
		t.Fatalf("save edit: %v", err)
	}

	got, err := svc.GetFind(ctx, "FIND-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Media) != 1 {
		t.Fatalf("expected media length 1, got %d", len(got.Media))
	}
	entry, err := blobs.Get(ctx, got.Media[0].ID)
	if err != nil || entry == nil || len(entry.Data) == 0 {
		t.Fatalf("expected binary in blob store, got (%+v, %v)", entry, err)
	}
}

func TestEditSession_RemoveMediaCascadesBlobDelete(t *testing.T) {
	svc, _, blobs := testService(t)
	ctx := context.Background()

	sess := svc.NewComposeSession()
	sess.FindID = "FIND-1"
	sess.Plot = "א"
	sess.Layer = "1"
	sess.Description = "חרס"
	sess.AddMedia(stagedImage(t, "keep.jpg"), stagedImage(t, "drop.jpg"))
	created, err := svc.SaveSession(ctx, sess, testUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	dropID := created.Media[1].ID

	edit, err := svc.EditSession(ctx, "FIND-1")
	if err != nil {
		t.Fatalf("edit session: %v", err)
	}
	if !edit.RemoveMedia(dropID) {
		t.Fatalf("expected %s removable", dropID)
	}
	if _, err := svc.SaveSession(ctx, edit, testUser()); err != nil {
		t.Fatalf("save edit: %v", err)
	}

	entry, err := blobs.Get(ctx, dropID)
	if err != nil || entry != nil {
		t.Fatalf("blob must be deleted, got (%+v, %v)", entry, err)
	}
	got, _ := svc.GetFind(ctx, "FIND-1")
	if len(got.Media) != 1 || got.Media[0].ID == dropID {
		t.Fatalf("record must drop the reference: %+v", got.Media)
	}
}

func TestEditSession_ToleratesMissingBlob(t *testing.T) {
	svc, _, blobs := testService(t)
	ctx := context.Background()

	sess := svc.NewComposeSession()
	sess.FindID = "FIND-1"
	sess.Plot = "א"
	sess.Layer = "1"
	sess.Description = "חרס"
	sess.AddMedia(stagedImage(t, "a.jpg"), stagedImage(t, "b.jpg"))
	created, err := svc.SaveSession(ctx, sess, testUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// One blob vanished underneath, one fails to read.
	delete(blobs.entries, created.Media[0].ID)
	blobs.failGet[created.Media[1].ID] = fmt.Errorf("io error")

	edit, err := svc.EditSession(ctx, "FIND-1")
	if err != nil {
		t.Fatalf("edit over dangling reference must not fail: %v", err)
	}
	items := edit.Media()
	if len(items) != 2 {
		t.Fatalf("expected two items, got %d", len(items))
	}
	for i, item := range items {
		if !item.Missing || !item.Stored {
			t.Fatalf("item %d must be stored and missing, got %+v", i, item)
		}
	}

	// Saving keeps the dangling reference; the record stays usable.
	if _, err := svc.SaveSession(ctx, edit, testUser()); err != nil {
		t.Fatalf("save over dangling reference: %v", err)
	}
}

func TestSaveSession_EditAfterConcurrentDeleteReportsNotFound(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()
	createFind(t, svc, "FIND-1")

	edit, err := svc.EditSession(ctx, "FIND-1")
	if err != nil {
		t.Fatalf("edit session: %v", err)
	}
	if err := svc.DeleteFind(ctx, "FIND-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	edit.Description = "עדכון מאוחר"
	_, err = svc.SaveSession(ctx, edit, testUser())
	if !IsKind(err, KindNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	finds, _ := svc.ListFinds(ctx)
	if len(finds) != 0 {
		t.Fatal("failed edit save must not create a record")
	}
}

func TestDeleteFind_CascadesAndIsNotFoundAfter(t *testing.T) {
	svc, _, blobs := testService(t)
	ctx := context.Background()

	sess := svc.NewComposeSession()
	sess.FindID = "FIND-1"
	sess.Plot = "א"
	sess.Layer = "1"
	sess.Description = "חרס"
	sess.AddMedia(stagedImage(t, "a.jpg"))
	created, err := svc.SaveSession(ctx, sess, testUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	mediaID := created.Media[0].ID

	if err := svc.DeleteFind(ctx, "FIND-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetFind(ctx, "FIND-1"); !IsKind(err, KindNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
	entry, err := blobs.Get(ctx, mediaID)
	if err != nil || entry != nil {
		t.Fatalf("expected blob removed, got (%+v, %v)", entry, err)
	}

	if err := svc.DeleteFind(ctx, "FIND-1"); !IsKind(err, KindNotFound) {
		t.Fatalf("expected not-found on repeated delete, got %v", err)
	}
}

func TestDeleteFind_BlobFailureIsNotFatal(t *testing.T) {
	svc, _, blobs := testService(t)
	ctx := context.Background()

	sess := svc.NewComposeSession()
	sess.FindID = "FIND-1"
	sess.Plot = "א"
	sess.Layer = "1"
	sess.Description = "חרס"
	sess.AddMedia(stagedImage(t, "a.jpg"))
	created, err := svc.SaveSession(ctx, sess, testUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	blobs.failDelete[created.Media[0].ID] = fmt.Errorf("io error")

	if err := svc.DeleteFind(ctx, "FIND-1"); err != nil {
		t.Fatalf("delete must succeed despite blob cleanup failure: %v", err)
	}
	if _, err := svc.GetFind(ctx, "FIND-1"); !IsKind(err, KindNotFound) {
		t.Fatalf("record must be gone, got %v", err)
	}
}

func TestSaveSession_ClosedSessionRejected(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	sess := svc.NewComposeSession()
	sess.Plot = "א"
	sess.Layer = "1"
	sess.Description = "חרס"
	if _, err := svc.SaveSession(ctx, sess, testUser()); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, err := svc.SaveSession(ctx, sess, testUser())
	if !IsKind(err, KindValidation) || CodeOf(err) != ErrCodeNoActiveSession {
		t.Fatalf("expected closed-session error, got %v", err)
	}
}

func TestDiscard_ReleasesPayloads(t *testing.T) {
	svc, _, blobs := testService(t)

	item := stagedImage(t, "a.jpg")
	sess := svc.NewComposeSession()
	sess.AddMedia(item)
	sess.Discard()

	if item.Data != nil {
		t.Fatal("discard must release staged payloads")
	}
	if len(blobs.entries) != 0 {
		t.Fatal("discard must not write blobs")
	}
}

func TestSaveSession_DatetimeSnapshotUsesClock(t *testing.T) {
	svc, _, _ := testService(t)
	fixed := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	find := createFind(t, svc, "")
	if find.DatetimeText != "01/05/2024, 10:30:00" {
		t.Fatalf("unexpected datetime snapshot: %q", find.DatetimeText)
	}
	if !find.CreatedAt.Equal(fixed) {
		t.Fatalf("created_at mismatch: %v", find.CreatedAt)
	}
	if !strings.HasPrefix(find.ID, fmt.Sprintf("FIND-%d-", fixed.UnixMilli())) {
		t.Fatalf("id does not embed creation millis: %q", find.ID)
	}
}
