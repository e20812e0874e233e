package export

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tellfind/internal/models"
	"tellfind/internal/recordstore"
)

func testStore(t *testing.T) *recordstore.JSONFile {
	t.Helper()
	store, err := recordstore.NewJSONFile(filepath.Join(t.TempDir(), "finds.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func sampleFind(id, description string) models.Find {
	return models.Find{
		ID:           id,
		Site:         "תל מגידו",
		Plot:         "א",
		Layer:        "1",
		Description:  description,
		Location:     "32.5856,35.1825",
		DatetimeText: "01/05/2024, 10:30:00",
		CreatedAt:    time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		CreatedBy:    "dana@example.com",
		Media:        []models.MediaRef{},
	}
}

func TestWriteRead_Roundtrip(t *testing.T) {
	finds := []models.Find{sampleFind("FIND-2", "מטבע"), sampleFind("FIND-1", "חרס")}

	var buf bytes.Buffer
	if err := Write(&buf, finds); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "חרס") {
		t.Fatal("bundle must carry the record text")
	}

	bundle, err := Read(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bundle.ExportedAt.IsZero() {
		t.Fatal("exportedAt not stamped")
	}
	if len(bundle.Finds) != 2 || bundle.Finds[0].ID != "FIND-2" || bundle.Finds[1].Description != "חרס" {
		t.Fatalf("roundtrip mismatch: %+v", bundle.Finds)
	}
}

func TestImport_MergesAndPreservesOrder(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	bundle := &Bundle{Finds: []models.Find{sampleFind("FIND-2", "מטבע"), sampleFind("FIND-1", "חרס")}}
	result, err := Import(ctx, store, bundle)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Added != 2 || result.Skipped != 0 {
		t.Fatalf("result = %+v, want 2 added", result)
	}

	finds, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(finds) != 2 || finds[0].ID != "FIND-2" || finds[1].ID != "FIND-1" {
		t.Fatalf("newest-first order lost: %+v", finds)
	}
}

func TestImport_SkipsExistingIDs(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	existing := sampleFind("FIND-1", "חרס מקורי")
	if err := store.Add(ctx, &existing); err != nil {
		t.Fatalf("seed: %v", err)
	}

	bundle := &Bundle{Finds: []models.Find{sampleFind("FIND-1", "חרס מיובא"), sampleFind("FIND-3", "עצם")}}
	result, err := Import(ctx, store, bundle)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Added != 1 || result.Skipped != 1 {
		t.Fatalf("result = %+v, want 1 added 1 skipped", result)
	}

	kept, err := store.GetByID(ctx, "FIND-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if kept.Description != "חרס מקורי" {
		t.Fatal("import must not overwrite an existing record")
	}
}

func TestImport_InvalidRecordAborts(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	bad := sampleFind("FIND-1", "חרס")
	bad.Layer = ""
	bundle := &Bundle{Finds: []models.Find{bad}}
	if _, err := Import(ctx, store, bundle); err == nil {
		t.Fatal("expected invalid record to abort the import")
	}
}

func TestRead_Malformed(t *testing.T) {
	if _, err := Read(strings.NewReader("{not yaml")); err == nil {
		t.Fatal("expected decode error")
	}
}
