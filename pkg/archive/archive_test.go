package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/trace"
)

func sampleDoc(engine string, created time.Time) *trace.Document {
	rec := trace.NewRecorder()
	rec.Record("visit", []string{"n1"}, trace.Payload{"key": 3},
		trace.Frame{Nodes: []trace.FrameNode{{ID: "n1", Label: "3"}}}, "visit n1")
	rec.Record("found", []string{"n1"}, nil,
		trace.Frame{Nodes: []trace.FrameNode{{ID: "n1", Label: "3", Marked: true}}}, "found 3")
	return &trace.Document{
		Engine:    engine,
		Operation: "search",
		Result:    map[string]any{"found": true},
		Steps:     rec.Log(),
		CreatedAt: created,
	}
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	// Save assigns an id
	doc := sampleDoc("bst", base)
	id, err := s.Save(ctx, doc)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == "" || doc.ID != id {
		t.Fatalf("Save should assign the id to the document: id=%q doc.ID=%q", id, doc.ID)
	}

	// Get round-trips steps and frames
	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Engine != "bst" || got.Steps.Len() != 2 {
		t.Errorf("Get returned %s with %d steps", got.Engine, got.Steps.Len())
	}
	if n, ok := got.Steps.At(1).Snapshot.Frame().Node("n1"); !ok || !n.Marked {
		t.Errorf("frame lost in storage: %+v", n)
	}
	if k, _ := got.Steps.At(0).Int("key"); k != 3 {
		t.Errorf("payload lost in storage: %v", got.Steps.At(0).Payload)
	}

	// Missing ids are TRACE_NOT_FOUND
	if _, err := s.Get(ctx, NewID()); !errors.Is(err, errors.ErrCodeTraceNotFound) {
		t.Errorf("Get of missing id: %v", err)
	}

	// Saving an explicit id replaces the document
	again := sampleDoc("avl", base)
	again.ID = id
	if _, err := s.Save(ctx, again); err != nil {
		t.Fatalf("Save replace: %v", err)
	}
	got, err = s.Get(ctx, id)
	if err != nil || got.Engine != "avl" {
		t.Errorf("replace failed: %v %v", got, err)
	}

	// List is newest first
	newer := sampleDoc("trie", base.Add(time.Hour))
	if _, err := s.Save(ctx, newer); err != nil {
		t.Fatal(err)
	}
	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Engine != "trie" || list[1].ID != id {
		t.Errorf("List = %+v", list)
	}
	if list[0].Steps != 2 {
		t.Errorf("summary steps = %d, want 2", list[0].Steps)
	}
	if one, _ := s.List(ctx, 1); len(one) != 1 {
		t.Errorf("List(1) returned %d entries", len(one))
	}

	// Delete is idempotent
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, errors.ErrCodeTraceNotFound) {
		t.Errorf("Get after Delete: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStore(t, s)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := s.Get(ctx, "../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Get with traversal id: %v", err)
	}
	doc := sampleDoc("bst", time.Now())
	doc.ID = "../escape"
	if _, err := s.Save(ctx, doc); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Save with traversal id: %v", err)
	}
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	list, err := s.List(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("List should skip foreign files, got %+v", list)
	}
}

func TestSaveSetsCreatedAt(t *testing.T) {
	s := NewMemoryStore()
	doc := sampleDoc("lcs", time.Time{})
	if _, err := s.Save(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("Save should stamp CreatedAt")
	}
}

func TestNewMongoStoreRejectsBadURI(t *testing.T) {
	for _, uri := range []string{"", "redis://localhost", "localhost:27017"} {
		_, err := NewMongoStore(context.Background(), uri, "")
		if !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("NewMongoStore(%q) error = %v, want INVALID_CONFIG", uri, err)
		}
	}
}
