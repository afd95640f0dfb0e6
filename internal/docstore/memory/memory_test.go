package memory

import (
	"context"
	"errors"
	"testing"

	"homebudget/internal/docstore"
)

func TestGetSetDocument(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetDocument(ctx, "a/b"); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("missing document: got %v, want ErrNotFound", err)
	}

	if err := s.SetDocument(ctx, "a/b", docstore.Document{"x": 1.0}, false); err != nil {
		t.Fatalf("SetDocument: %v", err)
	}
	doc, err := s.GetDocument(ctx, "a/b")
	if err != nil || doc["x"] != 1.0 {
		t.Fatalf("GetDocument = %v, %v", doc, err)
	}

	// Returned documents must not alias the stored copy.
	doc["x"] = 99.0
	again, _ := s.GetDocument(ctx, "a/b")
	if again["x"] != 1.0 {
		t.Errorf("stored document was mutated through a returned copy")
	}
}

func TestSetDocumentMerge(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.SetDocument(ctx, "p", docstore.Document{"a": 1.0, "b": 2.0}, false)
	s.SetDocument(ctx, "p", docstore.Document{"b": 3.0, "c": 4.0}, true)

	doc, _ := s.GetDocument(ctx, "p")
	if doc["a"] != 1.0 || doc["b"] != 3.0 || doc["c"] != 4.0 {
		t.Errorf("merge result = %v", doc)
	}

	// Non-merge write replaces wholesale.
	s.SetDocument(ctx, "p", docstore.Document{"only": true}, false)
	doc, _ = s.GetDocument(ctx, "p")
	if _, ok := doc["a"]; ok || len(doc) != 1 {
		t.Errorf("replace result = %v", doc)
	}
}

func TestAddDocumentAndListCollection(t *testing.T) {
	s := New()
	ctx := context.Background()

	id1, err := s.AddDocument(ctx, "col", docstore.Document{"n": 1.0})
	if err != nil || id1 == "" {
		t.Fatalf("AddDocument: id=%q err=%v", id1, err)
	}
	id2, _ := s.AddDocument(ctx, "col", docstore.Document{"n": 2.0})
	if id1 == id2 {
		t.Fatalf("ids must be unique")
	}

	// Nested documents are not direct children and must not be listed.
	s.SetDocument(ctx, "col/"+id1+"/sub/deep", docstore.Document{"nested": true}, false)

	records, err := s.ListCollection(ctx, "col")
	if err != nil || len(records) != 2 {
		t.Fatalf("ListCollection = %v, %v", records, err)
	}
	for _, rec := range records {
		if rec.ID != id1 && rec.ID != id2 {
			t.Errorf("unexpected record id %q", rec.ID)
		}
	}
}

func TestDeleteDocument(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.SetDocument(ctx, "p", docstore.Document{"a": 1.0}, false)
	if err := s.DeleteDocument(ctx, "p"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := s.GetDocument(ctx, "p"); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("document survived delete: %v", err)
	}
}

func TestSubscribeDeliversInitialSnapshotAndUpdates(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SetDocument(ctx, "p", docstore.Document{"v": 1.0}, false)

	var got []float64
	var missing int
	sub, err := s.Subscribe(ctx, "p", func(doc docstore.Document, exists bool) {
		if !exists {
			missing++
			return
		}
		got = append(got, doc["v"].(float64))
	}, nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	s.SetDocument(ctx, "p", docstore.Document{"v": 2.0}, false)
	s.DeleteDocument(ctx, "p")

	if len(got) != 2 || got[0] != 1.0 || got[1] != 2.0 {
		t.Errorf("snapshots = %v", got)
	}
	if missing != 1 {
		t.Errorf("missing callbacks = %d, want 1", missing)
	}

	sub.Stop()
	s.SetDocument(ctx, "p", docstore.Document{"v": 3.0}, false)
	if len(got) != 2 {
		t.Errorf("stopped subscription still received updates")
	}
	if n := s.SubscriberCount("p"); n != 0 {
		t.Errorf("SubscriberCount = %d after Stop", n)
	}
}

func TestFailWriteHook(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("disk full")
	s.FailWrite = func(path string) error {
		if path == "bad" {
			return boom
		}
		return nil
	}

	if err := s.SetDocument(ctx, "bad", docstore.Document{}, false); !errors.Is(err, boom) {
		t.Errorf("SetDocument = %v, want injected error", err)
	}
	if err := s.SetDocument(ctx, "good", docstore.Document{}, false); err != nil {
		t.Errorf("unaffected path failed: %v", err)
	}
}
