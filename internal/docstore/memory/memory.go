// Package memory is the in-process document store. It backs tests and local
// development; subscriptions are notified synchronously on every write so
// test flows are deterministic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"homebudget/internal/docstore"
)

type Store struct {
	mu   sync.Mutex
	docs map[string]docstore.Document
	subs map[string]map[int]*subscription
	next int

	// FailWrite, when set, is consulted before every write with the target
	// path. Tests use it to inject storage failures.
	FailWrite func(path string) error
}

type subscription struct {
	store  *Store
	path   string
	id     int
	onData func(docstore.Document, bool)
}

func New() *Store {
	return &Store{
		docs: map[string]docstore.Document{},
		subs: map[string]map[int]*subscription{},
	}
}

func (s *Store) GetDocument(_ context.Context, path string) (docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[path]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (s *Store) SetDocument(_ context.Context, path string, data docstore.Document, merge bool) error {
	if err := s.writeError(path); err != nil {
		return err
	}
	s.mu.Lock()
	if merge {
		if existing, ok := s.docs[path]; ok {
			data = docstore.MergeDocuments(existing, data)
		}
	}
	s.docs[path] = cloneDocument(data)
	s.mu.Unlock()
	s.notify(path)
	return nil
}

func (s *Store) AddDocument(_ context.Context, collectionPath string, data docstore.Document) (string, error) {
	if err := s.writeError(collectionPath); err != nil {
		return "", err
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.docs[collectionPath+"/"+id] = cloneDocument(data)
	s.mu.Unlock()
	return id, nil
}

func (s *Store) DeleteDocument(_ context.Context, path string) error {
	if err := s.writeError(path); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.docs, path)
	s.mu.Unlock()
	s.notify(path)
	return nil
}

func (s *Store) ListCollection(_ context.Context, collectionPath string) ([]docstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := collectionPath + "/"
	var out []docstore.Record
	for p, doc := range s.docs {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if strings.Contains(rest, "/") {
			continue
		}
		out = append(out, docstore.Record{ID: rest, Data: cloneDocument(doc)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Subscribe(_ context.Context, path string, onData func(docstore.Document, bool), _ func(error)) (docstore.Subscription, error) {
	s.mu.Lock()
	s.next++
	sub := &subscription{store: s, path: path, id: s.next, onData: onData}
	if s.subs[path] == nil {
		s.subs[path] = map[int]*subscription{}
	}
	s.subs[path][sub.id] = sub
	doc, exists := s.docs[path]
	if exists {
		doc = cloneDocument(doc)
	}
	s.mu.Unlock()

	// Initial snapshot, same as the remote store's listener contract.
	onData(doc, exists)
	return sub, nil
}

func (s *Store) Close(context.Context) error { return nil }

// SubscriberCount reports the live listeners for a path. Test helper.
func (s *Store) SubscriberCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs[path])
}

func (sub *subscription) Stop() {
	s := sub.store
	s.mu.Lock()
	if m := s.subs[sub.path]; m != nil {
		delete(m, sub.id)
	}
	s.mu.Unlock()
}

func (s *Store) writeError(path string) error {
	s.mu.Lock()
	hook := s.FailWrite
	s.mu.Unlock()
	if hook != nil {
		return hook(path)
	}
	return nil
}

func (s *Store) notify(path string) {
	s.mu.Lock()
	doc, exists := s.docs[path]
	if exists {
		doc = cloneDocument(doc)
	}
	var targets []*subscription
	for _, sub := range s.subs[path] {
		targets = append(targets, sub)
	}
	s.mu.Unlock()
	for _, sub := range targets {
		sub.onData(doc, exists)
	}
}

func cloneDocument(doc docstore.Document) docstore.Document {
	if doc == nil {
		return nil
	}
	out := make(docstore.Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneDocument(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
