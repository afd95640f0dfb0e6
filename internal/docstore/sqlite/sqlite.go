// Package sqlite persists documents in a local SQLite file, keyed by path.
// It is the primary store for single-process deployments; subscriptions see
// local writes only, which is all a single process produces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"homebudget/internal/docstore"
)

type Store struct {
	db *sql.DB

	mu   sync.Mutex
	subs map[string]map[int]*subscription
	next int
}

type subscription struct {
	store  *Store
	path   string
	id     int
	onData func(docstore.Document, bool)
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:   db,
		subs: map[string]map[int]*subscription{},
	}, nil
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

func (s *Store) GetDocument(ctx context.Context, path string) (docstore.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, path).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", path, err)
	}
	return decodeDocument(path, raw)
}

func (s *Store) SetDocument(ctx context.Context, path string, data docstore.Document, merge bool) error {
	if merge {
		existing, err := s.GetDocument(ctx, path)
		if err != nil && err != docstore.ErrNotFound {
			return err
		}
		if existing != nil {
			data = docstore.MergeDocuments(existing, data)
		}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", path, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (path, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		path, string(raw), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("write document %s: %w", path, err)
	}
	s.notify(ctx, path)
	return nil
}

func (s *Store) AddDocument(ctx context.Context, collectionPath string, data docstore.Document) (string, error) {
	id := uuid.NewString()
	if err := s.SetDocument(ctx, collectionPath+"/"+id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) DeleteDocument(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete document %s: %w", path, err)
	}
	s.notify(ctx, path)
	return nil
}

func (s *Store) ListCollection(ctx context.Context, collectionPath string) ([]docstore.Record, error) {
	prefix := collectionPath + "/"
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, data FROM documents
		WHERE path LIKE ? ESCAPE '\' ORDER BY path`,
		likePattern(prefix))
	if err != nil {
		return nil, fmt.Errorf("list collection %s: %w", collectionPath, err)
	}
	defer rows.Close()

	var out []docstore.Record
	for rows.Next() {
		var path, raw string
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		rest := strings.TrimPrefix(path, prefix)
		if strings.Contains(rest, "/") {
			// Nested subcollection document, not a direct child.
			continue
		}
		doc, err := decodeDocument(path, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, docstore.Record{ID: rest, Data: doc})
	}
	return out, rows.Err()
}

func (s *Store) Subscribe(ctx context.Context, path string, onData func(docstore.Document, bool), _ func(error)) (docstore.Subscription, error) {
	s.mu.Lock()
	s.next++
	sub := &subscription{store: s, path: path, id: s.next, onData: onData}
	if s.subs[path] == nil {
		s.subs[path] = map[int]*subscription{}
	}
	s.subs[path][sub.id] = sub
	s.mu.Unlock()

	doc, err := s.GetDocument(ctx, path)
	if err != nil && err != docstore.ErrNotFound {
		sub.Stop()
		return nil, err
	}
	onData(doc, err == nil)
	return sub, nil
}

func (sub *subscription) Stop() {
	s := sub.store
	s.mu.Lock()
	if m := s.subs[sub.path]; m != nil {
		delete(m, sub.id)
	}
	s.mu.Unlock()
}

func (s *Store) notify(ctx context.Context, path string) {
	s.mu.Lock()
	var targets []*subscription
	for _, sub := range s.subs[path] {
		targets = append(targets, sub)
	}
	s.mu.Unlock()
	if len(targets) == 0 {
		return
	}
	doc, err := s.GetDocument(ctx, path)
	exists := err == nil
	if err != nil && err != docstore.ErrNotFound {
		return
	}
	for _, sub := range targets {
		sub.onData(doc, exists)
	}
}

func decodeDocument(path, raw string) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", path, err)
	}
	return doc, nil
}

func likePattern(prefix string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	return escaped + "%"
}
