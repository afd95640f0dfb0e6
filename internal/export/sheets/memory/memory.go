// Package memory is an in-memory RowWriter for tests.
package memory

import (
	"context"
	"fmt"
	"sync"
)

type Store struct {
	mu   sync.Mutex
	rows map[string][][]any

	// FailAppend, when set, makes every append fail with this error.
	FailAppend error
}

func New() *Store {
	return &Store{rows: map[string][][]any{}}
}

// AppendRows stores the rows and returns a synthetic row reference.
func (s *Store) AppendRows(_ context.Context, sheetName string, rows [][]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAppend != nil {
		return "", s.FailAppend
	}
	s.rows[sheetName] = append(s.rows[sheetName], rows...)
	return fmt.Sprintf("mem:%s:%d", sheetName, len(s.rows[sheetName])), nil
}

// Rows returns a copy of everything appended to the named sheet.
func (s *Store) Rows(sheetName string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows[sheetName]))
	copy(out, s.rows[sheetName])
	return out
}
