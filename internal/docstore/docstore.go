// Package docstore abstracts the remote document store behind the small
// read/write/subscribe surface the sync engine consumes. Adapters exist for
// an in-process map, a local SQLite file and MongoDB.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by GetDocument when no document exists at a path.
var ErrNotFound = errors.New("document not found")

// Document is the raw duck-typed payload a store persists. Typed entities
// live in internal/core; the normalization layer converts at this boundary.
type Document = map[string]any

// Record is one entry of a collection listing.
type Record struct {
	ID   string
	Data Document
}

// Subscription is a live listener handle. Stop is idempotent and guarantees
// no callback is delivered after it returns.
type Subscription interface {
	Stop()
}

// Store is the persistence service. Paths are slash-separated and
// namespaced per application instance and user, see Paths.
type Store interface {
	// GetDocument returns the document at path, or ErrNotFound.
	GetDocument(ctx context.Context, path string) (Document, error)

	// SetDocument writes the document at path. With merge set, top-level
	// fields are merged over the existing document instead of replacing it.
	SetDocument(ctx context.Context, path string, data Document, merge bool) error

	// AddDocument creates a document with a fresh id under collectionPath
	// and returns the id.
	AddDocument(ctx context.Context, collectionPath string, data Document) (string, error)

	// DeleteDocument removes the document at path. Deleting an absent
	// document is not an error.
	DeleteDocument(ctx context.Context, path string) error

	// ListCollection returns the direct child documents of collectionPath.
	ListCollection(ctx context.Context, collectionPath string) ([]Record, error)

	// Subscribe attaches a listener to the document at path. onData fires
	// with the current state immediately and again after every committed
	// change, with exists=false when the document is absent or deleted.
	// onError fires once on a transport failure, after which the
	// subscription is dead.
	Subscribe(ctx context.Context, path string, onData func(Document, bool), onError func(error)) (Subscription, error)

	Close(ctx context.Context) error
}

// MergeDocuments overlays src's top-level fields onto dst and returns the
// result. Neither input is modified. Merge-style writes are shallow, same
// as the remote store's own merge semantics.
func MergeDocuments(dst, src Document) Document {
	out := make(Document, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}
