// Package store abstracts the document database behind a uniform collection
// interface so the service can run against MongoDB or SQLite without the
// application code branching on backend identity. A Store is constructed once
// at process start and injected into every component that needs it.
package store

import (
	"context"
	"errors"
)

// ErrNoDocuments is returned by FindOne when no record matches the filter.
var ErrNoDocuments = errors.New("store: no documents in result")

// Filter is an exact-match predicate over top-level document fields. Range and
// array-containment predicates are deliberately not part of the contract; the
// callers that need them (share-code expiry, per-id document fetches) apply
// them in application code so every backend stays interchangeable.
type Filter map[string]interface{}

// Collection is a uniform handle over one named collection of JSON-shaped
// documents. Every document carries a unique string identifier in its "_id"
// field.
type Collection interface {
	// InsertOne stores doc. The document's _id must be set by the caller.
	InsertOne(ctx context.Context, doc interface{}) error
	// FindOne decodes the first matching document into out, or returns
	// ErrNoDocuments.
	FindOne(ctx context.Context, filter Filter, out interface{}) error
	// Find decodes all matching documents into out, which must be a pointer
	// to a slice.
	Find(ctx context.Context, filter Filter, out interface{}) error
	// UpdateOne merges set into the first matching document and returns the
	// number of documents matched (0 or 1).
	UpdateOne(ctx context.Context, filter Filter, set map[string]interface{}) (int64, error)
	// DeleteOne removes the first matching document and returns the number
	// of documents deleted (0 or 1).
	DeleteOne(ctx context.Context, filter Filter) (int64, error)
	// Count returns the number of matching documents.
	Count(ctx context.Context, filter Filter) (int64, error)
}

// Store hands out collections by name.
type Store interface {
	Collection(name string) Collection
	Close(ctx context.Context) error
}
