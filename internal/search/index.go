// Package search wraps the external full-text index behind a small
// interface. The index is a disposable projection of the relational store:
// its loss is tolerable and it heals on the next write.
package search

import "context"

// Document is the indexed projection of an item, keyed by the item's
// identifier as a string. Timestamps are ISO-8601 text.
type Document struct {
	Title       string
	Description string
	Tags        []string
	Author      string
	StartTime   string
	EndTime     string
	CreatedAt   string
}

// Result is one search hit mapped back to a display-friendly shape.
type Result struct {
	ID          string
	Title       string
	Description string
	Tags        string
	CreatedAt   string
	Score       float64
}

// Index is the write/query surface the services use. Implementations must
// treat deleting an absent document as success so deletions stay
// idempotent. The interface isolates the backend so a background
// reconciliation job could be added without touching the item service.
type Index interface {
	Upsert(ctx context.Context, id string, doc *Document) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]*Result, error)
	Close() error
}
