package models

// Item is a labeled mission report with a time window.
//
// Tags holds the comma-joined display form of Labels; both are written in
// the same transaction and must agree. AuthorUserID is nil for legacy or
// anonymous items and, once set, is never changed. All timestamps are
// ISO-8601 text.
type Item struct {
	ID           int64
	Title        string
	Description  string
	Tags         string
	Labels       []string
	CreatedAt    string
	Author       string
	AuthorUserID *int64
	StartTime    string
	EndTime      string
}
