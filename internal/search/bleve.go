package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
)

// BleveIndex implements Index over a local bleve index.
type BleveIndex struct {
	index bleve.Index
}

// Open opens the bleve index at path, creating it with the item document
// mapping if it does not exist yet.
func Open(path string) (*BleveIndex, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	return &BleveIndex{index: idx}, nil
}

// OpenInMemory creates a transient index with the same mapping. Used in tests.
func OpenInMemory() (*BleveIndex, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &BleveIndex{index: idx}, nil
}

// buildIndexMapping declares the item document fields: analyzed text for
// title/description/author, exact keyword terms for tags, and datetime
// fields for the time window and creation timestamp.
func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()

	tagFieldMapping := bleve.NewTextFieldMapping()
	tagFieldMapping.Analyzer = keyword.Name

	dateFieldMapping := bleve.NewDateTimeFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("Title", textFieldMapping)
	docMapping.AddFieldMappingsAt("Description", textFieldMapping)
	docMapping.AddFieldMappingsAt("Tags", tagFieldMapping)
	docMapping.AddFieldMappingsAt("Author", textFieldMapping)
	docMapping.AddFieldMappingsAt("StartTime", dateFieldMapping)
	docMapping.AddFieldMappingsAt("EndTime", dateFieldMapping)
	docMapping.AddFieldMappingsAt("CreatedAt", dateFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// Close closes the underlying index.
func (i *BleveIndex) Close() error {
	return i.index.Close()
}

// Upsert adds or replaces the document with the given id.
func (i *BleveIndex) Upsert(ctx context.Context, id string, doc *Document) error {
	return i.index.Index(id, doc)
}

// Delete removes the document with the given id. Bleve treats deleting an
// absent document as a no-op, which keeps item deletion idempotent.
func (i *BleveIndex) Delete(ctx context.Context, id string) error {
	return i.index.Delete(id)
}

// Search runs a weighted multi-field query: title matches score twice as
// high as description, tags, and author matches.
func (i *BleveIndex) Search(ctx context.Context, queryStr string, limit int) ([]*Result, error) {
	titleQuery := bleve.NewMatchQuery(queryStr)
	titleQuery.SetField("Title")
	titleQuery.SetBoost(2.0)

	descriptionQuery := bleve.NewMatchQuery(queryStr)
	descriptionQuery.SetField("Description")

	tagQuery := bleve.NewMatchQuery(queryStr)
	tagQuery.SetField("Tags")

	authorQuery := bleve.NewMatchQuery(queryStr)
	authorQuery.SetField("Author")

	query := bleve.NewDisjunctionQuery(titleQuery, descriptionQuery, tagQuery, authorQuery)

	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Fields = []string{"Title", "Description", "Tags", "CreatedAt"}

	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]*Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		result := &Result{
			ID:    hit.ID,
			Score: hit.Score,
		}
		if title, ok := hit.Fields["Title"].(string); ok {
			result.Title = title
		}
		if description, ok := hit.Fields["Description"].(string); ok {
			result.Description = description
		}
		if createdAt, ok := hit.Fields["CreatedAt"].(string); ok {
			result.CreatedAt = createdAt
		}
		result.Tags = joinTagsField(hit.Fields["Tags"])

		results = append(results, result)
	}

	return results, nil
}

// joinTagsField renders the stored Tags field as a comma-joined string.
// Bleve returns a bare string for single-element slices and []interface{}
// otherwise.
func joinTagsField(v any) string {
	switch tags := v.(type) {
	case string:
		return tags
	case []any:
		out := ""
		for i, t := range tags {
			s, ok := t.(string)
			if !ok {
				continue
			}
			if i > 0 {
				out += ","
			}
			out += s
		}
		return out
	default:
		return ""
	}
}
