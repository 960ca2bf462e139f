// This file implements SearchService: the thin facade in front of the
// search index. A backend failure is never fatal to the page.
package services

import (
	"context"
	"strings"

	"github.com/missionset/missionset/internal/logging"
	"github.com/missionset/missionset/internal/search"
)

// searchResultLimit caps how many hits a single query returns.
const searchResultLimit = 50

type SearchService struct {
	index  search.Index
	logger logging.Logger
}

func NewSearchService(index search.Index, logger logging.Logger) *SearchService {
	return &SearchService{index: index, logger: logger}
}

// Search forwards the free-text query to the index. An empty query yields
// no results and no error; a backend failure is logged and returned so the
// caller can surface it inline next to an empty result list.
func (s *SearchService) Search(ctx context.Context, query string) ([]*search.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	results, err := s.index.Search(ctx, query, searchResultLimit)
	if err != nil {
		s.logger.Error(ctx, "search query failed", "query", query, "error", err)
		return nil, err
	}
	return results, nil
}
