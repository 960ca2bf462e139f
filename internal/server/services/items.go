// Package services contains server-side business logic. This file implements
// ItemService, which owns validated creation, editing, and deletion of
// mission reports plus the dual-write sequence against the search index.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/missionset/missionset/internal/common"
	"github.com/missionset/missionset/internal/dbx"
	"github.com/missionset/missionset/internal/logging"
	"github.com/missionset/missionset/internal/search"
	"github.com/missionset/missionset/internal/server/models"
	"github.com/missionset/missionset/internal/server/repositories/repomanager"
)

// formTimeLayout is the datetime-local format HTML forms submit.
const formTimeLayout = "2006-01-02T15:04"

// ItemInput carries the user-supplied fields of a create or edit request.
type ItemInput struct {
	Title       string
	Description string
	Labels      []string
	Start       string
	End         string
}

// ItemService orchestrates item CRUD and comments. Store writes run inside
// a single transaction; only after a successful commit is the search index
// updated, best-effort. The store is always authoritative.
type ItemService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	index       search.Index
	logger      logging.Logger
}

// NewItemService constructs an ItemService.
func NewItemService(db *sql.DB, m repomanager.RepositoryManager, index search.Index, logger logging.Logger) *ItemService {
	return &ItemService{
		db:          db,
		repomanager: m,
		index:       index,
		logger:      logger,
	}
}

// Create validates input, writes the item transactionally, and then mirrors
// it into the search index. An index failure is logged and swallowed: the
// created item is returned regardless.
func (s *ItemService) Create(ctx context.Context, in *ItemInput, acting *models.User) (*models.Item, error) {
	if acting == nil {
		return nil, common.ErrorUnauthorized
	}

	labels, start, end, err := validateInput(in)
	if err != nil {
		return nil, err
	}

	ownerID := acting.ID
	item := &models.Item{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Tags:         strings.Join(labels, ","),
		Labels:       labels,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		Author:       acting.Username,
		AuthorUserID: &ownerID,
		StartTime:    start,
		EndTime:      end,
	}

	var created *models.Item
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Items(tx)
		saved, err := repo.Create(ctx, item)
		if err != nil {
			return err
		}
		if err := repo.ReplaceLabels(ctx, saved.ID, labels); err != nil {
			return err
		}
		created, err = repo.GetByID(ctx, saved.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating item: %w", err)
	}

	s.syncIndex(ctx, created)
	return created, nil
}

// Edit rewrites an item's editable fields. Admin only; the owner reference
// never changes.
func (s *ItemService) Edit(ctx context.Context, id int64, in *ItemInput, acting *models.User) (*models.Item, error) {
	if acting == nil {
		return nil, common.ErrorUnauthorized
	}
	if !acting.IsAdmin {
		return nil, common.ErrorForbidden
	}

	labels, start, end, err := validateInput(in)
	if err != nil {
		return nil, err
	}

	var updated *models.Item
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Items(tx)
		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		current.Title = strings.TrimSpace(in.Title)
		current.Description = in.Description
		current.Tags = strings.Join(labels, ",")
		current.Labels = labels
		current.StartTime = start
		current.EndTime = end

		if err := repo.Update(ctx, current); err != nil {
			return err
		}
		if err := repo.ReplaceLabels(ctx, id, labels); err != nil {
			return err
		}
		updated, err = repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error updating item: %w", err)
	}

	s.syncIndex(ctx, updated)
	return updated, nil
}

// Delete removes an item and its comments in one transaction, then issues a
// best-effort index delete. Owner or admin only. Deleting an item whose
// index document is already gone is not an error.
func (s *ItemService) Delete(ctx context.Context, id int64, acting *models.User) error {
	if acting == nil {
		return common.ErrorUnauthorized
	}

	item, err := s.repomanager.Items(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error loading item: %w", err)
	}

	if !acting.IsAdmin && (item.AuthorUserID == nil || *item.AuthorUserID != acting.ID) {
		return common.ErrorForbidden
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Comments(tx).DeleteByItem(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Items(tx).Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("error deleting item: %w", err)
	}

	if err := s.index.Delete(ctx, strconv.FormatInt(id, 10)); err != nil {
		s.logger.Error(ctx, "search index delete failed", "item_id", id, "error", err)
	}
	return nil
}

// AddComment appends a comment to an existing item on behalf of acting.
func (s *ItemService) AddComment(ctx context.Context, itemID int64, content string, acting *models.User) (*models.Comment, error) {
	if acting == nil {
		return nil, common.ErrorUnauthorized
	}

	if _, err := s.repomanager.Items(s.db).GetByID(ctx, itemID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading item: %w", err)
	}

	comment := &models.Comment{
		ItemID:     itemID,
		UserID:     acting.ID,
		Content:    content,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		AuthorName: acting.Username,
	}
	saved, err := s.repomanager.Comments(s.db).Create(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("error creating comment: %w", err)
	}
	return saved, nil
}

// Get returns an item with its comments.
func (s *ItemService) Get(ctx context.Context, id int64) (*models.Item, []*models.Comment, error) {
	item, err := s.repomanager.Items(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorNotFound
		}
		return nil, nil, fmt.Errorf("error loading item: %w", err)
	}
	comments, err := s.repomanager.Comments(s.db).ListByItem(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading comments: %w", err)
	}
	return item, comments, nil
}

// List returns all items, most recent first.
func (s *ItemService) List(ctx context.Context) ([]*models.Item, error) {
	items, err := s.repomanager.Items(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing items: %w", err)
	}
	return items, nil
}

// ListByLabel returns the module view for one label of the fixed set. The
// label is matched case-insensitively so URL casing does not matter.
func (s *ItemService) ListByLabel(ctx context.Context, label string) ([]*models.Item, error) {
	canonical, ok := common.CanonicalLabel(label)
	if !ok {
		return nil, common.NewValidationError(common.ValidationUnknownTarget, "unknown label: "+label)
	}
	items, err := s.repomanager.Items(s.db).ListByLabel(ctx, canonical)
	if err != nil {
		return nil, fmt.Errorf("error listing items: %w", err)
	}
	return items, nil
}

// --- helpers below ---

// validateInput applies the validation order the form contract promises:
// unknown labels are dropped silently, then timestamps are parsed, then the
// window is checked.
func validateInput(in *ItemInput) (labels []string, start, end string, err error) {
	labels = common.FilterLabels(in.Labels)

	startT, err := parseTimestamp(in.Start)
	if err != nil {
		return nil, "", "", common.NewValidationError(common.ValidationBadDatetime, "invalid start time: "+in.Start)
	}
	endT, err := parseTimestamp(in.End)
	if err != nil {
		return nil, "", "", common.NewValidationError(common.ValidationBadDatetime, "invalid end time: "+in.End)
	}
	if endT.Before(startT) {
		return nil, "", "", common.NewValidationError(common.ValidationInvalidRange, "end time must not precede start time")
	}

	return labels, startT.UTC().Format(time.RFC3339), endT.UTC().Format(time.RFC3339), nil
}

// parseTimestamp accepts the HTML datetime-local format and RFC 3339.
func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(formTimeLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// syncIndex mirrors the committed item into the search index. Failures are
// logged and swallowed: the index is advisory, never a reason to fail the
// user-facing operation.
func (s *ItemService) syncIndex(ctx context.Context, item *models.Item) {
	doc := &search.Document{
		Title:       item.Title,
		Description: item.Description,
		Tags:        item.Labels,
		Author:      item.Author,
		StartTime:   item.StartTime,
		EndTime:     item.EndTime,
		CreatedAt:   item.CreatedAt,
	}
	if err := s.index.Upsert(ctx, strconv.FormatInt(item.ID, 10), doc); err != nil {
		s.logger.Error(ctx, "search index sync failed", "item_id", item.ID, "error", err)
	}
}
