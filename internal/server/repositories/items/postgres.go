// Package items provides the PostgreSQL-backed repository for mission
// reports, including the normalized label set and the aggregate queries
// the dashboard is built on.
package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/missionset/missionset/internal/common"
	"github.com/missionset/missionset/internal/dbx"
	"github.com/missionset/missionset/internal/server/models"
)

const itemColumns = `id, title, description, tags, created_at, author, author_user_id, start_time, end_time`

// PostgresRepository implements item storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an item and resolves the generated identifier into the
// returned model. Labels are stored separately via ReplaceLabels.
func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {

	query :=
		`INSERT INTO items (title, description, tags, created_at, author, author_user_id, start_time, end_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		item.Title, item.Description, item.Tags, item.CreatedAt,
		item.Author, authorUserID(item), item.StartTime, item.EndTime).Scan(&item.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

// Update rewrites the editable fields of an item. The owner reference
// (author_user_id) is immutable and deliberately absent from the SET list.
func (r *PostgresRepository) Update(ctx context.Context, item *models.Item) error {
	query :=
		`UPDATE items
		 SET title = $1, description = $2, tags = $3, start_time = $4, end_time = $5
		 WHERE id = $6
		 `

	res, err := r.db.ExecContext(ctx, query,
		item.Title, item.Description, item.Tags, item.StartTime, item.EndTime, item.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// List returns all items, most recent first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY id DESC`
	return r.list(ctx, query)
}

// ListByLabel returns items carrying the exact label, most recent first.
// Membership is tested against the normalized item_labels set, so a label
// can never match a substring of another label.
func (r *PostgresRepository) ListByLabel(ctx context.Context, label string) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
		 WHERE id IN (SELECT item_id FROM item_labels WHERE label = $1)
		 ORDER BY id DESC`
	return r.list(ctx, query, label)
}

// ListRecent returns the limit newest items by identifier, descending.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY id DESC LIMIT $1`
	return r.list(ctx, query, limit)
}

// Delete removes the item row. Comments are deleted by the caller in the
// same transaction; item_labels rows cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// ReplaceLabels rewrites the item's normalized label set.
func (r *PostgresRepository) ReplaceLabels(ctx context.Context, id int64, labels []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM item_labels WHERE item_id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	for _, label := range labels {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO item_labels (item_id, label) VALUES ($1, $2)`, id, label); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// CountByLabel returns the number of items carrying each label. An item
// contributes to every label it carries.
func (r *PostgresRepository) CountByLabel(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT label, COUNT(*) FROM item_labels GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		result[label] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountUnlabeled returns the number of items carrying no known label.
func (r *PostgresRepository) CountUnlabeled(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM items i
		 WHERE NOT EXISTS (SELECT 1 FROM item_labels l WHERE l.item_id = i.id)`

	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// CountByDay returns per-calendar-day item counts for items created on or
// after fromDate (YYYY-MM-DD). created_at is ISO-8601 text, so the date is
// its first ten characters.
func (r *PostgresRepository) CountByDay(ctx context.Context, fromDate string) (map[string]int, error) {
	query := `SELECT substr(created_at, 1, 10) AS day, COUNT(*)
		 FROM items
		 WHERE substr(created_at, 1, 10) >= $1
		 GROUP BY day`

	rows, err := r.db.QueryContext(ctx, query, fromDate)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		result[day] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var item models.Item
	var description, tags, author, startTime, endTime sql.NullString
	var authorUser sql.NullInt64

	if err := row.Scan(&item.ID, &item.Title, &description, &tags, &item.CreatedAt,
		&author, &authorUser, &startTime, &endTime); err != nil {
		return nil, err
	}

	item.Description = description.String
	item.Tags = tags.String
	item.Author = author.String
	item.StartTime = startTime.String
	item.EndTime = endTime.String
	if authorUser.Valid {
		id := authorUser.Int64
		item.AuthorUserID = &id
	}
	item.Labels = SplitTags(item.Tags)

	return &item, nil
}

func authorUserID(item *models.Item) any {
	if item.AuthorUserID == nil {
		return nil
	}
	return *item.AuthorUserID
}

// SplitTags splits the comma-joined tags column into a label slice,
// dropping empty fragments.
func SplitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	parts := strings.Split(tags, ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	if len(labels) == 0 {
		return nil
	}
	return labels
}
