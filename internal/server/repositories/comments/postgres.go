// Package comments provides a PostgreSQL-backed repository for item comments.
package comments

import (
	"context"
	"fmt"

	"github.com/missionset/missionset/internal/dbx"
	"github.com/missionset/missionset/internal/server/models"
)

// PostgresRepository implements comment storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	query := `
		INSERT INTO comments (item_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		comment.ItemID, comment.UserID, comment.Content, comment.CreatedAt).Scan(&comment.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return comment, nil
}

// ListByItem returns the item's comments oldest first, with the author's
// username joined in for display.
func (r *PostgresRepository) ListByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	query := `
		SELECT c.id, c.item_id, c.user_id, c.content, c.created_at, u.username
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.item_id = $1
		ORDER BY c.id
	`
	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ItemID, &c.UserID, &c.Content, &c.CreatedAt, &c.AuthorName); err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByItem removes all comments of an item. Runs inside the item
// deletion transaction.
func (r *PostgresRepository) DeleteByItem(ctx context.Context, itemID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
