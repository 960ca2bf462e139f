package comments

import (
	"context"

	"github.com/missionset/missionset/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	ListByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
	DeleteByItem(ctx context.Context, itemID int64) error
}
