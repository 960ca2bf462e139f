package items

import (
	"context"

	"github.com/missionset/missionset/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id int64) (*models.Item, error)
	List(ctx context.Context) ([]*models.Item, error)
	ListByLabel(ctx context.Context, label string) ([]*models.Item, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Item, error)
	Delete(ctx context.Context, id int64) error
	ReplaceLabels(ctx context.Context, id int64, labels []string) error
	Count(ctx context.Context) (int, error)
	CountByLabel(ctx context.Context) (map[string]int, error)
	CountUnlabeled(ctx context.Context) (int, error)
	CountByDay(ctx context.Context, fromDate string) (map[string]int, error)
}
