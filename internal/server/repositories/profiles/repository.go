package profiles

import (
	"context"

	"github.com/missionset/missionset/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, userID int64) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
}
