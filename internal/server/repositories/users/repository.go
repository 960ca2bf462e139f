package users

import (
	"context"

	"github.com/missionset/missionset/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
	SetActive(ctx context.Context, id int64, isActive bool) error
}
