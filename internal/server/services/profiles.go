// This file implements ProfileService: the one-to-one user profile, created
// on first save and updated thereafter.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/missionset/missionset/internal/common"
	"github.com/missionset/missionset/internal/server/models"
	"github.com/missionset/missionset/internal/server/repositories/repomanager"
)

type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

// Get returns the acting user's profile, or a zero-value profile if none
// has been saved yet.
func (s *ProfileService) Get(ctx context.Context, acting *models.User) (*models.Profile, error) {
	if acting == nil {
		return nil, common.ErrorUnauthorized
	}
	profile, err := s.repomanager.Profiles(s.db).Get(ctx, acting.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &models.Profile{UserID: acting.ID}, nil
		}
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	return profile, nil
}

// Save upserts the acting user's profile.
func (s *ProfileService) Save(ctx context.Context, profile *models.Profile, acting *models.User) error {
	if acting == nil {
		return common.ErrorUnauthorized
	}
	profile.UserID = acting.ID
	profile.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.repomanager.Profiles(s.db).Upsert(ctx, profile); err != nil {
		return fmt.Errorf("error saving profile: %w", err)
	}
	return nil
}
