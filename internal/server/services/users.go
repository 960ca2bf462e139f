// This file implements UserService: registration with the first-admin rule,
// session-backed login/logout, and admin account management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/missionset/missionset/internal/common"
	"github.com/missionset/missionset/internal/dbx"
	"github.com/missionset/missionset/internal/server/config"
	"github.com/missionset/missionset/internal/server/models"
	"github.com/missionset/missionset/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// UserService provides authentication and account management:
//   - Register: create users (first account becomes admin)
//   - Login / Logout / Resolve: server-side session lifecycle
//   - ToggleAdmin / ToggleActive: admin account controls
type UserService struct {
	db                      *sql.DB
	repomanager             repomanager.RepositoryManager
	sessionValidityDuration time.Duration
	bcryptCost              int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                      db,
		repomanager:             m,
		sessionValidityDuration: cfg.SessionValidityDuration,
		bcryptCost:              cfg.BcryptCost,
	}
}

// Register creates a new user. The first account ever registered is granted
// admin automatically and needs no acting user; every later registration
// requires an already-authenticated admin.
func (s *UserService) Register(ctx context.Context, username, password string, acting *models.User) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	count, err := repo.Count(ctx)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if count > 0 {
		if acting == nil {
			return nil, common.ErrorUnauthorized
		}
		if !acting.IsAdmin {
			return nil, common.ErrorForbidden
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      count == 0,
		IsActive:     true,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	u, err := repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the credentials and, on success, stores a new session and
// returns its opaque token. Unknown users, wrong passwords, and deactivated
// accounts all yield ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}
	if !user.IsActive {
		return nil, "", common.ErrorUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	if err := s.repomanager.Sessions(s.db).Create(ctx, user.ID, token, s.sessionValidityDuration); err != nil {
		return nil, "", common.ErrorInternal
	}
	return user, token, nil
}

// Logout removes the session for the given token. Unknown tokens are not an
// error.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repomanager.Sessions(s.db).Delete(ctx, token)
}

// Resolve maps a session token to its active user. Expired sessions are
// deleted on sight; deactivated users no longer resolve.
func (s *UserService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	sessionRepo := s.repomanager.Sessions(s.db)
	session, err := sessionRepo.Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if session.Expires.Before(time.Now()) {
		_ = sessionRepo.Delete(ctx, token)
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// ListUsers returns all accounts for the admin user-management view.
func (s *UserService) ListUsers(ctx context.Context, acting *models.User) ([]*models.User, error) {
	if acting == nil {
		return nil, common.ErrorUnauthorized
	}
	if !acting.IsAdmin {
		return nil, common.ErrorForbidden
	}
	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// ToggleAdmin flips the target's admin flag. Admin only; admins cannot
// change their own flag, which keeps the last admin from locking out.
func (s *UserService) ToggleAdmin(ctx context.Context, id int64, acting *models.User) error {
	if err := s.checkToggle(id, acting); err != nil {
		return err
	}
	target, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	if err := s.repomanager.Users(s.db).SetAdmin(ctx, id, !target.IsAdmin); err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

// ToggleActive flips the target's active flag. Deactivation revokes the
// target's sessions in the same transaction so access ends immediately.
func (s *UserService) ToggleActive(ctx context.Context, id int64, acting *models.User) error {
	if err := s.checkToggle(id, acting); err != nil {
		return err
	}
	target, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).SetActive(ctx, id, !target.IsActive); err != nil {
			return err
		}
		if target.IsActive {
			// deactivating: revoke open sessions
			return s.repomanager.Sessions(tx).DeleteByUser(ctx, id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

func (s *UserService) checkToggle(id int64, acting *models.User) error {
	if acting == nil {
		return common.ErrorUnauthorized
	}
	if !acting.IsAdmin {
		return common.ErrorForbidden
	}
	if acting.ID == id {
		return common.ErrorForbidden
	}
	return nil
}
