// Package profiles provides a PostgreSQL-backed repository for user profiles.
// A profile row is created on first save and updated thereafter.
package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/missionset/missionset/internal/common"
	"github.com/missionset/missionset/internal/dbx"
	"github.com/missionset/missionset/internal/server/models"
)

// PostgresRepository implements profile storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `
		SELECT user_id, name, birthday, blood_type, team, team_role,
		       phone, email, contact_name, contact_phone, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	p := &models.Profile{}
	var name, birthday, bloodType, team, teamRole, phone, email, contactName, contactPhone sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &name, &birthday, &bloodType, &team, &teamRole,
		&phone, &email, &contactName, &contactPhone, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	p.Name = name.String
	p.Birthday = birthday.String
	p.BloodType = bloodType.String
	p.Team = team.String
	p.TeamRole = teamRole.String
	p.Phone = phone.String
	p.Email = email.String
	p.ContactName = contactName.String
	p.ContactPhone = contactPhone.String

	return p, nil
}

// Upsert creates the profile row on first save and updates it thereafter.
func (r *PostgresRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (user_id, name, birthday, blood_type, team, team_role,
		                      phone, email, contact_name, contact_phone, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			birthday = EXCLUDED.birthday,
			blood_type = EXCLUDED.blood_type,
			team = EXCLUDED.team,
			team_role = EXCLUDED.team_role,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			contact_name = EXCLUDED.contact_name,
			contact_phone = EXCLUDED.contact_phone,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query,
		profile.UserID, profile.Name, profile.Birthday, profile.BloodType, profile.Team,
		profile.TeamRole, profile.Phone, profile.Email, profile.ContactName,
		profile.ContactPhone, profile.UpdatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
