package repomanager

import (
	"context"
	"database/sql"

	"github.com/missionset/missionset/internal/dbx"
	"github.com/missionset/missionset/internal/server/repositories/comments"
	"github.com/missionset/missionset/internal/server/repositories/items"
	"github.com/missionset/missionset/internal/server/repositories/profiles"
	"github.com/missionset/missionset/internal/server/repositories/sessions"
	"github.com/missionset/missionset/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Items(db dbx.DBTX) items.Repository
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Comments(db dbx.DBTX) comments.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
