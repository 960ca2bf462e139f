package web

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/missionset/missionset/internal/common"
	"github.com/missionset/missionset/internal/dbx"
	"github.com/missionset/missionset/internal/logging"
	"github.com/missionset/missionset/internal/search"
	"github.com/missionset/missionset/internal/server/config"
	"github.com/missionset/missionset/internal/server/models"
	commentsrepo "github.com/missionset/missionset/internal/server/repositories/comments"
	itemsrepo "github.com/missionset/missionset/internal/server/repositories/items"
	profilesrepo "github.com/missionset/missionset/internal/server/repositories/profiles"
	sessionsrepo "github.com/missionset/missionset/internal/server/repositories/sessions"
	usersrepo "github.com/missionset/missionset/internal/server/repositories/users"
	"github.com/missionset/missionset/internal/server/services"
	"golang.org/x/crypto/bcrypt"
)

// memItemsRepo is a minimal in-memory items.Repository for handler tests.
type memItemsRepo struct {
	items  map[int64]*models.Item
	labels map[int64][]string
	nextID int64
}

func (m *memItemsRepo) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	m.nextID++
	item.ID = m.nextID
	clone := *item
	m.items[item.ID] = &clone
	return item, nil
}

func (m *memItemsRepo) Update(ctx context.Context, item *models.Item) error {
	if _, ok := m.items[item.ID]; !ok {
		return common.ErrorNotFound
	}
	clone := *item
	m.items[item.ID] = &clone
	return nil
}

func (m *memItemsRepo) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *item
	return &clone, nil
}

func (m *memItemsRepo) List(ctx context.Context) ([]*models.Item, error) {
	var result []*models.Item
	for id := m.nextID; id > 0; id-- {
		if item, ok := m.items[id]; ok {
			result = append(result, item)
		}
	}
	return result, nil
}

func (m *memItemsRepo) ListByLabel(ctx context.Context, label string) ([]*models.Item, error) {
	var result []*models.Item
	for id := m.nextID; id > 0; id-- {
		for _, l := range m.labels[id] {
			if l == label {
				result = append(result, m.items[id])
				break
			}
		}
	}
	return result, nil
}

func (m *memItemsRepo) ListRecent(ctx context.Context, limit int) ([]*models.Item, error) {
	all, _ := m.List(ctx)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memItemsRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.items, id)
	delete(m.labels, id)
	return nil
}

func (m *memItemsRepo) ReplaceLabels(ctx context.Context, id int64, labels []string) error {
	m.labels[id] = labels
	return nil
}

func (m *memItemsRepo) Count(ctx context.Context) (int, error) { return len(m.items), nil }

func (m *memItemsRepo) CountByLabel(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, labels := range m.labels {
		for _, l := range labels {
			counts[l]++
		}
	}
	return counts, nil
}

func (m *memItemsRepo) CountUnlabeled(ctx context.Context) (int, error) {
	n := 0
	for id := range m.items {
		if len(m.labels[id]) == 0 {
			n++
		}
	}
	return n, nil
}

func (m *memItemsRepo) CountByDay(ctx context.Context, fromDate string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, item := range m.items {
		if len(item.CreatedAt) >= 10 && item.CreatedAt[:10] >= fromDate {
			counts[item.CreatedAt[:10]]++
		}
	}
	return counts, nil
}

type memUsersRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func (m *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = u
	return u, nil
}

func (m *memUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (m *memUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	var result []*models.User
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func (m *memUsersRepo) Count(ctx context.Context) (int, error) { return len(m.users), nil }

func (m *memUsersRepo) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	u, ok := m.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.IsAdmin = isAdmin
	return nil
}

func (m *memUsersRepo) SetActive(ctx context.Context, id int64, isActive bool) error {
	u, ok := m.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.IsActive = isActive
	return nil
}

type memCommentsRepo struct {
	comments []*models.Comment
}

func (m *memCommentsRepo) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	c.ID = int64(len(m.comments) + 1)
	m.comments = append(m.comments, c)
	return c, nil
}

func (m *memCommentsRepo) ListByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	var result []*models.Comment
	for _, c := range m.comments {
		if c.ItemID == itemID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *memCommentsRepo) DeleteByItem(ctx context.Context, itemID int64) error {
	var kept []*models.Comment
	for _, c := range m.comments {
		if c.ItemID != itemID {
			kept = append(kept, c)
		}
	}
	m.comments = kept
	return nil
}

type memSessionsRepo struct {
	sessions map[string]*models.Session
}

func (m *memSessionsRepo) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	m.sessions[token] = &models.Session{Token: token, UserID: userID, Expires: time.Now().Add(validity)}
	return nil
}

func (m *memSessionsRepo) Find(ctx context.Context, token string) (*models.Session, error) {
	s, ok := m.sessions[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (m *memSessionsRepo) Delete(ctx context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

func (m *memSessionsRepo) DeleteByUser(ctx context.Context, userID int64) error {
	for token, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, token)
		}
	}
	return nil
}

type memProfilesRepo struct {
	profiles map[int64]*models.Profile
}

func (m *memProfilesRepo) Get(ctx context.Context, userID int64) (*models.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (m *memProfilesRepo) Upsert(ctx context.Context, profile *models.Profile) error {
	m.profiles[profile.UserID] = profile
	return nil
}

type memRepoManager struct {
	items    *memItemsRepo
	users    *memUsersRepo
	comments *memCommentsRepo
	sessions *memSessionsRepo
	profiles *memProfilesRepo
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{
		items:    &memItemsRepo{items: make(map[int64]*models.Item), labels: make(map[int64][]string)},
		users:    &memUsersRepo{users: make(map[int64]*models.User)},
		comments: &memCommentsRepo{},
		sessions: &memSessionsRepo{sessions: make(map[string]*models.Session)},
		profiles: &memProfilesRepo{profiles: make(map[int64]*models.Profile)},
	}
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Items(db dbx.DBTX) itemsrepo.Repository       { return m.items }
func (m *memRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.users }
func (m *memRepoManager) Profiles(db dbx.DBTX) profilesrepo.Repository { return m.profiles }
func (m *memRepoManager) Comments(db dbx.DBTX) commentsrepo.Repository { return m.comments }
func (m *memRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository { return m.sessions }

type memIndex struct {
	docs    map[string]*search.Document
	deleted []string
	results []*search.Result
}

func newMemIndex() *memIndex {
	return &memIndex{docs: make(map[string]*search.Document)}
}

func (m *memIndex) Upsert(ctx context.Context, id string, doc *search.Document) error {
	m.docs[id] = doc
	return nil
}

func (m *memIndex) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.docs, id)
	return nil
}

func (m *memIndex) Search(ctx context.Context, query string, limit int) ([]*search.Result, error) {
	return m.results, nil
}

func (m *memIndex) Close() error { return nil }

// testEnv bundles everything a handler test touches.
type testEnv struct {
	router *gin.Engine
	mock   sqlmock.Sqlmock
	rm     *memRepoManager
	index  *memIndex
}

// newTestEnv builds a full router over in-memory repositories. The sqlmock
// connection only backs transaction begin/commit; expectations are
// unordered so tests can declare as many as they need.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rm := newMemRepoManager()
	index := newMemIndex()
	cfg := &config.Config{SessionValidityDuration: time.Hour, BcryptCost: bcrypt.MinCost}

	s := NewServer(
		logger,
		services.NewUserService(db, rm, cfg),
		services.NewItemService(db, rm, index, logger),
		services.NewProfileService(db, rm),
		services.NewDashboardService(db, rm),
		services.NewSearchService(index, logger),
	)
	return &testEnv{router: s.Router(), mock: mock, rm: rm, index: index}
}

// expectTx queues n transaction begin/commit pairs on the mock connection.
func (e *testEnv) expectTx(n int) {
	for i := 0; i < n; i++ {
		e.mock.ExpectBegin()
		e.mock.ExpectCommit()
	}
}

// addUser seeds an active account and an open session, returning the
// session token.
func (e *testEnv) addUser(t *testing.T, username string, admin bool) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	u, _ := e.rm.users.Create(context.Background(), &models.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      admin,
		IsActive:     true,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	})
	token := "tok-" + username
	e.rm.sessions.sessions[token] = &models.Session{
		Token:   token,
		UserID:  u.ID,
		Expires: time.Now().Add(time.Hour),
	}
	return u, token
}
