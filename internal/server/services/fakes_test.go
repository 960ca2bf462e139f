package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/missionset/missionset/internal/common"
	"github.com/missionset/missionset/internal/dbx"
	"github.com/missionset/missionset/internal/logging"
	"github.com/missionset/missionset/internal/search"
	"github.com/missionset/missionset/internal/server/models"
	commentsrepo "github.com/missionset/missionset/internal/server/repositories/comments"
	itemsrepo "github.com/missionset/missionset/internal/server/repositories/items"
	profilesrepo "github.com/missionset/missionset/internal/server/repositories/profiles"
	sessionsrepo "github.com/missionset/missionset/internal/server/repositories/sessions"
	usersrepo "github.com/missionset/missionset/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeItemsRepo is an in-memory items.Repository. Per-method error fields
// force failures.
type fakeItemsRepo struct {
	items  map[int64]*models.Item
	labels map[int64][]string
	nextID int64

	createErr  error
	updateErr  error
	getErr     error
	replaceErr error

	countByLabel   map[string]int
	countUnlabeled int
	countByDay     map[string]int
	total          int
}

func newFakeItemsRepo() *fakeItemsRepo {
	return &fakeItemsRepo{
		items:  make(map[int64]*models.Item),
		labels: make(map[int64][]string),
	}
}

func (f *fakeItemsRepo) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	item.ID = f.nextID
	clone := *item
	f.items[item.ID] = &clone
	return item, nil
}

func (f *fakeItemsRepo) Update(ctx context.Context, item *models.Item) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.items[item.ID]; !ok {
		return common.ErrorNotFound
	}
	clone := *item
	f.items[item.ID] = &clone
	return nil
}

func (f *fakeItemsRepo) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	item, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *item
	return &clone, nil
}

func (f *fakeItemsRepo) List(ctx context.Context) ([]*models.Item, error) {
	var result []*models.Item
	for id := f.nextID; id > 0; id-- {
		if item, ok := f.items[id]; ok {
			result = append(result, item)
		}
	}
	return result, nil
}

func (f *fakeItemsRepo) ListByLabel(ctx context.Context, label string) ([]*models.Item, error) {
	var result []*models.Item
	for id := f.nextID; id > 0; id-- {
		for _, l := range f.labels[id] {
			if l == label {
				result = append(result, f.items[id])
				break
			}
		}
	}
	return result, nil
}

func (f *fakeItemsRepo) ListRecent(ctx context.Context, limit int) ([]*models.Item, error) {
	all, _ := f.List(ctx)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeItemsRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	delete(f.labels, id)
	return nil
}

func (f *fakeItemsRepo) ReplaceLabels(ctx context.Context, id int64, labels []string) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.labels[id] = labels
	return nil
}

func (f *fakeItemsRepo) Count(ctx context.Context) (int, error) {
	if f.total > 0 {
		return f.total, nil
	}
	return len(f.items), nil
}

func (f *fakeItemsRepo) CountByLabel(ctx context.Context) (map[string]int, error) {
	return f.countByLabel, nil
}

func (f *fakeItemsRepo) CountUnlabeled(ctx context.Context) (int, error) {
	return f.countUnlabeled, nil
}

func (f *fakeItemsRepo) CountByDay(ctx context.Context, fromDate string) (map[string]int, error) {
	return f.countByDay, nil
}

type fakeCommentsRepo struct {
	comments  []*models.Comment
	createErr error
}

func (f *fakeCommentsRepo) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	c.ID = int64(len(f.comments) + 1)
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *fakeCommentsRepo) ListByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	var result []*models.Comment
	for _, c := range f.comments {
		if c.ItemID == itemID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeCommentsRepo) DeleteByItem(ctx context.Context, itemID int64) error {
	var kept []*models.Comment
	for _, c := range f.comments {
		if c.ItemID != itemID {
			kept = append(kept, c)
		}
	}
	f.comments = kept
	return nil
}

type fakeUsersRepo struct {
	users  map[int64]*models.User
	nextID int64

	countErr  error
	createErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{users: make(map[int64]*models.User)}
}

func (f *fakeUsersRepo) add(u *models.User) *models.User {
	f.nextID++
	u.ID = f.nextID
	f.users[u.ID] = u
	return u
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.add(u), nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	// Return a copy so callers see a row snapshot, as a real repository
	// would; later Set* calls must not mutate previously fetched values.
	c := *u
	return &c, nil
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	var result []*models.User
	for id := int64(1); id <= f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func (f *fakeUsersRepo) Count(ctx context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.users), nil
}

func (f *fakeUsersRepo) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.IsAdmin = isAdmin
	return nil
}

func (f *fakeUsersRepo) SetActive(ctx context.Context, id int64, isActive bool) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.IsActive = isActive
	return nil
}

type fakeSessionsRepo struct {
	sessions map[string]*models.Session

	createErr error
}

func newFakeSessionsRepo() *fakeSessionsRepo {
	return &fakeSessionsRepo{sessions: make(map[string]*models.Session)}
}

func (f *fakeSessionsRepo) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.sessions[token] = &models.Session{
		Token:   token,
		UserID:  userID,
		Expires: time.Now().Add(validity),
	}
	return nil
}

func (f *fakeSessionsRepo) Find(ctx context.Context, token string) (*models.Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (f *fakeSessionsRepo) Delete(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessionsRepo) DeleteByUser(ctx context.Context, userID int64) error {
	for token, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, token)
		}
	}
	return nil
}

type fakeProfilesRepo struct {
	profiles map[int64]*models.Profile
}

func newFakeProfilesRepo() *fakeProfilesRepo {
	return &fakeProfilesRepo{profiles: make(map[int64]*models.Profile)}
}

func (f *fakeProfilesRepo) Get(ctx context.Context, userID int64) (*models.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakeProfilesRepo) Upsert(ctx context.Context, profile *models.Profile) error {
	f.profiles[profile.UserID] = profile
	return nil
}

// fakeRepoManager vends the same fakes regardless of the DBTX handle, so
// transactional code paths exercise the fakes too.
type fakeRepoManager struct {
	items    *fakeItemsRepo
	users    *fakeUsersRepo
	comments *fakeCommentsRepo
	sessions *fakeSessionsRepo
	profiles *fakeProfilesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		items:    newFakeItemsRepo(),
		users:    newFakeUsersRepo(),
		comments: &fakeCommentsRepo{},
		sessions: newFakeSessionsRepo(),
		profiles: newFakeProfilesRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Items(db dbx.DBTX) itemsrepo.Repository         { return m.items }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository         { return m.users }
func (m *fakeRepoManager) Profiles(db dbx.DBTX) profilesrepo.Repository   { return m.profiles }
func (m *fakeRepoManager) Comments(db dbx.DBTX) commentsrepo.Repository   { return m.comments }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository   { return m.sessions }

// fakeIndex records writes to the search index.
type fakeIndex struct {
	docs    map[string]*search.Document
	deleted []string

	upsertErr error
	deleteErr error
	searchErr error
	results   []*search.Result
	lastQuery string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: make(map[string]*search.Document)}
}

func (f *fakeIndex) Upsert(ctx context.Context, id string, doc *search.Document) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.docs[id] = doc
	return nil
}

func (f *fakeIndex) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, query string, limit int) ([]*search.Result, error) {
	f.lastQuery = query
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeIndex) Close() error { return nil }
