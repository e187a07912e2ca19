package impl

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"taskboard/config"
	"taskboard/internal/domain/entity"
	"taskboard/internal/domain/repository"
	"taskboard/internal/domain/service"
	"taskboard/internal/infra/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// testLogger discards everything; the services log on most paths.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a manually advanced service.Clock, so expiry boundaries in
// tests are exact instead of racing the wall clock.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	// Anchored to the wall clock so repository-side "still active" filters,
	// which read time.Now directly, agree with the injected clock.
	return &fakeClock{now: time.Now().UTC().Truncate(time.Second)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// newTestCodec builds the real JWT codec with short, test-friendly TTLs.
func newTestCodec(t *testing.T, accessTTL, refreshTTL time.Duration) service.TokenCodec {
	t.Helper()

	codec, err := auth.NewJWTCodec(&config.Config{
		Auth: &config.AuthConfig{
			AccessSecret:    "test-secret",
			AccessTokenTTL:  accessTTL,
			RefreshTokenTTL: refreshTTL,
		},
	})
	require.NoError(t, err)

	return codec
}

// fakeCookies is an in-memory service.CookieTransport. Unlike the real
// request-scoped jar, reads observe writes, which emulates a client that
// echoes Set-Cookie values back on its next request.
type fakeCookies struct {
	access         string
	hasAccess      bool
	accessExpiry   time.Time
	refresh        string
	hasRefresh     bool
	refreshExpiry  time.Time
	accessCleared  bool
	refreshCleared bool
}

func (f *fakeCookies) SetAccessToken(value string, expiresAt time.Time) {
	f.access, f.hasAccess, f.accessExpiry = value, true, expiresAt
	f.accessCleared = false
}

func (f *fakeCookies) SetRefreshToken(value string, expiresAt time.Time) {
	f.refresh, f.hasRefresh, f.refreshExpiry = value, true, expiresAt
	f.refreshCleared = false
}

func (f *fakeCookies) AccessToken() (string, bool) { return f.access, f.hasAccess }

func (f *fakeCookies) RefreshToken() (string, bool) { return f.refresh, f.hasRefresh }

func (f *fakeCookies) ClearAccessToken() {
	f.access, f.hasAccess = "", false
	f.accessCleared = true
}

func (f *fakeCookies) ClearRefreshToken() {
	f.refresh, f.hasRefresh = "", false
	f.refreshCleared = true
}

// memStore is a shared in-memory backing for the fake repositories.
type memStore struct {
	users  map[uuid.UUID]*entity.User
	tokens map[uuid.UUID]*entity.RefreshToken
	tasks  map[uuid.UUID]*entity.Task
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[uuid.UUID]*entity.User),
		tokens: make(map[uuid.UUID]*entity.RefreshToken),
		tasks:  make(map[uuid.UUID]*entity.Task),
	}
}

// memTxManager satisfies repository.TransactionManager without transactional
// semantics; the services under test only need the factory plumbing.
type memTxManager struct {
	store *memStore
}

func newMemTxManager(store *memStore) repository.TransactionManager {
	return &memTxManager{store: store}
}

func (m *memTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(&memFactory{store: m.store})
}

type memFactory struct {
	store *memStore
}

func (f *memFactory) UserRepo() repository.UserRepository {
	return &memUserRepo{store: f.store}
}

func (f *memFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return &memRefreshTokenRepo{store: f.store}
}

func (f *memFactory) TaskRepo() repository.TaskRepository {
	return &memTaskRepo{store: f.store}
}

type memUserRepo struct {
	store *memStore
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user

	return &copied, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, user := range r.store.users {
		if user.Email == email {
			copied := *user

			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.store.users[user.ID] = &copied

	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *entity.User) error {
	if _, ok := r.store.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	copied := *user
	r.store.users[user.ID] = &copied

	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.store.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.store.users, id)

	return nil
}

type memRefreshTokenRepo struct {
	store *memStore
}

func (r *memRefreshTokenRepo) Create(_ context.Context, token *entity.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	copied := *token
	r.store.tokens[token.ID] = &copied

	return nil
}

func (r *memRefreshTokenRepo) FindByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	for _, token := range r.store.tokens {
		if token.TokenHash == tokenHash {
			copied := *token

			return &copied, nil
		}
	}

	return nil, repository.ErrRefreshTokenNotFound
}

func (r *memRefreshTokenRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	var tokens []*entity.RefreshToken
	for _, token := range r.store.tokens {
		if token.UserID == userID && token.ExpiresAt.After(time.Now()) {
			copied := *token
			tokens = append(tokens, &copied)
		}
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].CreatedAt.After(tokens[j].CreatedAt) })

	return tokens, nil
}

func (r *memRefreshTokenRepo) DeleteByHash(_ context.Context, tokenHash string) (int64, error) {
	var deleted int64
	for id, token := range r.store.tokens {
		if token.TokenHash == tokenHash {
			delete(r.store.tokens, id)
			deleted++
		}
	}

	return deleted, nil
}

func (r *memRefreshTokenRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	for id, token := range r.store.tokens {
		if token.UserID == userID {
			delete(r.store.tokens, id)
		}
	}

	return nil
}

func (r *memRefreshTokenRepo) DeleteByIDs(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		delete(r.store.tokens, id)
	}

	return nil
}

func (r *memRefreshTokenRepo) DeleteExpired(_ context.Context, userID uuid.UUID, now time.Time) error {
	for id, token := range r.store.tokens {
		if token.UserID == userID && token.ExpiresAt.Before(now) {
			delete(r.store.tokens, id)
		}
	}

	return nil
}

type memTaskRepo struct {
	store *memStore
}

func (r *memTaskRepo) Create(_ context.Context, task *entity.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	copied := *task
	r.store.tasks[task.ID] = &copied

	return nil
}

func (r *memTaskRepo) FindByID(_ context.Context, userID, taskID uuid.UUID) (*entity.Task, error) {
	task, ok := r.store.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	copied := *task

	return &copied, nil
}

func (r *memTaskRepo) List(_ context.Context, userID uuid.UUID, filter repository.TaskFilter, page, perPage int) (*entity.TaskPage, error) {
	var matched []*entity.Task
	for _, task := range r.store.tasks {
		if task.UserID != userID {
			continue
		}
		if filter.Done != nil && task.Done != *filter.Done {
			continue
		}
		copied := *task
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}

	return &entity.TaskPage{
		Tasks:   matched[start:end],
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

func (r *memTaskRepo) Update(_ context.Context, task *entity.Task) error {
	existing, ok := r.store.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return repository.ErrTaskNotFound
	}
	copied := *task
	r.store.tasks[task.ID] = &copied

	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, userID, taskID uuid.UUID) error {
	task, ok := r.store.tasks[taskID]
	if !ok || task.UserID != userID {
		return repository.ErrTaskNotFound
	}
	delete(r.store.tasks, taskID)

	return nil
}

func (r *memTaskRepo) DeleteByIDs(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if task, ok := r.store.tasks[id]; ok && task.UserID == userID {
			delete(r.store.tasks, id)
			deleted++
		}
	}

	return deleted, nil
}

func (r *memTaskRepo) SetDoneByIDs(_ context.Context, userID uuid.UUID, ids []uuid.UUID, done bool) (int64, error) {
	var updated int64
	for _, id := range ids {
		if task, ok := r.store.tasks[id]; ok && task.UserID == userID {
			task.Done = done
			updated++
		}
	}

	return updated, nil
}
