package application_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	userapp "github.com/oksasatya/go-ddd-user-accounts/internal/application"
	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/validation"
)

func str(s string) *string { return &s }

func newTestService(r *memoryUserRepo) *userapp.Service {
	return userapp.NewService(r, helpers.NewBcryptHasher(bcrypt.MinCost), helpers.NewNopLogger())
}

func createPayload(name, email, password string) validation.CreateUserPayload {
	return validation.CreateUserPayload{Name: str(name), Email: str(email), Password: str(password)}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	svc := newTestService(repo)

	out, err := svc.CreateUser(ctx, createPayload("A", "a@x.com", "secret1"))
	require.NoError(t, err)
	require.NotEmpty(t, out.ID)
	require.Equal(t, "A", out.Name)
	require.Equal(t, "a@x.com", out.Email)
	require.False(t, out.Provider)

	stored, err := repo.FindByID(ctx, out.ID)
	require.NoError(t, err)
	require.NotEqual(t, "secret1", stored.PasswordHash)
	require.True(t, svc.Hasher.Verify("secret1", stored.PasswordHash))
}

func TestCreateUserValidationFails(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestService(repo)

	payloads := []validation.CreateUserPayload{
		{Email: str("a@x.com"), Password: str("secret1")},
		{Name: str("A"), Password: str("secret1")},
		{Name: str("A"), Email: str("a@x.com")},
		createPayload("A", "a@x.com", "short"),
	}
	for _, p := range payloads {
		_, err := svc.CreateUser(context.Background(), p)
		require.ErrorIs(t, err, userapp.ErrValidation)
	}
	require.Zero(t, repo.count())
	require.Zero(t, repo.findCalls, "no lookup may run after a validation failure")
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	svc := newTestService(repo)

	_, err := svc.CreateUser(ctx, createPayload("A", "a@x.com", "secret1"))
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, createPayload("Other", "a@x.com", "secret2"))
	require.ErrorIs(t, err, userapp.ErrUserExists)
	require.Equal(t, 1, repo.count())
}

func TestCreateUserStoreRejectsDuplicate(t *testing.T) {
	// lookup misses, as in two concurrent creates; the unique index catches it
	ctx := context.Background()
	repo := newMemoryUserRepo()
	svc := newTestService(repo)

	_, err := svc.CreateUser(ctx, createPayload("A", "a@x.com", "secret1"))
	require.NoError(t, err)

	repo.blindEmailLookup = true
	_, err = svc.CreateUser(ctx, createPayload("A", "a@x.com", "secret1"))
	require.ErrorIs(t, err, userapp.ErrUserExists)
	require.Equal(t, 1, repo.count())
}

func TestCreateUserStoreFailure(t *testing.T) {
	repo := newMemoryUserRepo()
	repo.failWith = errors.New("connection refused")
	svc := newTestService(repo)

	_, err := svc.CreateUser(context.Background(), createPayload("A", "a@x.com", "secret1"))
	require.Error(t, err)
	require.NotErrorIs(t, err, userapp.ErrValidation)
	require.NotErrorIs(t, err, userapp.ErrUserExists)
	require.ErrorContains(t, err, "connection refused")
}

func seedUser(t *testing.T, svc *userapp.Service, name, email, password string) entity.Projection {
	t.Helper()
	out, err := svc.CreateUser(context.Background(), createPayload(name, email, password))
	require.NoError(t, err)
	return out
}

func TestUpdateUserEmptyPayloadChangesNothing(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	svc := newTestService(repo)
	created := seedUser(t, svc, "A", "a@x.com", "secret1")
	before, _ := repo.FindByID(ctx, created.ID)

	out, err := svc.UpdateUser(ctx, created.ID, validation.UpdateUserPayload{})
	require.NoError(t, err)
	require.Equal(t, created, out)

	after, _ := repo.FindByID(ctx, created.ID)
	require.Equal(t, before, after)
}

func TestUpdateUserPartial(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	svc := newTestService(repo)
	created := seedUser(t, svc, "A", "a@x.com", "secret1")

	out, err := svc.UpdateUser(ctx, created.ID, validation.UpdateUserPayload{Name: str("B")})
	require.NoError(t, err)
	require.Equal(t, "B", out.Name)
	require.Equal(t, "a@x.com", out.Email)

	stored, _ := repo.FindByID(ctx, created.ID)
	require.Equal(t, "B", stored.Name)
	require.Equal(t, "a@x.com", stored.Email)
	require.True(t, svc.Hasher.Verify("secret1", stored.PasswordHash))
}

func TestUpdateUserEmail(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	svc := newTestService(repo)
	created := seedUser(t, svc, "A", "a@x.com", "secret1")

	out, err := svc.UpdateUser(ctx, created.ID, validation.UpdateUserPayload{Email: str("b@x.com")})
	require.NoError(t, err)
	require.Equal(t, "b@x.com", out.Email)

	stored, _ := repo.FindByID(ctx, created.ID)
	require.Equal(t, "b@x.com", stored.Email)
}

func TestUpdateUserOwnEmailIsAllowed(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestService(repo)
	created := seedUser(t, svc, "A", "a@x.com", "secret1")

	out, err := svc.UpdateUser(context.Background(), created.ID, validation.UpdateUserPayload{Email: str("a@x.com"), Name: str("B")})
	require.NoError(t, err)
	require.Equal(t, "B", out.Name)
}

func TestUpdateUserEmailInUse(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	svc := newTestService(repo)
	a := seedUser(t, svc, "A", "a@x.com", "secret1")
	seedUser(t, svc, "B", "b@x.com", "secret1")

	_, err := svc.UpdateUser(ctx, a.ID, validation.UpdateUserPayload{Email: str("b@x.com")})
	require.ErrorIs(t, err, userapp.ErrEmailInUse)

	stored, _ := repo.FindByID(ctx, a.ID)
	require.Equal(t, "a@x.com", stored.Email)
}

func TestUpdateUserPasswordMismatch(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	svc := newTestService(repo)
	created := seedUser(t, svc, "A", "a@x.com", "secret1")

	_, err := svc.UpdateUser(ctx, created.ID, validation.UpdateUserPayload{
		Name:            str("B"),
		OldPassword:     str("wrongpass"),
		Password:        str("newpass"),
		ConfirmPassword: str("newpass"),
	})
	require.ErrorIs(t, err, userapp.ErrPasswordMismatch)
	require.Zero(t, repo.updateCalls)

	stored, _ := repo.FindByID(ctx, created.ID)
	require.Equal(t, "A", stored.Name)
	require.True(t, svc.Hasher.Verify("secret1", stored.PasswordHash))
}

func TestUpdateUserChangesPassword(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	svc := newTestService(repo)
	created := seedUser(t, svc, "A", "a@x.com", "secret1")

	_, err := svc.UpdateUser(ctx, created.ID, validation.UpdateUserPayload{
		OldPassword:     str("secret1"),
		Password:        str("newpass"),
		ConfirmPassword: str("newpass"),
	})
	require.NoError(t, err)

	stored, _ := repo.FindByID(ctx, created.ID)
	require.True(t, svc.Hasher.Verify("newpass", stored.PasswordHash))
	require.False(t, svc.Hasher.Verify("secret1", stored.PasswordHash))
}

func TestUpdateUserValidationFailsBeforeLookup(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestService(repo)
	created := seedUser(t, svc, "A", "a@x.com", "secret1")
	repo.findCalls = 0

	cases := []validation.UpdateUserPayload{
		{Password: str("newpass")},
		{Password: str("newpass"), ConfirmPassword: str("other11")},
		{OldPassword: str("secret1")},
		{Password: str("abc"), ConfirmPassword: str("abc")},
	}
	for _, p := range cases {
		_, err := svc.UpdateUser(context.Background(), created.ID, p)
		require.ErrorIs(t, err, userapp.ErrValidation)
	}
	require.Zero(t, repo.findCalls)
}

func TestUpdateUserNotFound(t *testing.T) {
	svc := newTestService(newMemoryUserRepo())

	_, err := svc.UpdateUser(context.Background(), uuid.NewString(), validation.UpdateUserPayload{Name: str("B")})
	require.ErrorIs(t, err, userapp.ErrUserNotFound)
}

func TestUpdateUserResponseEmailComesFromRequest(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	svc := newTestService(repo)
	created := seedUser(t, svc, "A", "a@x.com", "secret1")

	// the store rewrites email on write; the response still echoes the request value
	repo.onUpdate = func(u *entity.User) { u.Email = strings.ToUpper(u.Email) }

	out, err := svc.UpdateUser(ctx, created.ID, validation.UpdateUserPayload{Email: str("b@x.com"), Name: str("B")})
	require.NoError(t, err)
	require.Equal(t, "b@x.com", out.Email)
	require.Equal(t, "B", out.Name)

	stored, _ := repo.FindByID(ctx, created.ID)
	require.Equal(t, "B@X.COM", stored.Email)

	out, err = svc.UpdateUser(ctx, created.ID, validation.UpdateUserPayload{Name: str("C")})
	require.NoError(t, err)
	require.Equal(t, "B@X.COM", out.Email, "absent email falls back to the stored value read before the update")
}

func TestSideEffects(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	svc := newTestService(repo)
	idx := &recordingIndexer{}
	sess := &recordingSessions{}
	notif := &recordingNotifier{}
	svc.Indexer, svc.Sessions, svc.Notifier = idx, sess, notif

	created := seedUser(t, svc, "A", "a@x.com", "secret1")
	require.Equal(t, []string{created.ID}, idx.ids)
	require.Equal(t, []string{"a@x.com"}, notif.welcomed)

	_, err := svc.UpdateUser(ctx, created.ID, validation.UpdateUserPayload{})
	require.NoError(t, err)
	require.Len(t, idx.ids, 1, "no-op updates skip side effects")
	require.Empty(t, sess.refreshed)

	_, err = svc.UpdateUser(ctx, created.ID, validation.UpdateUserPayload{Name: str("B"), Email: str("b@x.com")})
	require.NoError(t, err)
	require.Len(t, idx.ids, 2)
	require.Equal(t, []string{created.ID + ":B:b@x.com"}, sess.refreshed)
	require.Equal(t, [][]string{{"name", "email"}}, notif.changes)
}

func TestSideEffectFailuresDoNotFailPipeline(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestService(repo)
	boom := errors.New("boom")
	svc.Indexer = &recordingIndexer{err: boom}
	svc.Notifier = &recordingNotifier{err: boom}
	svc.Sessions = &recordingSessions{err: boom}

	created := seedUser(t, svc, "A", "a@x.com", "secret1")
	_, err := svc.UpdateUser(context.Background(), created.ID, validation.UpdateUserPayload{Name: str("B")})
	require.NoError(t, err)
}

// ---- fakes ----

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]entity.User

	blindEmailLookup bool
	failWith         error
	onUpdate         func(*entity.User)

	findCalls   int
	updateCalls int
}

var _ repository.UserRepository = (*memoryUserRepo)(nil)

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]entity.User{}}
}

func (m *memoryUserRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	if m.failWith != nil {
		return nil, m.failWith
	}
	if m.blindEmailLookup {
		return nil, repository.ErrNotFound
	}
	for _, u := range m.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memoryUserRepo) Create(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	m.users[u.ID] = *u
	return nil
}

func (m *memoryUserRepo) Update(ctx context.Context, u *entity.User, changes entity.UserChanges) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	stored, ok := m.users[u.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if changes.Name != nil {
		stored.Name = *changes.Name
	}
	if changes.Email != nil {
		stored.Email = *changes.Email
	}
	if changes.PasswordHash != nil {
		stored.PasswordHash = *changes.PasswordHash
	}
	if m.onUpdate != nil {
		m.onUpdate(&stored)
	}
	m.users[u.ID] = stored
	return &stored, nil
}

type recordingIndexer struct {
	ids []string
	err error
}

func (r *recordingIndexer) Index(ctx context.Context, id string, doc any) error {
	r.ids = append(r.ids, id)
	return r.err
}

type recordingSessions struct {
	refreshed []string
	err       error
}

func (r *recordingSessions) RefreshProfile(ctx context.Context, userID, name, email string) error {
	r.refreshed = append(r.refreshed, userID+":"+name+":"+email)
	return r.err
}

type recordingNotifier struct {
	welcomed []string
	changes  [][]string
	err      error
}

func (r *recordingNotifier) Welcome(ctx context.Context, u entity.Projection) error {
	r.welcomed = append(r.welcomed, u.Email)
	return r.err
}

func (r *recordingNotifier) ProfileUpdated(ctx context.Context, u entity.Projection, changed []string) error {
	r.changes = append(r.changes, changed)
	return r.err
}
