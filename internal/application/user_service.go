package application

import (
	"context"
	"errors"
	"expvar"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/validation"
)

var (
	ErrValidation       = errors.New("validation fails")
	ErrUserExists       = errors.New("user already exists")
	ErrEmailInUse       = errors.New("e-mail already in use")
	ErrPasswordMismatch = errors.New("password does not match")
	ErrUserNotFound     = errors.New("user not found")
)

var (
	usersCreated     = expvar.NewInt("users_created")
	usersUpdated     = expvar.NewInt("users_updated")
	pipelineFailures = expvar.NewMap("user_pipeline_failures")
)

// PasswordHasher derives and checks stored password hashes.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// Indexer receives the projection of every written user.
type Indexer interface {
	Index(ctx context.Context, id string, doc any) error
}

// SessionRefresher keeps cached session profiles in line with the stored user.
type SessionRefresher interface {
	RefreshProfile(ctx context.Context, userID, name, email string) error
}

// Notifier enqueues account emails.
type Notifier interface {
	Welcome(ctx context.Context, u entity.Projection) error
	ProfileUpdated(ctx context.Context, u entity.Projection, changed []string) error
}

// Service runs the create and update pipelines. It holds no per-request state.
// Indexer, Sessions and Notifier are optional post-commit side effects; their
// failures are logged and never change the result.
type Service struct {
	Repo     repo.UserRepository
	Hasher   PasswordHasher
	Logger   *logrus.Logger
	Indexer  Indexer
	Sessions SessionRefresher
	Notifier Notifier
}

func NewService(repo repo.UserRepository, hasher PasswordHasher, logger *logrus.Logger) *Service {
	return &Service{Repo: repo, Hasher: hasher, Logger: logger}
}

// CreateUser validates the payload, rejects a taken email, hashes the password
// and stores the new user.
func (s *Service) CreateUser(ctx context.Context, in validation.CreateUserPayload) (entity.Projection, error) {
	if err := validation.ValidateCreate(in); err != nil {
		return s.fail("create", errors.Join(ErrValidation, err))
	}

	existing, err := s.Repo.FindByEmail(ctx, *in.Email)
	switch {
	case err == nil && existing != nil:
		return s.fail("create", ErrUserExists)
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		return s.fail("create", fmt.Errorf("find by email: %w", err))
	}

	hash, err := s.Hasher.Hash(*in.Password)
	if err != nil {
		return s.fail("create", fmt.Errorf("hash password: %w", err))
	}

	u := &entity.User{Name: *in.Name, Email: *in.Email, PasswordHash: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return s.fail("create", ErrUserExists)
		}
		return s.fail("create", fmt.Errorf("create user: %w", err))
	}

	usersCreated.Add(1)
	out := u.Projection()
	s.afterCreate(ctx, out)
	return out, nil
}

// UpdateUser applies a partial update to the user identified by subjectID.
// The returned email is the request value when given, otherwise the email
// stored before the update; the other fields come from the persisted row.
func (s *Service) UpdateUser(ctx context.Context, subjectID string, in validation.UpdateUserPayload) (entity.Projection, error) {
	if err := validation.ValidateUpdate(in); err != nil {
		return s.fail("update", errors.Join(ErrValidation, err))
	}

	u, err := s.Repo.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return s.fail("update", ErrUserNotFound)
		}
		return s.fail("update", fmt.Errorf("find by id: %w", err))
	}

	email := u.Email
	if in.Email != nil {
		email = *in.Email
		other, err := s.Repo.FindByEmail(ctx, email)
		switch {
		case err == nil && other != nil && other.ID != u.ID:
			return s.fail("update", ErrEmailInUse)
		case err != nil && !errors.Is(err, repo.ErrNotFound):
			return s.fail("update", fmt.Errorf("find by email: %w", err))
		}
	}

	if in.OldPassword != nil && !s.Hasher.Verify(*in.OldPassword, u.PasswordHash) {
		return s.fail("update", ErrPasswordMismatch)
	}

	changes := entity.UserChanges{Name: in.Name, Email: in.Email}
	if in.Password != nil {
		hash, err := s.Hasher.Hash(*in.Password)
		if err != nil {
			return s.fail("update", fmt.Errorf("hash password: %w", err))
		}
		changes.PasswordHash = &hash
	}

	updated, err := s.Repo.Update(ctx, u, changes)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateEmail):
			return s.fail("update", ErrEmailInUse)
		case errors.Is(err, repo.ErrNotFound):
			return s.fail("update", ErrUserNotFound)
		}
		return s.fail("update", fmt.Errorf("update user: %w", err))
	}

	usersUpdated.Add(1)
	out := entity.Projection{ID: updated.ID, Name: updated.Name, Email: email, Provider: updated.Provider}
	s.afterUpdate(ctx, updated, changedFields(changes))
	return out, nil
}

func (s *Service) fail(op string, err error) (entity.Projection, error) {
	pipelineFailures.Add(op+":"+failureKind(err), 1)
	return entity.Projection{}, err
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUserExists), errors.Is(err, ErrEmailInUse):
		return "email_taken"
	case errors.Is(err, ErrPasswordMismatch):
		return "password_mismatch"
	case errors.Is(err, ErrUserNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

func changedFields(c entity.UserChanges) []string {
	var out []string
	if c.Name != nil {
		out = append(out, "name")
	}
	if c.Email != nil {
		out = append(out, "email")
	}
	if c.PasswordHash != nil {
		out = append(out, "password")
	}
	return out
}

func (s *Service) afterCreate(ctx context.Context, p entity.Projection) {
	s.index(ctx, p)
	if s.Notifier != nil {
		if err := s.Notifier.Welcome(ctx, p); err != nil {
			s.warn(err, p.ID, "enqueue welcome email failed")
		}
	}
}

func (s *Service) afterUpdate(ctx context.Context, u *entity.User, changed []string) {
	if len(changed) == 0 {
		return
	}
	p := u.Projection()
	s.index(ctx, p)
	if s.Sessions != nil {
		if err := s.Sessions.RefreshProfile(ctx, u.ID, u.Name, u.Email); err != nil {
			s.warn(err, u.ID, "session refresh failed")
		}
	}
	if s.Notifier != nil {
		if err := s.Notifier.ProfileUpdated(ctx, p, changed); err != nil {
			s.warn(err, u.ID, "enqueue profile updated email failed")
		}
	}
}

func (s *Service) index(ctx context.Context, p entity.Projection) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.Index(ctx, p.ID, p); err != nil {
		s.warn(err, p.ID, "es index failed")
	}
}

func (s *Service) warn(err error, userID, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn(msg)
	}
}
