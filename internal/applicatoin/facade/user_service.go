package facade

import (
	"context"
	"errors"

	"go-user-notify/internal/domain/model"
	"go-user-notify/internal/infrastructure/auth"
	"go-user-notify/internal/infrastructure/logger"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository is the persistence contract the service depends on.
type UserRepository interface {
	FindAll(ctx context.Context) ([]model.User, error)
	FindByID(ctx context.Context, id int32) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, name, email, passwordHash string) (*model.User, error)
	Delete(ctx context.Context, id int32) (*model.User, error)
}

// Notifier is invoked after a mutation commits. Implementations are
// fire-and-forget; a notification failure never fails the operation.
type Notifier interface {
	NotifyUserCreated(ctx context.Context, user model.User)
	NotifyUserDeleted(ctx context.Context, user model.User)
}

// UserService orchestrates user CRUD and triggers notifications once the
// authoritative data mutation is done.
type UserService struct {
	repo     UserRepository
	notifier Notifier
	logger   logger.Logger
}

func NewUserService(repo UserRepository, notifier Notifier, log logger.Logger) *UserService {
	return &UserService{
		repo:     repo,
		notifier: notifier,
		logger:   log.WithField("service", "user"),
	}
}

func (s *UserService) GetAll(ctx context.Context) ([]model.User, error) {
	return s.repo.FindAll(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id int32) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	user, err := s.repo.Create(ctx, req.Name, req.Email, "")
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyUserCreated(ctx, *user)

	return user, nil
}

// Register creates an account with credentials.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, req.Name, req.Email, hash)
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyUserCreated(ctx, *user)

	return user, nil
}

// Authenticate verifies credentials and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.PasswordHash == "" || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Delete removes the user. The repository returns the deleted snapshot so
// the notification can still describe who was removed.
func (s *UserService) Delete(ctx context.Context, id int32) error {
	user, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.notifier.NotifyUserDeleted(ctx, *user)

	return nil
}
