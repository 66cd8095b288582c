package service

import (
	"context"
	"errors"

	"github.com/eswarnandha-a/sece-space/internal/model"
	"github.com/eswarnandha-a/sece-space/internal/repository"
)

// UserStore persists the principal mirror.
type UserStore interface {
	GetRef(ctx context.Context, id string) (*model.UserRef, error)
	Upsert(ctx context.Context, u *model.UserRef) error
	SetAvatar(ctx context.Context, id, avatarURL string) error
}

// UserService keeps the local principal mirror in step with the
// external auth service. Classroom reads join against this mirror, so
// a principal must be synced before it can own or join classrooms.
type UserService struct {
	users UserStore
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Sync mirrors the token's identity into the local store and returns
// the stored projection, avatar included.
func (s *UserService) Sync(ctx context.Context, claims *Claims) (*model.UserRef, error) {
	u := &model.UserRef{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	}
	if err := s.users.Upsert(ctx, u); err != nil {
		return nil, err
	}
	return s.users.GetRef(ctx, u.ID)
}

// Profile retrieves the stored identity projection.
func (s *UserService) Profile(ctx context.Context, id string) (*model.UserRef, error) {
	u, err := s.users.GetRef(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// SetAvatar stores the principal's profile image URL, typically the
// delivery URL handed back by the profile-image upload.
func (s *UserService) SetAvatar(ctx context.Context, id, avatarURL string) error {
	if err := s.users.SetAvatar(ctx, id, avatarURL); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
