package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/auth"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
)

// CreateUserInput describes a new tenant user.
type CreateUserInput struct {
	Email    string  `json:"email" validate:"required,email,max=254"`
	FullName string  `json:"full_name" validate:"required,max=200"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	RoleID   *string `json:"role_id" validate:"omitempty,uuid"`
}

// UpdateUserInput carries the mutable user fields.
type UpdateUserInput struct {
	Email    string  `json:"email" validate:"required,email,max=254"`
	FullName string  `json:"full_name" validate:"required,max=200"`
	RoleID   *string `json:"role_id" validate:"omitempty,uuid"`
	IsActive *bool   `json:"is_active"`
}

// UserService manages the users of the caller's tenant.
type UserService interface {
	List(ctx context.Context, limit, offset int, search string) (*ListResult[model.User], error)
	Get(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, in CreateUserInput) (*model.User, error)
	Update(ctx context.Context, id string, in UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	users repository.UserRepository
}

// NewUserService constructs a new UserService.
func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) List(ctx context.Context, limit, offset int, search string) (*ListResult[model.User], error) {
	res, err := s.users.List(ctx, pageQuery(limit, offset, search))
	if err != nil {
		return nil, err
	}
	return listResult(res), nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *userService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if err := auth.ValidatePasswordStrength(in.Password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.users.Create(ctx, &model.User{
		Email:        normalizeEmail(in.Email),
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		RoleID:       emptyToNil(in.RoleID),
		IsActive:     true,
	})
}

func (s *userService) Update(ctx context.Context, id string, in UpdateUserInput) (*model.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Email = normalizeEmail(in.Email)
	u.FullName = strings.TrimSpace(in.FullName)
	u.RoleID = emptyToNil(in.RoleID)
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	updated, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, notFound(err)
	}
	return updated, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	return notFound(s.users.Delete(ctx, id))
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
