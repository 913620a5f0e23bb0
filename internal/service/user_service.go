package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/supportdesk/ticketing-service/internal/domain"
	"github.com/supportdesk/ticketing-service/internal/repository"
	apperrors "github.com/supportdesk/ticketing-service/pkg/util"
)

// UserService handles account creation for requesters and operators.
type UserService struct {
	users repository.UserRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// UserCreateInput describes user creation payload.
type UserCreateInput struct {
	Email string
	Name  string
	Role  domain.Role
}

// CreateUser persists a new user. Email is required and unique; role
// defaults to the plain user role.
func (s *UserService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, apperrors.NewValidationError("email required", nil)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleOperator {
		return nil, apperrors.NewValidationError("role must be user or operator", map[string]any{"role": role})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Email: email,
		Name:  strings.TrimSpace(input.Name),
		Role:  role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
