package service

import (
	"context"
	"fmt"

	"github.com/raw-dani/pos-only/internal/apierror"
	"github.com/raw-dani/pos-only/internal/dto"
	"github.com/raw-dani/pos-only/internal/model"
	"github.com/raw-dani/pos-only/internal/rbac"
	"github.com/raw-dani/pos-only/internal/repository"

	"github.com/google/uuid"
)

type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, actor Identity, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	ResetPassword(ctx context.Context, id uuid.UUID, req dto.ResetPasswordRequest) error
	// Deactivate marks the user inactive; users are never removed.
	Deactivate(ctx context.Context, actor Identity, id uuid.UUID) error
	ListRoles(ctx context.Context) ([]dto.RoleResponse, error)
}

type userService struct {
	users repository.UserRepository
	roles repository.RoleRepository
}

func NewUserService(users repository.UserRepository, roles repository.RoleRepository) UserService {
	return &userService{users: users, roles: roles}
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = toUserResponse(&users[i])
	}
	return resp, nil
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	role, err := s.resolveRole(ctx, req.Role)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		RoleID:       role.ID,
		Active:       true,
		Role:         *role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apierror.Conflict("username already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, actor Identity, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Active != nil && !*req.Active && id == actor.UserID {
		return nil, apierror.Field("active", "you cannot deactivate your own account")
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Role != nil {
		role, err := s.resolveRole(ctx, *req.Role)
		if err != nil {
			return nil, err
		}
		user.RoleID = role.ID
		user.Role = *role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) ResetPassword(ctx context.Context, id uuid.UUID, req dto.ResetPasswordRequest) error {
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound("user not found")
		}
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

func (s *userService) Deactivate(ctx context.Context, actor Identity, id uuid.UUID) error {
	if id == actor.UserID {
		return apierror.Validation("you cannot deactivate your own account")
	}
	if err := s.users.SetActive(ctx, id, false); err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound("user not found")
		}
		return fmt.Errorf("deactivate user: %w", err)
	}
	return nil
}

func (s *userService) ListRoles(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	resp := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		if !rbac.IsAssignable(rbac.Role(r.Name)) {
			continue
		}
		resp = append(resp, dto.RoleResponse{ID: r.ID.String(), Name: r.Name})
	}
	return resp, nil
}

func (s *userService) find(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("user not found")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *userService) resolveRole(ctx context.Context, name string) (*model.Role, error) {
	if !rbac.IsAssignable(rbac.Role(name)) {
		return nil, apierror.Field("role", "role must be one of Admin, Manager, Cashier")
	}
	role, err := s.roles.FindByName(ctx, name)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.Field("role", "role "+name+" is not provisioned")
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return role, nil
}
