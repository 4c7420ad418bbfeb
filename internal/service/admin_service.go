package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/communityforum/internal/dto"
	"anoa.com/communityforum/internal/model"
	"anoa.com/communityforum/internal/repository"
	"anoa.com/communityforum/pkg/apperror"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminService interface {
	CreateUser(ctx context.Context, input dto.CreateUserInput) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, id string, input dto.UpdateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type adminService struct {
	repo repository.UserRepository
}

func NewAdminService(repo repository.UserRepository) AdminService {
	return &adminService{repo: repo}
}

func (s *adminService) CreateUser(ctx context.Context, input dto.CreateUserInput) (*model.User, error) {
	if err := s.ensureUnique(ctx, input.Email, input.Username); err != nil {
		return nil, err
	}

	role := model.Role(input.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", input.Role, apperror.ErrBadRequest)
	}

	// Guests carry no credentials; everyone else needs a password.
	var passwordHash *string
	if role != model.RoleGuest {
		if input.Password == "" {
			return nil, fmt.Errorf("password is required for role %s: %w", role, apperror.ErrBadRequest)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		h := string(hashed)
		passwordHash = &h
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         role,
		Grants:       model.DefaultGrants(role),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = nil
	return user, nil
}

func (s *adminService) GetAllUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		u.PasswordHash = nil
	}
	return users, nil
}

// UpdateUser patches role and permission flags independently. Changing the
// role deliberately leaves the flags alone; the snapshot taken at creation
// is only ever mutated explicitly.
func (s *adminService) UpdateUser(ctx context.Context, id string, input dto.UpdateUserInput) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if input.Username != "" && input.Username != user.Username {
		if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
			return nil, fmt.Errorf("username already taken: %w", apperror.ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = input.Username
	}

	if input.Email != "" && input.Email != user.Email {
		if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
			return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = input.Email
	}

	if input.Role != "" {
		role := model.Role(input.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role %q: %w", input.Role, apperror.ErrBadRequest)
		}
		user.Role = role
	}

	if input.Grants != nil {
		applyGrantsPatch(&user.Grants, input.Grants)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = nil
	return user, nil
}

func (s *adminService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *adminService) ensureUnique(ctx context.Context, email, username string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return fmt.Errorf("email already registered: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return fmt.Errorf("username already taken: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return nil
}

func applyGrantsPatch(grants *model.Grants, patch *dto.GrantsPatch) {
	if patch.CanPost != nil {
		grants.CanPost = *patch.CanPost
	}
	if patch.CanComment != nil {
		grants.CanComment = *patch.CanComment
	}
	if patch.CanModerate != nil {
		grants.CanModerate = *patch.CanModerate
	}
	if patch.CanManageUsers != nil {
		grants.CanManageUsers = *patch.CanManageUsers
	}
}
