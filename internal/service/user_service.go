package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmailExists = errors.New("email already exists")
)

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, actor model.Actor) (*model.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, actor model.Actor) (*model.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID, actor model.Actor) error
	UpdateUserPrivileges(ctx context.Context, userID uuid.UUID, privilegeCodes []string, actor model.Actor) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
	GetRoles(ctx context.Context) ([]model.Role, error)
	GetPrivileges(ctx context.Context) ([]model.Privilege, error)
}

type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"max=20"`
	RoleID      uint   `json:"role_id" validate:"required"`
}

type UpdateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"max=20"`
	RoleID      uint   `json:"role_id" validate:"required"`
	IsActive    *bool  `json:"is_active"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
	}
}

func (s *userService) findRole(ctx context.Context, id uint) (*model.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid("role %d not found", id)
	}
	if err != nil {
		return nil, unavailable("load role", err)
	}
	return role, nil
}

func (s *userService) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("check email", err)
	}
	return true, nil
}

func (s *userService) findUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("load user", err)
	}
	return user, nil
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, actor model.Actor) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}

	taken, err := s.emailTaken(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}

	role, err := s.findRole(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		RoleID:      &role.ID,
		IsActive:    true,
		// Users start with their role's privileges.
		Privileges: role.Privileges,
	}
	user.CreatedBy = actor.ID
	user.UpdatedBy = actor.ID

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, unavailable("create user", err)
	}
	return s.findUser(ctx, user.ID)
}

func (s *userService) UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, actor model.Actor) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != user.Email {
		taken, err := s.emailTaken(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailExists
		}
	}

	role, err := s.findRole(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	roleChanged := user.RoleID == nil || *user.RoleID != role.ID

	user.Email = req.Email
	user.FullName = req.FullName
	user.PhoneNumber = req.PhoneNumber
	user.RoleID = &role.ID
	user.Role = nil
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = actor.ID

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, unavailable("update user", err)
	}
	// A role change resets privileges to the new role's set.
	if roleChanged {
		if err := s.userRepo.UpdatePrivileges(ctx, userID, role.Privileges); err != nil {
			return nil, unavailable("update privileges", err)
		}
	}
	return s.findUser(ctx, userID)
}

func (s *userService) DeleteUser(ctx context.Context, userID uuid.UUID, actor model.Actor) error {
	if _, err := s.findUser(ctx, userID); err != nil {
		return err
	}
	if userID.String() == actor.ID {
		return invalid("you cannot delete your own account")
	}
	if err := s.userRepo.Delete(ctx, userID, actor.ID); err != nil {
		return unavailable("delete user", err)
	}
	return nil
}

func (s *userService) UpdateUserPrivileges(ctx context.Context, userID uuid.UUID, privilegeCodes []string, actor model.Actor) (*model.User, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	privileges, err := s.privilegeRepo.FindByCodes(ctx, privilegeCodes)
	if err != nil {
		return nil, unavailable("load privileges", err)
	}
	if len(privileges) != len(privilegeCodes) {
		return nil, invalid("unknown privilege code in %v", privilegeCodes)
	}

	if err := s.userRepo.UpdatePrivileges(ctx, userID, privileges); err != nil {
		return nil, unavailable("update privileges", err)
	}

	user.UpdatedBy = actor.ID
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, unavailable("update user", err)
	}
	return s.findUser(ctx, userID)
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, unavailable("list users", err)
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) GetRoles(ctx context.Context) ([]model.Role, error) {
	roles, err := s.roleRepo.FindAll(ctx)
	if err != nil {
		return nil, unavailable("list roles", err)
	}
	return roles, nil
}

func (s *userService) GetPrivileges(ctx context.Context) ([]model.Privilege, error) {
	privileges, err := s.privilegeRepo.FindAll(ctx)
	if err != nil {
		return nil, unavailable("list privileges", err)
	}
	return privileges, nil
}
