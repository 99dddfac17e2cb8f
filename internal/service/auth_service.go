package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/portal-service/internal/auth"
	"github.com/spec-kit/portal-service/internal/config"
	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/repository"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

// AuthService coordinates employee registration and login flows.
type AuthService struct {
	employees  repository.EmployeeRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// RegisterInput describes a new employee account.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.EmployeeRole
	Department string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, employees repository.EmployeeRepository) *AuthService {
	return &AuthService{
		employees:  employees,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates an employee account. Only admins may register others.
func (s *AuthService) Register(ctx context.Context, actor *domain.Employee, input RegisterInput) (*domain.Employee, error) {
	if actor == nil || actor.Role != domain.EmployeeRoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if strings.TrimSpace(input.Name) == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email are required", nil)
	}
	if err := auth.CheckPasswordPolicy(input.Password); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	role := input.Role
	if role == "" {
		role = domain.EmployeeRoleEmployee
	}
	switch role {
	case domain.EmployeeRoleEmployee, domain.EmployeeRoleManager, domain.EmployeeRoleAdmin:
	default:
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}

	if _, err := s.employees.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	employee := &domain.Employee{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Department:   input.Department,
		Active:       true,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, apperrors.MapError(err)
	}
	return employee, nil
}

// Login authenticates an employee and returns a role-bearing token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Employee, string, time.Time, error) {
	employee, err := s.employees.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if !employee.Active {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("employee inactive")
	}
	if !auth.PasswordMatches(employee.PasswordHash, password) {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(employee.ID, employee.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return employee, token, exp, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, employeeID, currentPassword, newPassword string) error {
	if err := auth.CheckPasswordPolicy(newPassword); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return lookupErr("employee", employeeID, err)
	}
	if !auth.PasswordMatches(employee.PasswordHash, currentPassword) {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	employee.PasswordHash = hash
	return apperrors.MapError(s.employees.Update(ctx, employee))
}

// Bootstrap creates the first admin when no employee with that email exists.
func (s *AuthService) Bootstrap(ctx context.Context, name, email, password string) (*domain.Employee, bool, error) {
	if existing, err := s.employees.GetByEmail(ctx, email); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, apperrors.MapError(err)
	}
	system := &domain.Employee{Role: domain.EmployeeRoleAdmin}
	employee, err := s.Register(ctx, system, RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.EmployeeRoleAdmin,
	})
	if err != nil {
		return nil, false, err
	}
	return employee, true, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
