package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/portal-service/internal/config"
	"github.com/spec-kit/portal-service/internal/domain"
)

func newAuthService(f *fixture) *AuthService {
	return NewAuthService(config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            4,
	}}, f.store.Employees)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newAuthService(f)

	_, err := svc.Register(ctx, f.manager, RegisterInput{Name: "Dee", Email: "dee@corp.io", Password: "password1"})
	assert.Equal(t, "FORBIDDEN", errCode(err))

	employee, err := svc.Register(ctx, f.admin, RegisterInput{Name: "Dee", Email: " Dee@Corp.io ", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "dee@corp.io", employee.Email)
	assert.Equal(t, domain.EmployeeRoleEmployee, employee.Role)
	assert.NotEqual(t, "password1", employee.PasswordHash)

	_, err = svc.Register(ctx, f.admin, RegisterInput{Name: "Dee", Email: "dee@corp.io", Password: "password1"})
	assert.Equal(t, "CONFLICT", errCode(err))

	got, token, _, err := svc.Login(ctx, "dee@corp.io", "password1")
	require.NoError(t, err)
	assert.Equal(t, employee.ID, got.ID)
	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, employee.ID, claims.Subject)

	_, _, _, err = svc.Login(ctx, "dee@corp.io", "wrong-password")
	assert.Equal(t, "UNAUTHORIZED", errCode(err))
	_, _, _, err = svc.Login(ctx, "nobody@corp.io", "password1")
	assert.Equal(t, "UNAUTHORIZED", errCode(err))
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)

	_, err := svc.Register(context.Background(), f.admin, RegisterInput{Name: "x", Email: "x@corp.io", Password: "short"})
	assert.Equal(t, "VALIDATION_FAILED", errCode(err))
	_, err = svc.Register(context.Background(), f.admin, RegisterInput{Name: "x", Email: "x@corp.io", Password: "password1", Role: "ROOT"})
	assert.Equal(t, "VALIDATION_FAILED", errCode(err))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newAuthService(f)
	employee, err := svc.Register(ctx, f.admin, RegisterInput{Name: "Eve", Email: "eve@corp.io", Password: "password1"})
	require.NoError(t, err)

	assert.Equal(t, "UNAUTHORIZED", errCode(svc.ChangePassword(ctx, employee.ID, "nope", "password2")))
	require.NoError(t, svc.ChangePassword(ctx, employee.ID, "password1", "password2"))

	_, _, _, err = svc.Login(ctx, "eve@corp.io", "password2")
	assert.NoError(t, err)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newAuthService(f)

	first, created, err := svc.Bootstrap(ctx, "Root", "root@corp.io", "password1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.EmployeeRoleAdmin, first.Role)

	second, created, err := svc.Bootstrap(ctx, "Root", "root@corp.io", "password1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}
