package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/portal-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 15)

	token, expires, err := tm.GenerateToken("emp-1", domain.EmployeeRoleManager)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expires, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", claims.Subject)
	assert.Equal(t, domain.EmployeeRoleManager, claims.Role)
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	token, _, err := NewTokenManager("a", 5).GenerateToken("emp-1", domain.EmployeeRoleEmployee)
	require.NoError(t, err)

	_, err = NewTokenManager("b", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := tm.GenerateToken("emp-1", domain.EmployeeRoleEmployee)
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.True(t, PasswordMatches(hashed, "hunter22"))
	assert.False(t, PasswordMatches(hashed, "wrong"))
	assert.False(t, PasswordMatches("not-a-hash", "hunter22"))
}

func TestPasswordPolicy(t *testing.T) {
	assert.ErrorIs(t, CheckPasswordPolicy("short"), ErrPasswordTooShort)
	assert.ErrorIs(t, CheckPasswordPolicy(strings.Repeat("x", 73)), ErrPasswordTooLong)
	assert.NoError(t, CheckPasswordPolicy("long enough"))
}
