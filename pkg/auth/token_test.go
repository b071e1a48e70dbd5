package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	companyID := uint(3)

	token, expiresAt, err := m.Generate(7, "alice", "EMPLOYEE", &companyID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "EMPLOYEE", claims.Role)
	require.NotNil(t, claims.CompanyID)
	assert.Equal(t, uint(3), *claims.CompanyID)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", time.Hour).Generate(1, "bob", "EMPLOYEE", nil)
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := m.Generate(1, "bob", "EMPLOYEE", nil)
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
