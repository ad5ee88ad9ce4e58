package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACService_RoundTrip(t *testing.T) {
	svc := NewHMACService("test-secret", time.Hour)
	id := uuid.New()

	token, err := svc.GenerateAccessToken(id, RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, id.String(), claims.Subject)
}

func TestHMACService_Expired(t *testing.T) {
	svc := NewHMACService("test-secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateAccessToken(uuid.New(), RoleVolunteer)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestHMACService_RejectsOtherSecret(t *testing.T) {
	token, err := NewHMACService("one", time.Hour).GenerateAccessToken(uuid.New(), RoleVolunteer)
	require.NoError(t, err)

	_, err = NewHMACService("two", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHMACService_GenerateRequiresRoleAndSecret(t *testing.T) {
	_, err := NewHMACService("", time.Hour).GenerateAccessToken(uuid.New(), RoleAdmin)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = NewHMACService("s", time.Hour).GenerateAccessToken(uuid.New(), Role("root"))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
