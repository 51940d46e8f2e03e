package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opsboard/backend/internal/testhelpers"
	"github.com/opsboard/backend/internal/types"
)

func newTestAuthService(t *testing.T) *AuthService {
	db := testhelpers.SetupTestDB(t)
	return NewAuthService(db, "test-jwt-secret", zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	req := &types.RegisterRequest{
		Name:     "Jordan Blake",
		Email:    "jordan@example.com",
		Password: "super-secret-pw",
		Username: "jordanb",
		JobTitle: "Kitchen Lead",
	}

	user, token, err := svc.Register(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "staff", user.Role)
	assert.NotEqual(t, "super-secret-pw", user.PasswordHash)

	profile, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "jordanb", profile.Username)
	assert.Equal(t, "Kitchen Lead", profile.JobTitle)

	loggedIn, loginToken, err := svc.Login(ctx, "jordan@example.com", "super-secret-pw")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	req := &types.RegisterRequest{
		Name:     "Jordan Blake",
		Email:    "jordan@example.com",
		Password: "super-secret-pw",
		Username: "jordanb",
	}
	_, _, err := svc.Register(ctx, req)
	require.NoError(t, err)

	req.Username = "jordanb2"
	_, _, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, &types.RegisterRequest{
		Name:     "Jordan Blake",
		Email:    "jordan@example.com",
		Password: "super-secret-pw",
		Username: "jordanb",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "jordan@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "super-secret-pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, &types.RegisterRequest{
		Name:     "Jordan Blake",
		Email:    "jordan@example.com",
		Password: "super-secret-pw",
		Username: "jordanb",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "jordanb", claims.Username)
	assert.Equal(t, "staff", claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, token, err := svc.Register(ctx, &types.RegisterRequest{
		Name:     "Jordan Blake",
		Email:    "jordan@example.com",
		Password: "super-secret-pw",
		Username: "jordanb",
	})
	require.NoError(t, err)

	other := NewAuthService(nil, "different-secret", zap.NewNop())
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
