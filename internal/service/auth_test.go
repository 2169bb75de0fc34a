package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majidsaddiqye/reciperemix/internal/service"
	"github.com/majidsaddiqye/reciperemix/internal/testhelpers"
	apperrors "github.com/majidsaddiqye/reciperemix/pkg/errors"
)

func setupAuth(t *testing.T) *service.AuthService {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	return service.NewAuthService(db, "test-secret")
}

func TestRegister(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	t.Run("creates a user and never exposes the password", func(t *testing.T) {
		user, err := svc.Register(ctx, "Chef", "chef@example.com", "password123", []string{"vegan"})
		require.NoError(t, err)
		assert.Equal(t, "chef", user.Username)
		assert.Equal(t, "chef@example.com", user.Email)
		assert.Equal(t, []string{"vegan"}, []string(user.DietaryPreferences))

		payload, err := json.Marshal(user)
		require.NoError(t, err)
		assert.NotContains(t, string(payload), "password")
		assert.NotContains(t, string(payload), user.PasswordHash)
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "otherchef", "chef@example.com", "password123", nil)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeDuplicateUser, apperrors.CodeOf(err))
	})

	t.Run("rejects a duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, "chef", "new@example.com", "password123", nil)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeDuplicateUser, apperrors.CodeOf(err))
	})

	t.Run("succeeds with distinct username and email", func(t *testing.T) {
		user, err := svc.Register(ctx, "baker", "baker@example.com", "password123", nil)
		require.NoError(t, err)
		assert.Equal(t, "baker", user.Username)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		_, err := svc.Register(ctx, "", "empty@example.com", "password123", nil)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
	})
}

func TestLogin(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "chef", "chef@example.com", "password123", nil)
	require.NoError(t, err)

	t.Run("succeeds with valid credentials", func(t *testing.T) {
		user, err := svc.Login(ctx, "chef@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "chef", user.Username)
	})

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		_, wrongPass := svc.Login(ctx, "chef@example.com", "nope")
		_, unknownEmail := svc.Login(ctx, "ghost@example.com", "password123")

		require.Error(t, wrongPass)
		require.Error(t, unknownEmail)
		assert.Equal(t, apperrors.CodeInvalidCredentials, apperrors.CodeOf(wrongPass))
		assert.Equal(t, apperrors.CodeInvalidCredentials, apperrors.CodeOf(unknownEmail))
		assert.Equal(t, wrongPass.Error(), unknownEmail.Error())
	})
}

func TestTokenRoundTrip(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "chef", "chef@example.com", "password123", nil)
	require.NoError(t, err)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "chef", claims.Username)

	t.Run("rejects a tampered token", func(t *testing.T) {
		_, err := svc.ValidateToken(token + "x")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
	})
}

func TestUpdateDietaryPreferences(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "chef", "chef@example.com", "password123", []string{"vegan"})
	require.NoError(t, err)

	t.Run("replaces the list wholesale", func(t *testing.T) {
		updated, err := svc.UpdateDietaryPreferences(ctx, user.ID, []string{"halal", "nut-free"})
		require.NoError(t, err)
		assert.Equal(t, []string{"halal", "nut-free"}, []string(updated.DietaryPreferences))

		reloaded, err := svc.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"halal", "nut-free"}, []string(reloaded.DietaryPreferences))
	})

	t.Run("nil input fails validation and leaves preferences unchanged", func(t *testing.T) {
		_, err := svc.UpdateDietaryPreferences(ctx, user.ID, nil)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

		reloaded, err := svc.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"halal", "nut-free"}, []string(reloaded.DietaryPreferences))
	})

	t.Run("empty list is valid", func(t *testing.T) {
		updated, err := svc.UpdateDietaryPreferences(ctx, user.ID, []string{})
		require.NoError(t, err)
		assert.Empty(t, updated.DietaryPreferences)
	})
}
