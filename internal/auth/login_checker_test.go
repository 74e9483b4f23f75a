package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginChecker_LoggedInUser(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache()
	loginChecker := NewLoginChecker(cache)
	require.NotNil(t, loginChecker)

	_, err := loginChecker.LoggedInUser(ctx, "unknown token")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = loginChecker.LoggedInUser(ctx, "unknown token")
	assert.ErrorIs(t, err, ErrNotLoggedIn) // idempotent

	// empty tokens never resolve to a session
	_, err = loginChecker.LoggedInUser(ctx, "")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	authService := NewAuthService(time.Hour, cache)
	token, err := authService.Login(ctx, "johndoe")
	require.NoError(t, err)

	username, err := loginChecker.LoggedInUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "johndoe", username)
	username, err = loginChecker.LoggedInUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "johndoe", username) // idempotent
}

func TestLoginChecker_IsLogged(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache()
	loginChecker := NewLoginChecker(cache)

	isLogged, err := loginChecker.IsLogged(ctx, "unknown token")
	require.NoError(t, err)
	assert.False(t, isLogged)

	authService := NewAuthService(time.Hour, cache)
	token, err := authService.Login(ctx, "janedoe")
	require.NoError(t, err)

	isLogged, err = loginChecker.IsLogged(ctx, token)
	require.NoError(t, err)
	assert.True(t, isLogged)
}

func TestLoginTestChecker(t *testing.T) {
	ctx := context.Background()
	checker := NewLoginTestChecker()
	checker.LoggedSessions["tokeny"] = "johndoe"

	username, err := checker.LoggedInUser(ctx, "tokeny")
	require.NoError(t, err)
	assert.Equal(t, "johndoe", username)

	_, err = checker.LoggedInUser(ctx, "other")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	isLogged, err := checker.IsLogged(ctx, "tokeny")
	require.NoError(t, err)
	assert.True(t, isLogged)
	isLogged, err = checker.IsLogged(ctx, "other")
	require.NoError(t, err)
	assert.False(t, isLogged)
}
