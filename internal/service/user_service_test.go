package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-manager/internal/cache"
	"course-manager/internal/model"
	"course-manager/pkg/apierror"
)

func TestUserService_ListIsCached(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "ada")

	users, err := env.userSvc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, env.redis.Exists("test:"+cache.KeyUsersList))

	// Written behind the service's back, so only a cache hit hides it.
	require.NoError(t, env.users.Create(ctx, &model.User{
		FullName: "Hidden", Email: "hidden@example.com", Username: "hidden", PasswordHash: "h",
	}))

	users, err = env.userSvc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserService_GetCachesSingleUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ada := env.register(t, "ada")

	user, err := env.userSvc.Get(ctx, ada.User.ID)
	require.NoError(t, err)
	assert.Equal(t, ada.User, user)
	assert.True(t, env.redis.Exists("test:"+cache.UserKey(ada.User.ID)))

	_, err = env.userSvc.Get(ctx, 9999)
	assertKind(t, err, apierror.KindNotFound)
	assert.False(t, env.redis.Exists("test:"+cache.UserKey(9999)), "misses are not cached")
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ada := env.register(t, "ada")
	env.register(t, "grace")

	t.Run("conflict with another user", func(t *testing.T) {
		_, err := env.userSvc.Update(ctx, ada.User.ID, model.UpdateUserRequest{Email: "grace@example.com"})
		assertKind(t, err, apierror.KindConflict)

		_, err = env.userSvc.Update(ctx, ada.User.ID, model.UpdateUserRequest{Username: "grace"})
		assertKind(t, err, apierror.KindConflict)
	})

	t.Run("keeping own values is not a conflict", func(t *testing.T) {
		_, err := env.userSvc.Update(ctx, ada.User.ID, model.UpdateUserRequest{
			Email:    "ada@example.com",
			Username: "ada",
		})
		assert.NoError(t, err)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := env.userSvc.Update(ctx, ada.User.ID, model.UpdateUserRequest{Email: "nope"})
		assertKind(t, err, apierror.KindBadRequest)
	})

	t.Run("overlong password", func(t *testing.T) {
		_, err := env.userSvc.Update(ctx, ada.User.ID, model.UpdateUserRequest{Password: strings.Repeat("p", 73)})
		assertKind(t, err, apierror.KindBadRequest)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.userSvc.Update(ctx, 9999, model.UpdateUserRequest{FullName: "x"})
		assertKind(t, err, apierror.KindNotFound)
	})

	t.Run("drops single and list entries", func(t *testing.T) {
		_, err := env.userSvc.Get(ctx, ada.User.ID)
		require.NoError(t, err)
		_, err = env.userSvc.List(ctx)
		require.NoError(t, err)

		updated, err := env.userSvc.Update(ctx, ada.User.ID, model.UpdateUserRequest{FullName: "Augusta Ada King"})
		require.NoError(t, err)
		assert.Equal(t, "Augusta Ada King", updated.FullName)
		assert.Equal(t, "ada@example.com", updated.Email)

		user, err := env.userSvc.Get(ctx, ada.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "Augusta Ada King", user.FullName)

		users, err := env.userSvc.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "Augusta Ada King", users[0].FullName)
	})

	t.Run("password change applies to login", func(t *testing.T) {
		_, err := env.userSvc.Update(ctx, ada.User.ID, model.UpdateUserRequest{Password: "rotated"})
		require.NoError(t, err)

		_, err = env.auth.Login(ctx, model.LoginRequest{Username: "ada", Password: "secret-ada"})
		assertKind(t, err, apierror.KindUnauthorized)

		_, err = env.auth.Login(ctx, model.LoginRequest{Username: "ada", Password: "rotated"})
		assert.NoError(t, err)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ada := env.register(t, "ada")

	_, err := env.userSvc.Get(ctx, ada.User.ID)
	require.NoError(t, err)
	_, err = env.userSvc.List(ctx)
	require.NoError(t, err)

	require.NoError(t, env.userSvc.Delete(ctx, ada.User.ID))

	_, err = env.userSvc.Get(ctx, ada.User.ID)
	assertKind(t, err, apierror.KindNotFound)

	users, err := env.userSvc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	assertKind(t, env.userSvc.Delete(ctx, ada.User.ID), apierror.KindNotFound)
}
