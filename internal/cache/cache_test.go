package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisCache(client, "test", ttl)
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	mr, c := newTestCache(t, 0)
	ctx := context.Background()

	var dest []course
	require.ErrorIs(t, c.Get(ctx, KeyCourses, &dest), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, KeyCourses, []course{{ID: 1, Name: "Go"}}))
	assert.True(t, mr.Exists("test:courses"), "keys are namespaced by prefix")

	require.NoError(t, c.Get(ctx, KeyCourses, &dest))
	assert.Equal(t, []course{{ID: 1, Name: "Go"}}, dest)

	require.NoError(t, c.Delete(ctx, KeyCourses, "never-set"))
	assert.ErrorIs(t, c.Get(ctx, KeyCourses, &dest), ErrCacheMiss)
	require.NoError(t, c.Delete(ctx))
}

func TestRedisCache_TTL(t *testing.T) {
	mr, c := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, UserKey(7), course{ID: 7}))
	assert.Equal(t, time.Minute, mr.TTL("test:user-7"))

	mr.FastForward(2 * time.Minute)

	var dest course
	assert.ErrorIs(t, c.Get(ctx, UserKey(7), &dest), ErrCacheMiss)
}

func TestGetOrLoad(t *testing.T) {
	_, c := newTestCache(t, 0)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) ([]course, error) {
		calls++
		return []course{{ID: int64(calls), Name: "Go"}}, nil
	}

	first, err := GetOrLoad(ctx, c, KeyCourses, loader)
	require.NoError(t, err)
	second, err := GetOrLoad(ctx, c, KeyCourses, loader)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second read is served from cache")
	assert.Equal(t, first, second)

	Invalidate(ctx, c, KeyCourses)

	third, err := GetOrLoad(ctx, c, KeyCourses, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(2), third[0].ID)
}

func TestGetOrLoad_LoaderErrorIsNotCached(t *testing.T) {
	mr, c := newTestCache(t, 0)
	ctx := context.Background()

	loadErr := errors.New("store unavailable")
	_, err := GetOrLoad(ctx, c, UserKey(1), func(context.Context) (course, error) {
		return course{}, loadErr
	})

	assert.ErrorIs(t, err, loadErr)
	assert.False(t, mr.Exists("test:user-1"))
}

func TestGetOrLoad_BackendOutageFallsThroughToLoader(t *testing.T) {
	ctx := context.Background()
	backendErr := errors.New("connection refused")

	m := &MockCache{}
	m.On("Get", ctx, KeyUsersList, mock.Anything).Return(backendErr)
	m.On("Set", ctx, KeyUsersList, mock.Anything).Return(backendErr)

	users, err := GetOrLoad(ctx, Cache(m), KeyUsersList, func(context.Context) ([]course, error) {
		return []course{{ID: 1}}, nil
	})

	require.NoError(t, err)
	assert.Len(t, users, 1)
	m.AssertExpectations(t)
}

func TestInvalidateSwallowsBackendErrors(t *testing.T) {
	ctx := context.Background()

	m := &MockCache{}
	m.On("Delete", ctx, []string{UserKey(3), KeyUsersList}).Return(errors.New("timeout"))

	assert.NotPanics(t, func() { Invalidate(ctx, m, UserKey(3), KeyUsersList) })
	m.AssertExpectations(t)
}
