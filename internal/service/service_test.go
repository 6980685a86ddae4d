package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"course-manager/internal/auth"
	"course-manager/internal/cache"
	"course-manager/internal/model"
	"course-manager/internal/repository"
	"course-manager/pkg/apierror"
)

type testEnv struct {
	users   *repository.MemoryUserRepository
	courses *repository.MemoryCourseRepository
	redis   *miniredis.Miniredis
	cache   *cache.RedisCache
	tokens  *auth.TokenIssuer
	hasher  *auth.PasswordHasher

	auth      *AuthService
	userSvc   *UserService
	courseSvc *CourseService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		users:   repository.NewMemoryUserRepository(),
		courses: repository.NewMemoryCourseRepository(),
		redis:   mr,
		cache:   cache.NewRedisCache(client, "test", time.Minute),
		tokens:  tokens,
		hasher:  auth.NewPasswordHasher(bcrypt.MinCost),
	}
	env.auth = NewAuthService(env.users, env.tokens, env.hasher, env.cache)
	env.userSvc = NewUserService(env.users, env.hasher, env.cache)
	env.courseSvc = NewCourseService(env.courses, env.cache)
	return env
}

func (e *testEnv) register(t *testing.T, username string) model.AuthResult {
	t.Helper()

	result, err := e.auth.Register(context.Background(), model.RegisterRequest{
		FullName: "User " + username,
		Email:    username + "@example.com",
		Username: username,
		Password: "secret-" + username,
	})
	require.NoError(t, err)
	return result
}

func assertKind(t *testing.T, err error, kind apierror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apierror.KindOf(err), "unexpected error: %v", err)
}
