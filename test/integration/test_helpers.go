//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"course-manager/internal/auth"
	"course-manager/internal/cache"
	"course-manager/internal/config"
	"course-manager/internal/database"
	"course-manager/internal/handler"
	"course-manager/internal/middleware"
	"course-manager/internal/model"
	"course-manager/internal/repository"
	"course-manager/internal/router"
	"course-manager/internal/service"
)

type stack struct {
	server *httptest.Server
	db     *database.DB
	users  *repository.UserRepository
}

// newStack serves the full router over a PostgreSQL container and an
// in-process Redis.
func newStack(t *testing.T) *stack {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("courses"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.New(ctx, database.Options{URL: connStr, MaxConns: 8})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	redisCache := cache.NewRedisCache(client, "it", time.Minute)

	tokens, err := auth.NewTokenIssuer("integration-secret", time.Hour)
	require.NoError(t, err)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	users := repository.NewUserRepository(db.Pool)
	courses := repository.NewCourseRepository(db.Pool)

	authService := service.NewAuthService(users, tokens, hasher, redisCache)
	userService := service.NewUserService(users, hasher, redisCache)
	courseService := service.NewCourseService(courses, redisCache)

	cfg := &config.Config{
		CORSOrigins:      []string{"*"},
		RequestTimeout:   10 * time.Second,
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	server := httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth:   handler.NewAuthHandler(authService, handler.CookieOptions{}),
		User:   handler.NewUserHandler(userService, false),
		Course: handler.NewCourseHandler(courseService),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{"database": db, "cache": redisCache}),
	}))
	t.Cleanup(server.Close)

	return &stack{server: server, db: db, users: users}
}

type session struct {
	access  string
	refresh string
}

func sessionFrom(t *testing.T, resp *http.Response) session {
	t.Helper()

	var s session
	for _, c := range resp.Cookies() {
		switch c.Name {
		case middleware.AccessTokenCookie:
			s.access = c.Value
		case "refresh_token":
			s.refresh = c.Value
		}
	}
	require.NotEmpty(t, s.access)
	require.NotEmpty(t, s.refresh)
	return s
}

func (st *stack) register(t *testing.T, username string) (model.PublicUser, session) {
	t.Helper()

	resp := doRequest(t, mustNewRequest(t, http.MethodPost, st.server.URL+"/auth/register", mustJSON(t, model.RegisterRequest{
		FullName: "User " + username,
		Email:    username + "@example.com",
		Username: username,
		Password: "pw-" + username,
	})))
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data struct {
			User model.PublicUser `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))

	return parsed.Data.User, sessionFrom(t, resp)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return body
}

func newAuthRequest(t *testing.T, method string, url string, body []byte, accessToken string) *http.Request {
	t.Helper()

	req := mustNewRequest(t, method, url, body)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: accessToken})
	return req
}

func doRequest(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func doAuthRequest(t *testing.T, method string, url string, body []byte, accessToken string) *http.Response {
	t.Helper()

	resp := doRequest(t, newAuthRequest(t, method, url, body, accessToken))
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func mustNewRequest(t *testing.T, method string, url string, body []byte) *http.Request {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req
}
