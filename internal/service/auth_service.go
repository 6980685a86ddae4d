package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"course-manager/internal/auth"
	"course-manager/internal/cache"
	"course-manager/internal/model"
	"course-manager/pkg/apierror"
)

// AuthService owns the session lifecycle. The refresh token stored on the user
// row is the only authority for refresh validity: each issuing event replaces
// it and logout clears it.
type AuthService struct {
	users  UserStore
	tokens TokenIssuer
	hasher PasswordHasher
	cache  cache.Cache
}

func NewAuthService(users UserStore, tokens TokenIssuer, hasher PasswordHasher, c cache.Cache) *AuthService {
	return &AuthService{users: users, tokens: tokens, hasher: hasher, cache: c}
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResult, error) {
	const op = "auth.register"

	req.Normalize()
	if field := req.Validate(); field != "" {
		return model.AuthResult{}, apierror.BadRequest("invalid registration data", field)
	}

	if err := ensureUniqueUser(ctx, s.users, req.Email, req.Username, 0); err != nil {
		return model.AuthResult{}, fail(op, err, "something went wrong during user registration")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResult{}, fail(op, err, "something went wrong during user registration")
	}

	user := model.User{
		FullName:     req.FullName,
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		Role:         model.RoleEmployee,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			err = apierror.Conflict("user with this email or username already exists", "")
		}
		return model.AuthResult{}, fail(op, err, "something went wrong during user registration")
	}
	cache.Invalidate(ctx, s.cache, cache.KeyUsersList)

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return model.AuthResult{}, fail(op, err, "something went wrong during user registration")
	}

	slog.Info("user registered", "user_id", user.ID)
	return model.AuthResult{User: user.Public(), Tokens: tokens}, nil
}

// Login verifies the password before any token is issued.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResult, error) {
	const op = "auth.login"

	if strings.TrimSpace(req.Username) == "" && strings.TrimSpace(req.Email) == "" {
		return model.AuthResult{}, apierror.BadRequest("username or email is required", "username")
	}

	user, err := s.users.FindByLogin(ctx, req.Username, req.Email)
	if err != nil {
		return model.AuthResult{}, fail(op, userNotFound(err, "there is no user with these credentials"),
			"something went wrong during user logging in")
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return model.AuthResult{}, apierror.Unauthorized("invalid credentials")
	}

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return model.AuthResult{}, fail(op, err, "something went wrong during user logging in")
	}

	slog.Info("user logged in", "user_id", user.ID)
	return model.AuthResult{User: user.Public(), Tokens: tokens}, nil
}

// Refresh exchanges the stored refresh token for a new pair and rotates the
// stored value, so a refresh token is usable exactly once. Two concurrent
// refreshes with the same token may both succeed; the last write wins and the
// other pair is orphaned.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	const op = "auth.refresh"

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return model.TokenPair{}, apierror.Unauthorized("refresh token is missing")
	}

	if _, err := s.tokens.Verify(refreshToken, auth.TokenTypeRefresh); err != nil {
		return model.TokenPair{}, apierror.Unauthorized("invalid refresh token")
	}

	user, err := s.users.FindByRefreshToken(ctx, refreshToken)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, apierror.Unauthorized("invalid refresh token")
	}
	if err != nil {
		return model.TokenPair{}, fail(op, err, "something went wrong while refreshing tokens")
	}

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return model.TokenPair{}, fail(op, err, "something went wrong while refreshing tokens")
	}

	return tokens, nil
}

// UpdateRole changes the role and re-issues tokens that carry it. Access
// tokens issued before the change keep the old role until they expire.
func (s *AuthService) UpdateRole(ctx context.Context, id int64, role model.Role) (model.AuthResult, error) {
	const op = "auth.update_role"

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.AuthResult{}, fail(op, userNotFound(err, fmt.Sprintf("cannot find user with id #%d", id)),
			"something went wrong while updating user role")
	}

	if !role.Valid() {
		return model.AuthResult{}, apierror.BadRequest(fmt.Sprintf("there is no user role '%s'", role), "role")
	}

	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return model.AuthResult{}, fail(op, userNotFound(err, fmt.Sprintf("cannot find user with id #%d", id)),
			"something went wrong while updating user role")
	}
	user.Role = role
	cache.Invalidate(ctx, s.cache, cache.UserKey(id), cache.KeyUsersList)

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return model.AuthResult{}, fail(op, err, "something went wrong while updating user role")
	}

	slog.Info("user role updated", "user_id", id, "role", role)
	return model.AuthResult{User: user.Public(), Tokens: tokens}, nil
}

// Logout clears the stored refresh token. Outstanding access tokens stay
// valid until they expire.
func (s *AuthService) Logout(ctx context.Context, id int64) error {
	if err := s.users.SetRefreshToken(ctx, id, nil); err != nil {
		return fail("auth.logout", userNotFound(err, fmt.Sprintf("couldn't find user with id #%d", id)),
			"something went wrong while logging out")
	}

	slog.Info("user logged out", "user_id", id)
	return nil
}

func (s *AuthService) GetMe(ctx context.Context, id int64) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, fail("auth.me", userNotFound(err, fmt.Sprintf("cannot find user with id #%d", id)),
			"something went wrong while getting own data")
	}
	return user.Public(), nil
}

// Exists backs the authentication middleware's user lookup.
func (s *AuthService) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.users.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// VerifyAccessToken exposes the issuer to the authentication middleware.
func (s *AuthService) VerifyAccessToken(token string) (*auth.Claims, error) {
	return s.tokens.Verify(token, auth.TokenTypeAccess)
}

func (s *AuthService) issue(ctx context.Context, user model.User) (model.TokenPair, error) {
	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, &tokens.RefreshToken); err != nil {
		return model.TokenPair{}, userNotFound(err, fmt.Sprintf("cannot find user with id #%d", user.ID))
	}

	return tokens, nil
}
