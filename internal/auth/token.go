package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"course-manager/internal/model"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID   int64
	Role     model.Role
	Email    string
	Username string
	Type     string
	TokenID  string
}

// TokenIssuer signs and verifies HS256 token pairs. Refresh tokens carry no
// expiry: the refresh token stored on the user row is their only authority.
type TokenIssuer struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewTokenIssuer builds an issuer. An accessTTL of zero produces access tokens
// without an exp claim.
func NewTokenIssuer(secret string, accessTTL time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if accessTTL < 0 {
		accessTTL = 0
	}

	return &TokenIssuer{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (i *TokenIssuer) IssuePair(user model.User) (model.TokenPair, error) {
	now := i.now()

	accessClaims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"role":  string(user.Role),
		"email": user.Email,
		"typ":   TokenTypeAccess,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
	}
	if i.accessTTL > 0 {
		accessClaims["exp"] = now.Add(i.accessTTL).Unix()
	}

	accessToken, err := i.sign(accessClaims)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := i.sign(jwt.MapClaims{
		"sub":      strconv.FormatInt(user.ID, 10),
		"role":     string(user.Role),
		"username": user.Username,
		"typ":      TokenTypeRefresh,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
	})
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Verify checks the signature and the token type. Every failure is reported as
// model.ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string, expectedType string) (*Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, model.ErrInvalidToken
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrInvalidToken
	}

	claims := &Claims{}
	claims.Type, _ = claimsMap["typ"].(string)
	if expectedType != "" && claims.Type != expectedType {
		return nil, model.ErrInvalidToken
	}

	sub, _ := claimsMap["sub"].(string)
	claims.UserID, err = strconv.ParseInt(sub, 10, 64)
	if err != nil || claims.UserID <= 0 {
		return nil, model.ErrInvalidToken
	}

	role, _ := claimsMap["role"].(string)
	claims.Role = model.Role(role)
	claims.Email, _ = claimsMap["email"].(string)
	claims.Username, _ = claimsMap["username"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)

	return claims, nil
}

func (i *TokenIssuer) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}
