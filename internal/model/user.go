package model

import "time"

type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleEmployee   Role = "employee"
)

func (r Role) Valid() bool {
	return r == RoleSuperAdmin || r == RoleEmployee
}

type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	RefreshToken *string   `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the projection of a user that is safe to return and cache.
type PublicUser struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		FullName: u.FullName,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthResult struct {
	User   PublicUser `json:"user"`
	Tokens TokenPair  `json:"-"`
}

// Identity is the verified caller attached to a request by the auth middleware.
type Identity struct {
	UserID int64
	Email  string
	Role   Role
}
