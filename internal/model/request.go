package model

import (
	"net/mail"
	"strings"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
}

// Validate returns the name of the first invalid field, or "" when the
// request is acceptable.
func (r RegisterRequest) Validate() string {
	switch {
	case r.FullName == "":
		return "full_name"
	case r.Email == "" || !validEmail(r.Email):
		return "email"
	case r.Username == "":
		return "username"
	case r.Password == "" || len(r.Password) > MaxPasswordBytes:
		return "password"
	}
	return ""
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateRoleRequest struct {
	Role Role `json:"role"`
}

type UpdateUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *UpdateUserRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
}

func (r UpdateUserRequest) Validate() string {
	if r.Email != "" && !validEmail(r.Email) {
		return "email"
	}
	if len(r.Password) > MaxPasswordBytes {
		return "password"
	}
	return ""
}

type CreateCourseRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Price       int64       `json:"price"`
	Level       CourseLevel `json:"level"`
}

func (r CreateCourseRequest) Validate() string {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return "name"
	case strings.TrimSpace(r.Category) == "":
		return "category"
	case r.Price < 0:
		return "price"
	case !r.Level.Valid():
		return "level"
	}
	return ""
}

// UpdateCourseRequest is a partial update; nil fields are left unchanged.
type UpdateCourseRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Category    *string      `json:"category"`
	Price       *int64       `json:"price"`
	Level       *CourseLevel `json:"level"`
}

func (r UpdateCourseRequest) Validate() string {
	switch {
	case r.Name != nil && strings.TrimSpace(*r.Name) == "":
		return "name"
	case r.Category != nil && strings.TrimSpace(*r.Category) == "":
		return "category"
	case r.Price != nil && *r.Price < 0:
		return "price"
	case r.Level != nil && !r.Level.Valid():
		return "level"
	}
	return ""
}

func (r UpdateCourseRequest) Apply(c *Course) {
	if r.Name != nil {
		c.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		c.Description = *r.Description
	}
	if r.Category != nil {
		c.Category = strings.TrimSpace(*r.Category)
	}
	if r.Price != nil {
		c.Price = *r.Price
	}
	if r.Level != nil {
		c.Level = *r.Level
	}
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
