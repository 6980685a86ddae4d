package model

import "errors"

var (
	// Store errors, translated to API kinds by the services.
	ErrUserNotFound   = errors.New("user not found")
	ErrCourseNotFound = errors.New("course not found")
	ErrDuplicate      = errors.New("duplicate value")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
)
