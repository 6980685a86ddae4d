package service

import (
	"context"
	"errors"
	"log/slog"

	"course-manager/internal/auth"
	"course-manager/internal/model"
	"course-manager/pkg/apierror"
)

type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByLogin(ctx context.Context, username string, email string) (model.User, error)
	FindByRefreshToken(ctx context.Context, token string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error)
	Create(ctx context.Context, u *model.User) error
	UpdateProfile(ctx context.Context, u model.User) error
	UpdateRole(ctx context.Context, id int64, role model.Role) error
	SetRefreshToken(ctx context.Context, id int64, token *string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.User, error)
}

type CourseStore interface {
	FindByID(ctx context.Context, id int64) (model.Course, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c model.Course) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Course, error)
}

type TokenIssuer interface {
	IssuePair(user model.User) (model.TokenPair, error)
	Verify(token string, expectedType string) (*auth.Claims, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext string, hash string) bool
}

// fail funnels err into the API error taxonomy: classified errors pass through,
// anything else becomes an internal error carrying message.
func fail(op string, err error, message string) error {
	funneled := apierror.Funnel(err, message)
	if apierror.IsClassified(funneled) {
		slog.Warn(op+" rejected", "error", funneled)
	} else {
		slog.Error(op+" failed", "error", err)
	}
	return funneled
}

func userNotFound(err error, message string) error {
	if errors.Is(err, model.ErrUserNotFound) {
		return apierror.NotFound(message, "")
	}
	return err
}

func ensureUniqueUser(ctx context.Context, users UserStore, email string, username string, excludeID int64) error {
	if email != "" {
		taken, err := users.ExistsByEmail(ctx, email, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return apierror.Conflict("user with this email already exists", email)
		}
	}

	if username != "" {
		taken, err := users.ExistsByUsername(ctx, username, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return apierror.Conflict("user with this username already exists", username)
		}
	}

	return nil
}
