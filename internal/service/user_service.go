package service

import (
	"context"
	"errors"
	"fmt"

	"course-manager/internal/cache"
	"course-manager/internal/model"
	"course-manager/pkg/apierror"
)

type UserService struct {
	users  UserStore
	hasher PasswordHasher
	cache  cache.Cache
}

func NewUserService(users UserStore, hasher PasswordHasher, c cache.Cache) *UserService {
	return &UserService{users: users, hasher: hasher, cache: c}
}

func (s *UserService) List(ctx context.Context) ([]model.PublicUser, error) {
	users, err := cache.GetOrLoad(ctx, s.cache, cache.KeyUsersList, func(ctx context.Context) ([]model.PublicUser, error) {
		stored, err := s.users.List(ctx)
		if err != nil {
			return nil, err
		}
		public := make([]model.PublicUser, 0, len(stored))
		for _, u := range stored {
			public = append(public, u.Public())
		}
		return public, nil
	})
	if err != nil {
		return nil, fail("users.list", err, "something went wrong while getting all users")
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (model.PublicUser, error) {
	user, err := cache.GetOrLoad(ctx, s.cache, cache.UserKey(id), func(ctx context.Context) (model.PublicUser, error) {
		stored, err := s.users.FindByID(ctx, id)
		if err != nil {
			return model.PublicUser{}, err
		}
		return stored.Public(), nil
	})
	if err != nil {
		return model.PublicUser{}, fail("users.get", userNotFound(err, fmt.Sprintf("couldn't find user with id #%d", id)),
			"something went wrong while getting user")
	}
	return user, nil
}

// Update applies the non-empty fields of req. Email and username stay unique
// across all other users; keeping one's own value is not a conflict.
func (s *UserService) Update(ctx context.Context, id int64, req model.UpdateUserRequest) (model.PublicUser, error) {
	const op = "users.update"

	req.Normalize()
	if field := req.Validate(); field != "" {
		return model.PublicUser{}, apierror.BadRequest("invalid user data", field)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, fail(op, userNotFound(err, fmt.Sprintf("couldn't find user with id #%d", id)),
			"something went wrong while updating user")
	}

	if err := ensureUniqueUser(ctx, s.users, req.Email, req.Username, id); err != nil {
		return model.PublicUser{}, fail(op, err, "something went wrong while updating user")
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return model.PublicUser{}, fail(op, err, "something went wrong while updating user")
		}
		user.PasswordHash = hash
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			err = apierror.Conflict("user with this email or username already exists", "")
		}
		return model.PublicUser{}, fail(op, userNotFound(err, fmt.Sprintf("couldn't find user with id #%d", id)),
			"something went wrong while updating user")
	}
	cache.Invalidate(ctx, s.cache, cache.UserKey(id), cache.KeyUsersList)

	return user.Public(), nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fail("users.delete", userNotFound(err, fmt.Sprintf("couldn't find user with id #%d", id)),
			"something went wrong while deleting user")
	}
	cache.Invalidate(ctx, s.cache, cache.UserKey(id), cache.KeyUsersList)
	return nil
}
