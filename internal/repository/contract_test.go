package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-manager/internal/model"
)

type userStore interface {
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

type courseStore interface {
	FindByID(ctx context.Context, id int64) (model.Course, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c model.Course) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Course, error)
}

func runUserStoreContract(t *testing.T, repo userStore) {
	t.Helper()
	ctx := context.Background()

	ada := &model.User{FullName: "Ada Lovelace", Email: "ada@example.com", Username: "ada", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, ada))
	require.NotZero(t, ada.ID)
	assert.Equal(t, model.RoleEmployee, ada.Role, "role defaults to employee")

	grace := &model.User{FullName: "Grace Hopper", Email: "grace@example.com", Username: "grace", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, grace))

	t.Run("unique email and username", func(t *testing.T) {
		dupEmail := &model.User{FullName: "x", Email: "ada@example.com", Username: "other", PasswordHash: "h"}
		assert.ErrorIs(t, repo.Create(ctx, dupEmail), model.ErrDuplicate)

		dupUsername := &model.User{FullName: "x", Email: "other@example.com", Username: "ada", PasswordHash: "h"}
		assert.ErrorIs(t, repo.Create(ctx, dupUsername), model.ErrDuplicate)
	})

	t.Run("find by login", func(t *testing.T) {
		byUsername, err := repo.FindByLogin(ctx, "ada", "")
		require.NoError(t, err)
		assert.Equal(t, ada.ID, byUsername.ID)

		byEmail, err := repo.FindByLogin(ctx, "", "grace@example.com")
		require.NoError(t, err)
		assert.Equal(t, grace.ID, byEmail.ID)

		_, err = repo.FindByLogin(ctx, "", "")
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})

	t.Run("exists excludes self", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, "ada@example.com", ada.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsByUsername(ctx, "ada", grace.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("refresh token is replaced and cleared", func(t *testing.T) {
		first := "token-a"
		second := "token-b"

		require.NoError(t, repo.SetRefreshToken(ctx, ada.ID, &first))
		found, err := repo.FindByRefreshToken(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, ada.ID, found.ID)

		require.NoError(t, repo.SetRefreshToken(ctx, ada.ID, &second))
		_, err = repo.FindByRefreshToken(ctx, first)
		assert.ErrorIs(t, err, model.ErrUserNotFound)

		require.NoError(t, repo.SetRefreshToken(ctx, ada.ID, nil))
		_, err = repo.FindByRefreshToken(ctx, second)
		assert.ErrorIs(t, err, model.ErrUserNotFound)

		stored, err := repo.FindByID(ctx, ada.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.RefreshToken)
	})

	t.Run("update profile and role", func(t *testing.T) {
		updated := *ada
		updated.FullName = "Augusta Ada King"
		require.NoError(t, repo.UpdateProfile(ctx, updated))
		require.NoError(t, repo.UpdateRole(ctx, ada.ID, model.RoleSuperAdmin))

		stored, err := repo.FindByID(ctx, ada.ID)
		require.NoError(t, err)
		assert.Equal(t, "Augusta Ada King", stored.FullName)
		assert.Equal(t, model.RoleSuperAdmin, stored.Role)

		clash := *grace
		clash.Email = "ada@example.com"
		assert.ErrorIs(t, repo.UpdateProfile(ctx, clash), model.ErrDuplicate)

		assert.ErrorIs(t, repo.UpdateRole(ctx, 999999, model.RoleEmployee), model.ErrUserNotFound)
	})

	t.Run("list is ordered and delete removes", func(t *testing.T) {
		users, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, ada.ID, users[0].ID)
		assert.Equal(t, grace.ID, users[1].ID)

		require.NoError(t, repo.Delete(ctx, grace.ID))
		assert.ErrorIs(t, repo.Delete(ctx, grace.ID), model.ErrUserNotFound)

		_, err = repo.FindByID(ctx, grace.ID)
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})
}

func runCourseStoreContract(t *testing.T, repo courseStore) {
	t.Helper()
	ctx := context.Background()

	goCourse := &model.Course{Name: "Go", Description: "intro", Category: "dev", Price: 100, Level: model.CourseLevelEasy}
	require.NoError(t, repo.Create(ctx, goCourse))
	require.NotZero(t, goCourse.ID)

	rust := &model.Course{Name: "Rust", Category: "dev", Price: 200, Level: model.CourseLevelHard}
	require.NoError(t, repo.Create(ctx, rust))

	assert.ErrorIs(t, repo.Create(ctx, &model.Course{Name: "Go", Category: "dev", Level: model.CourseLevelEasy}), model.ErrDuplicate)

	taken, err := repo.ExistsByName(ctx, "Go", goCourse.ID)
	require.NoError(t, err)
	assert.False(t, taken)
	taken, err = repo.ExistsByName(ctx, "Go", rust.ID)
	require.NoError(t, err)
	assert.True(t, taken)

	updated := *goCourse
	updated.Price = 150
	updated.Level = model.CourseLevelMedium
	require.NoError(t, repo.Update(ctx, updated))

	stored, err := repo.FindByID(ctx, goCourse.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), stored.Price)
	assert.Equal(t, model.CourseLevelMedium, stored.Level)

	clash := *rust
	clash.Name = "Go"
	assert.ErrorIs(t, repo.Update(ctx, clash), model.ErrDuplicate)

	courses, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, goCourse.ID, courses[0].ID)

	require.NoError(t, repo.Delete(ctx, rust.ID))
	assert.ErrorIs(t, repo.Delete(ctx, rust.ID), model.ErrCourseNotFound)
	_, err = repo.FindByID(ctx, rust.ID)
	assert.ErrorIs(t, err, model.ErrCourseNotFound)
}

func TestMemoryUserRepository(t *testing.T) {
	t.Parallel()
	runUserStoreContract(t, NewMemoryUserRepository())
}

func TestMemoryCourseRepository(t *testing.T) {
	t.Parallel()
	runCourseStoreContract(t, NewMemoryCourseRepository())
}
