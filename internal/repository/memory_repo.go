package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"course-manager/internal/model"
)

// MemoryUserRepository is a process-local user store with the same contract
// as UserRepository, including unique email and username.
type MemoryUserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[int64]model.User{}}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id int64) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) FindByLogin(_ context.Context, username string, email string) (model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.firstLocked(func(u model.User) bool {
		return (username != "" && u.Username == username) || (email != "" && u.Email == email)
	})
}

func (r *MemoryUserRepository) FindByRefreshToken(_ context.Context, token string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.firstLocked(func(u model.User) bool {
		return u.RefreshToken != nil && *u.RefreshToken == token
	})
}

func (r *MemoryUserRepository) ExistsByEmail(_ context.Context, email string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.firstLocked(func(u model.User) bool { return u.Email == email && u.ID != excludeID })
	return err == nil, nil
}

func (r *MemoryUserRepository) ExistsByUsername(_ context.Context, username string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.firstLocked(func(u model.User) bool { return u.Username == username && u.ID != excludeID })
	return err == nil, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflictsLocked(*u) {
		return model.ErrDuplicate
	}
	if u.Role == "" {
		u.Role = model.RoleEmployee
	}

	r.nextID++
	now := time.Now().UTC()
	u.ID = r.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = cloneUser(*u)
	return nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[u.ID]
	if !ok {
		return model.ErrUserNotFound
	}
	if r.conflictsLocked(u) {
		return model.ErrDuplicate
	}

	current.FullName = u.FullName
	current.Email = u.Email
	current.Username = u.Username
	current.PasswordHash = u.PasswordHash
	current.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = current
	return nil
}

func (r *MemoryUserRepository) UpdateRole(_ context.Context, id int64, role model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	current.Role = role
	current.UpdatedAt = time.Now().UTC()
	r.users[id] = current
	return nil
}

func (r *MemoryUserRepository) SetRefreshToken(_ context.Context, id int64, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	current.RefreshToken = cloneString(token)
	r.users[id] = current
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *MemoryUserRepository) firstLocked(match func(model.User) bool) (model.User, error) {
	var found *model.User
	for _, u := range r.users {
		if match(u) && (found == nil || u.ID < found.ID) {
			candidate := u
			found = &candidate
		}
	}
	if found == nil {
		return model.User{}, model.ErrUserNotFound
	}
	return cloneUser(*found), nil
}

func (r *MemoryUserRepository) conflictsLocked(u model.User) bool {
	for _, existing := range r.users {
		if existing.ID == u.ID {
			continue
		}
		if existing.Email == u.Email || existing.Username == u.Username {
			return true
		}
	}
	return false
}

func cloneUser(u model.User) model.User {
	u.RefreshToken = cloneString(u.RefreshToken)
	return u
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// MemoryCourseRepository is a process-local course store with unique names.
type MemoryCourseRepository struct {
	mu      sync.Mutex
	nextID  int64
	courses map[int64]model.Course
}

func NewMemoryCourseRepository() *MemoryCourseRepository {
	return &MemoryCourseRepository{courses: map[int64]model.Course{}}
}

func (r *MemoryCourseRepository) FindByID(_ context.Context, id int64) (model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.courses[id]
	if !ok {
		return model.Course{}, model.ErrCourseNotFound
	}
	return c, nil
}

func (r *MemoryCourseRepository) ExistsByName(_ context.Context, name string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.nameTakenLocked(name, excludeID), nil
}

func (r *MemoryCourseRepository) Create(_ context.Context, c *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTakenLocked(c.Name, 0) {
		return model.ErrDuplicate
	}

	r.nextID++
	now := time.Now().UTC()
	c.ID = r.nextID
	c.CreatedAt = now
	c.UpdatedAt = now
	r.courses[c.ID] = *c
	return nil
}

func (r *MemoryCourseRepository) Update(_ context.Context, c model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.courses[c.ID]
	if !ok {
		return model.ErrCourseNotFound
	}
	if r.nameTakenLocked(c.Name, c.ID) {
		return model.ErrDuplicate
	}

	c.CreatedAt = current.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	r.courses[c.ID] = c
	return nil
}

func (r *MemoryCourseRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[id]; !ok {
		return model.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *MemoryCourseRepository) List(_ context.Context) ([]model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	courses := make([]model.Course, 0, len(r.courses))
	for _, c := range r.courses {
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (r *MemoryCourseRepository) nameTakenLocked(name string, excludeID int64) bool {
	for _, c := range r.courses {
		if c.ID != excludeID && c.Name == name {
			return true
		}
	}
	return false
}
