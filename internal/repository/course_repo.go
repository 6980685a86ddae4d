package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"course-manager/internal/model"
)

const courseColumns = `id, name, description, category, price, level, created_at, updated_at`

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func scanCourse(row pgx.Row) (model.Course, error) {
	var c model.Course
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.Price, &c.Level, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *CourseRepository) FindByID(ctx context.Context, id int64) (model.Course, error) {
	c, err := scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Course{}, model.ErrCourseNotFound
	}
	if err != nil {
		return model.Course{}, fmt.Errorf("find course by id: %w", err)
	}
	return c, nil
}

// ExistsByName reports whether a course other than excludeID is called name.
func (r *CourseRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM courses WHERE name = $1 AND id <> $2)`,
		name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check course name exists: %w", err)
	}
	return exists, nil
}

func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO courses (name, description, category, price, level)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Description, c.Category, c.Price, c.Level).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return translateWriteError("create course", err)
	}
	return nil
}

func (r *CourseRepository) Update(ctx context.Context, c model.Course) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses SET name = $2, description = $3, category = $4, price = $5, level = $6, updated_at = $7
		 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.Category, c.Price, c.Level, time.Now().UTC())
	if err != nil {
		return translateWriteError("update course", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	courses := make([]model.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}
