package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"course-manager/internal/cache"
	"course-manager/internal/model"
	"course-manager/pkg/apierror"
)

// CourseService serves the catalogue. The full list is cached under a single
// key which every write drops.
type CourseService struct {
	courses CourseStore
	cache   cache.Cache
}

func NewCourseService(courses CourseStore, c cache.Cache) *CourseService {
	return &CourseService{courses: courses, cache: c}
}

func (s *CourseService) List(ctx context.Context) ([]model.Course, error) {
	courses, err := cache.GetOrLoad(ctx, s.cache, cache.KeyCourses, s.courses.List)
	if err != nil {
		return nil, fail("courses.list", err, "something went wrong while getting all courses")
	}
	return courses, nil
}

func (s *CourseService) Get(ctx context.Context, id int64) (model.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return model.Course{}, fail("courses.get", courseNotFound(err, id), "something went wrong while getting course")
	}
	return course, nil
}

func (s *CourseService) Create(ctx context.Context, req model.CreateCourseRequest) (model.Course, error) {
	const op = "courses.create"

	if field := req.Validate(); field != "" {
		return model.Course{}, apierror.BadRequest("invalid course data", field)
	}

	course := model.Course{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		Price:       req.Price,
		Level:       req.Level,
	}

	if err := s.ensureUniqueName(ctx, course.Name, 0); err != nil {
		return model.Course{}, fail(op, err, "something went wrong while creating course")
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			err = nameConflict(course.Name)
		}
		return model.Course{}, fail(op, err, "something went wrong while creating course")
	}
	cache.Invalidate(ctx, s.cache, cache.KeyCourses)

	return course, nil
}

func (s *CourseService) Update(ctx context.Context, id int64, req model.UpdateCourseRequest) (model.Course, error) {
	const op = "courses.update"

	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return model.Course{}, fail(op, courseNotFound(err, id), "something went wrong while updating course")
	}

	if field := req.Validate(); field != "" {
		return model.Course{}, apierror.BadRequest("invalid course data", field)
	}

	req.Apply(&course)
	if err := s.ensureUniqueName(ctx, course.Name, id); err != nil {
		return model.Course{}, fail(op, err, "something went wrong while updating course")
	}

	if err := s.courses.Update(ctx, course); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			err = nameConflict(course.Name)
		}
		return model.Course{}, fail(op, courseNotFound(err, id), "something went wrong while updating course")
	}
	cache.Invalidate(ctx, s.cache, cache.KeyCourses)

	return s.Get(ctx, id)
}

func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		return fail("courses.delete", courseNotFound(err, id), "something went wrong while deleting course")
	}
	cache.Invalidate(ctx, s.cache, cache.KeyCourses)
	return nil
}

func (s *CourseService) ensureUniqueName(ctx context.Context, name string, excludeID int64) error {
	taken, err := s.courses.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return nameConflict(name)
	}
	return nil
}

func nameConflict(name string) error {
	return apierror.Conflict(fmt.Sprintf("course with name %s already exists", name), name)
}

func courseNotFound(err error, id int64) error {
	if errors.Is(err, model.ErrCourseNotFound) {
		return apierror.NotFound(fmt.Sprintf("couldn't find course with id #%d", id), "")
	}
	return err
}
