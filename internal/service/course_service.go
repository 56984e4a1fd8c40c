package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gpa-api/internal/models"
	appErrors "github.com/noah-isme/sma-gpa-api/pkg/errors"
)

// CreateCourseRequest captures fields for creating a course.
type CreateCourseRequest struct {
	Code       string `json:"code" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Credits    int    `json:"credits" validate:"gt=0"`
	Instructor string `json:"instructor"`
}

// UpdateCourseRequest changes credits and/or instructor. Absent fields are left
// as they are and non-positive credits are ignored.
type UpdateCourseRequest struct {
	Credits    *int    `json:"credits"`
	Instructor *string `json:"instructor"`
}

// DefaultCourses are seeded into an empty catalogue when seeding is enabled.
var DefaultCourses = []models.Course{
	{Code: "CS101", Name: "Intro to C#", Credits: 3, Instructor: "Dr. Smith"},
	{Code: "MATH200", Name: "Calculus I", Credits: 4, Instructor: "Prof. Jones"},
}

// CourseService manages the course catalogue.
type CourseService struct {
	repo      CourseRepository
	locks     *KeyLocker
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService creates a course service. locks and cache may be nil.
func NewCourseService(repo CourseRepository, locks *KeyLocker, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if locks == nil {
		locks = NewKeyLocker()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, locks: locks, cache: cache, validator: validate, logger: logger}
}

// Add creates a course ensuring code uniqueness.
func (s *CourseService) Add(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	unlock := s.locks.Lock(courseKey(req.Code))
	defer unlock()

	if _, err := s.repo.FindByCode(ctx, req.Code); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}

	course := models.NewCourse(req.Code, req.Name, req.Credits, req.Instructor)
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.cache.InvalidateGPA(ctx)
	return course, nil
}

// Get returns a course by code.
func (s *CourseService) Get(ctx context.Context, code string) (*models.Course, error) {
	return loadCourse(ctx, s.repo, code)
}

// List returns every course in repository order.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Search returns courses matching either criterion: the instructor contains the
// given text ignoring case, or the credits are equal. An absent criterion never
// matches, so an empty filter returns nothing.
func (s *CourseService) Search(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	courses, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var needle string
	if filter.Instructor != nil {
		needle = strings.ToLower(*filter.Instructor)
	}
	matches := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		byInstructor := filter.Instructor != nil && strings.Contains(strings.ToLower(course.Instructor), needle)
		byCredits := filter.Credits != nil && course.Credits == *filter.Credits
		if byInstructor || byCredits {
			matches = append(matches, course)
		}
	}
	return matches, nil
}

// Update changes credits and/or instructor of a course.
func (s *CourseService) Update(ctx context.Context, code string, req UpdateCourseRequest) (*models.Course, error) {
	if req.Credits == nil && req.Instructor == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "credits or instructor is required")
	}

	unlock := s.locks.Lock(courseKey(code))
	defer unlock()

	course, err := loadCourse(ctx, s.repo, code)
	if err != nil {
		return nil, err
	}
	if req.Credits != nil {
		course.UpdateCredits(*req.Credits)
	}
	if req.Instructor != nil {
		course.UpdateInstructor(*req.Instructor)
	}
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	if req.Credits != nil {
		s.cache.InvalidateGPA(ctx)
	}
	return course, nil
}

// Remove deletes the course record only. Enrollments that reference it are
// left in place; see GradingService.RemoveCourseFromAllStudents.
func (s *CourseService) Remove(ctx context.Context, code string) error {
	unlock := s.locks.Lock(courseKey(code))
	defer unlock()

	if err := s.repo.Delete(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.cache.InvalidateGPA(ctx)
	return nil
}

// SeedDefaults creates each of DefaultCourses that is not yet present and
// returns how many were inserted.
func (s *CourseService) SeedDefaults(ctx context.Context) (int, error) {
	seeded := 0
	for _, course := range DefaultCourses {
		_, err := s.Add(ctx, CreateCourseRequest{Code: course.Code, Name: course.Name, Credits: course.Credits, Instructor: course.Instructor})
		switch {
		case err == nil:
			seeded++
		case errors.Is(err, appErrors.ErrConflict):
		default:
			return seeded, err
		}
	}
	s.logger.Info("default courses seeded", zap.Int("inserted", seeded))
	return seeded, nil
}

func loadCourse(ctx context.Context, repo CourseRepository, code string) (*models.Course, error) {
	course, err := repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}
