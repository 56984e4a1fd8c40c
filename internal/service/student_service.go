package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gpa-api/internal/models"
	appErrors "github.com/noah-isme/sma-gpa-api/pkg/errors"
)

// CreateStudentRequest captures fields for registering a student.
type CreateStudentRequest struct {
	ID    int    `json:"id" validate:"required,gt=0"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,contains=@"`
}

// UpdateEmailRequest replaces a student's email.
type UpdateEmailRequest struct {
	Email string `json:"email" validate:"required,contains=@"`
}

// StudentService handles student registration, lookup and search.
type StudentService struct {
	repo      StudentRepository
	locks     *KeyLocker
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService creates a student service. locks and cache may be nil.
func NewStudentService(repo StudentRepository, locks *KeyLocker, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if locks == nil {
		locks = NewKeyLocker()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, locks: locks, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// AddStudent registers a new student stamped with the current date.
func (s *StudentService) AddStudent(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	unlock := s.locks.Lock(studentKey(req.ID))
	defer unlock()

	if _, err := s.repo.FindByID(ctx, req.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student id already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student id")
	}

	student := models.NewStudent(req.ID, req.Name, req.Email, s.now().UTC())
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.cache.InvalidateGPA(ctx)
	return student, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id int) (*models.Student, error) {
	return loadStudent(ctx, s.repo, id)
}

// ListSorted returns every student ordered by name. Equal names keep repository order.
func (s *StudentService) ListSorted(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	sortByName(students)
	return students, nil
}

// Search returns students whose name or email contains term, ignoring case.
// A blank term returns every student in repository order. Surrounding whitespace
// in a non-blank term is part of the match.
func (s *StudentService) Search(ctx context.Context, term string) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if strings.TrimSpace(term) == "" {
		return students, nil
	}

	needle := strings.ToLower(term)
	matches := make([]models.Student, 0, len(students))
	for _, student := range students {
		if strings.Contains(strings.ToLower(student.Name), needle) || strings.Contains(strings.ToLower(student.Email), needle) {
			matches = append(matches, student)
		}
	}
	return matches, nil
}

// UpdateEmail replaces the student's email.
func (s *StudentService) UpdateEmail(ctx context.Context, id int, req UpdateEmailRequest) (*models.Student, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid email payload")
	}

	unlock := s.locks.Lock(studentKey(id))
	defer unlock()

	student, err := loadStudent(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	student.UpdateEmail(req.Email)
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Remove deletes the student together with its enrollments. Unknown ids are ignored.
func (s *StudentService) Remove(ctx context.Context, id int) error {
	unlock := s.locks.Lock(studentKey(id))
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.cache.InvalidateGPA(ctx)
	return nil
}

func loadStudent(ctx context.Context, repo StudentRepository, id int) (*models.Student, error) {
	student, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

func sortByName(students []models.Student) {
	sort.SliceStable(students, func(i, j int) bool {
		return students[i].Name < students[j].Name
	})
}
