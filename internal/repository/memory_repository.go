package repository

import (
	"context"
	"database/sql"
	"sync"

	"github.com/noah-isme/sma-gpa-api/internal/models"
)

// MemoryStudentRepository keeps students in process memory. Values are copied on
// the way in and out, so callers must Update to persist a mutation. Create does
// not reject duplicate ids.
type MemoryStudentRepository struct {
	mu       sync.RWMutex
	students []models.Student
}

// NewMemoryStudentRepository constructs an empty in-memory student store.
func NewMemoryStudentRepository() *MemoryStudentRepository {
	return &MemoryStudentRepository{}
}

// List returns copies of all students in insertion order.
func (r *MemoryStudentRepository) List(ctx context.Context) ([]models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]models.Student, 0, len(r.students))
	for i := range r.students {
		result = append(result, *r.students[i].Clone())
	}
	return result, nil
}

// FindByID returns a copy of the first student with the id or sql.ErrNoRows.
func (r *MemoryStudentRepository) FindByID(ctx context.Context, id int) (*models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.students {
		if r.students[i].ID == id {
			return r.students[i].Clone(), nil
		}
	}
	return nil, sql.ErrNoRows
}

// Create appends a copy of the student.
func (r *MemoryStudentRepository) Create(ctx context.Context, student *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students = append(r.students, *student.Clone())
	return nil
}

// Update replaces the stored copy of the first student with the same id.
func (r *MemoryStudentRepository) Update(ctx context.Context, student *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.students {
		if r.students[i].ID == student.ID {
			r.students[i] = *student.Clone()
			return nil
		}
	}
	return nil
}

// Delete removes every student with the id.
func (r *MemoryStudentRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.students[:0]
	for _, s := range r.students {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	r.students = kept
	return nil
}

// MemoryCourseRepository keeps courses in process memory with copy semantics.
type MemoryCourseRepository struct {
	mu      sync.RWMutex
	courses []models.Course
}

// NewMemoryCourseRepository constructs an empty in-memory course store.
func NewMemoryCourseRepository() *MemoryCourseRepository {
	return &MemoryCourseRepository{}
}

// List returns copies of all courses in insertion order.
func (r *MemoryCourseRepository) List(ctx context.Context) ([]models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]models.Course, len(r.courses))
	copy(result, r.courses)
	return result, nil
}

// FindByCode returns a copy of the first course with the code or sql.ErrNoRows.
func (r *MemoryCourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.courses {
		if c.Code == code {
			course := c
			return &course, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Create appends a copy of the course.
func (r *MemoryCourseRepository) Create(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses = append(r.courses, *course)
	return nil
}

// Update replaces the stored copy of the first course with the same code.
func (r *MemoryCourseRepository) Update(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.courses {
		if r.courses[i].Code == course.Code {
			r.courses[i] = *course
			return nil
		}
	}
	return nil
}

// Delete removes every course with the code.
func (r *MemoryCourseRepository) Delete(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.courses[:0]
	for _, c := range r.courses {
		if c.Code != code {
			kept = append(kept, c)
		}
	}
	r.courses = kept
	return nil
}
