package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gpa-api/internal/models"
)

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new repository instance.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns all courses in creation order.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT code, name, credits, instructor FROM courses ORDER BY created_at, code`
	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, r.db.Rebind(query)); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByCode returns a course by code or sql.ErrNoRows.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	const query = `SELECT code, name, credits, instructor FROM courses WHERE code = ?`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, r.db.Rebind(query), code); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create persists a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (code, name, credits, instructor, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), course.Code, course.Name, course.Credits, course.Instructor, time.Now().UTC()); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	const query = `UPDATE courses SET name = ?, credits = ?, instructor = ? WHERE code = ?`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), course.Name, course.Credits, course.Instructor, course.Code); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course record. Enrollments referencing it are left alone.
func (r *CourseRepository) Delete(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM courses WHERE code = ?`), code); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
