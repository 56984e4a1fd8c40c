package service

import (
	"context"

	"github.com/noah-isme/sma-gpa-api/internal/models"
)

// StudentRepository is the key-based store for students. FindByID returns
// sql.ErrNoRows when the id is absent and Delete ignores unknown ids.
type StudentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id int) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int) error
}

// CourseRepository is the key-based store for courses.
type CourseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, code string) error
}
