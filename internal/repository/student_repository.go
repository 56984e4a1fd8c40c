package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gpa-api/internal/models"
)

// StudentRepository persists students and their embedded enrollments in SQL.
// Queries are written with ? placeholders and rebound for the active driver.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student in creation order with enrollments attached.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT id, name, email, enrollment_date FROM students ORDER BY created_at, id`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, r.db.Rebind(query)); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	const enrollmentQuery = `SELECT student_id, course_code, grade FROM enrollments ORDER BY student_id, position`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, r.db.Rebind(enrollmentQuery)); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	byStudent := make(map[int][]models.Enrollment, len(students))
	for _, e := range enrollments {
		byStudent[e.StudentID] = append(byStudent[e.StudentID], e)
	}
	for i := range students {
		students[i].Enrollments = byStudent[students[i].ID]
		if students[i].Enrollments == nil {
			students[i].Enrollments = []models.Enrollment{}
		}
	}
	return students, nil
}

// FindByID fetches a student by id. It returns sql.ErrNoRows when absent.
func (r *StudentRepository) FindByID(ctx context.Context, id int) (*models.Student, error) {
	const query = `SELECT id, name, email, enrollment_date FROM students WHERE id = ?`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, r.db.Rebind(query), id); err != nil {
		return nil, err
	}

	const enrollmentQuery = `SELECT student_id, course_code, grade FROM enrollments WHERE student_id = ? ORDER BY position`
	enrollments := []models.Enrollment{}
	if err := r.db.SelectContext(ctx, &enrollments, r.db.Rebind(enrollmentQuery), id); err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	student.Enrollments = enrollments
	return &student, nil
}

// Create inserts a student together with any enrollments it already holds.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create student: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO students (id, name, email, enrollment_date, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err = tx.ExecContext(ctx, tx.Rebind(query), student.ID, student.Name, student.Email, student.EnrollmentDate, time.Now().UTC()); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	if err = insertEnrollments(ctx, tx, student); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create student: %w", err)
	}
	return nil
}

// Update rewrites the student's mutable fields and replaces its enrollment list.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update student: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE students SET name = ?, email = ? WHERE id = ?`
	if _, err = tx.ExecContext(ctx, tx.Rebind(query), student.Name, student.Email, student.ID); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if _, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM enrollments WHERE student_id = ?`), student.ID); err != nil {
		return fmt.Errorf("clear enrollments: %w", err)
	}
	if err = insertEnrollments(ctx, tx, student); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update student: %w", err)
	}
	return nil
}

// Delete removes a student and its enrollments. Unknown ids are ignored.
func (r *StudentRepository) Delete(ctx context.Context, id int) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete student: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM enrollments WHERE student_id = ?`), id); err != nil {
		return fmt.Errorf("delete enrollments: %w", err)
	}
	if _, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM students WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete student: %w", err)
	}
	return nil
}

func insertEnrollments(ctx context.Context, tx *sqlx.Tx, student *models.Student) error {
	const query = `INSERT INTO enrollments (student_id, course_code, grade, position) VALUES (?, ?, ?, ?)`
	for i, e := range student.Enrollments {
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), student.ID, e.CourseCode, e.Grade, i); err != nil {
			return fmt.Errorf("insert enrollment %s: %w", e.CourseCode, err)
		}
	}
	return nil
}
