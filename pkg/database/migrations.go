package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is portable between PostgreSQL and SQLite. Enrollments carry no foreign
// key to courses, so deleting a course leaves its code behind.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS students (
        id INTEGER PRIMARY KEY,
        name TEXT NOT NULL,
        email TEXT NOT NULL,
        enrollment_date TIMESTAMP NOT NULL,
        created_at TIMESTAMP NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS courses (
        code TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        credits INTEGER NOT NULL CHECK (credits > 0),
        instructor TEXT NOT NULL,
        created_at TIMESTAMP NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS enrollments (
        student_id INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
        course_code TEXT NOT NULL,
        grade DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (grade >= 0 AND grade <= 10),
        position INTEGER NOT NULL,
        PRIMARY KEY (student_id, course_code)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_enrollments_course_code ON enrollments (course_code)`,
}

// Migrate creates the tables used by the SQL repositories when missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}
