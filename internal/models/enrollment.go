package models

import (
	"fmt"

	appErrors "github.com/noah-isme/sma-gpa-api/pkg/errors"
)

// Grade bounds, inclusive.
const (
	MinGrade = 0.0
	MaxGrade = 10.0
)

// Enrollment captures a student's registration in a course. The course is
// referenced by code only and may no longer exist.
type Enrollment struct {
	StudentID  int     `db:"student_id" json:"student_id"`
	CourseCode string  `db:"course_code" json:"course_code"`
	Grade      float64 `db:"grade" json:"grade"`
}

// NewEnrollment creates an ungraded enrollment.
func NewEnrollment(studentID int, courseCode string) Enrollment {
	return Enrollment{StudentID: studentID, CourseCode: courseCode, Grade: MinGrade}
}

// AssignGrade sets the grade when it lies in [MinGrade, MaxGrade]. Otherwise the
// previous grade is kept and an out-of-range error is returned.
func (e *Enrollment) AssignGrade(grade float64) error {
	if !(grade >= MinGrade && grade <= MaxGrade) {
		return appErrors.Clone(appErrors.ErrOutOfRange, fmt.Sprintf("grade must be between %.1f and %.1f", MinGrade, MaxGrade))
	}
	e.Grade = grade
	return nil
}
