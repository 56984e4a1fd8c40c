package models

import "time"

// StudentGPA is the computed GPA of a single student.
type StudentGPA struct {
	StudentID int     `json:"student_id"`
	GPA       float64 `json:"gpa"`
}

// SchoolGPA is the mean GPA over every student.
type SchoolGPA struct {
	StudentCount int     `json:"student_count"`
	AverageGPA   float64 `json:"average_gpa"`
}

// TranscriptLine describes one enrollment on a transcript. Course details are
// empty when the course no longer resolves.
type TranscriptLine struct {
	CourseCode string  `json:"course_code"`
	CourseName string  `json:"course_name,omitempty"`
	Credits    int     `json:"credits"`
	Grade      float64 `json:"grade"`
	Resolved   bool    `json:"resolved"`
}

// Transcript lists a student's enrollments with the resulting GPA.
type Transcript struct {
	StudentID    int              `json:"student_id"`
	StudentName  string           `json:"student_name"`
	Lines        []TranscriptLine `json:"lines"`
	TotalCredits int              `json:"total_credits"`
	GPA          float64          `json:"gpa"`
}

// GPARosterRow summarises a student for the GPA roster report.
type GPARosterRow struct {
	StudentID   int     `json:"student_id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Enrollments int     `json:"enrollments"`
	GPA         float64 `json:"gpa"`
}

// GPARoster is the school-wide GPA report.
type GPARoster struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Rows        []GPARosterRow `json:"rows"`
	AverageGPA  float64        `json:"average_gpa"`
}
