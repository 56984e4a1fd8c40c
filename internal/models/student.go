package models

import "time"

// Student represents a learner registered in the school together with the
// enrollments it owns.
type Student struct {
	ID             int          `db:"id" json:"id"`
	Name           string       `db:"name" json:"name"`
	Email          string       `db:"email" json:"email"`
	EnrollmentDate time.Time    `db:"enrollment_date" json:"enrollment_date"`
	Enrollments    []Enrollment `db:"-" json:"enrollments"`
}

// NewStudent builds a student without enrollments.
func NewStudent(id int, name, email string, enrolledAt time.Time) *Student {
	return &Student{ID: id, Name: name, Email: email, EnrollmentDate: enrolledAt, Enrollments: []Enrollment{}}
}

// UpdateEmail replaces the email unconditionally. Format checks belong to the caller.
func (s *Student) UpdateEmail(email string) {
	s.Email = email
}

// AddEnrollment appends an enrollment. It does not check for duplicate course codes.
func (s *Student) AddEnrollment(e Enrollment) {
	s.Enrollments = append(s.Enrollments, e)
}

// Enrollment returns the first enrollment for the course code. The pointer
// addresses the student's own slice so mutations stick to the student.
func (s *Student) Enrollment(courseCode string) (*Enrollment, bool) {
	for i := range s.Enrollments {
		if s.Enrollments[i].CourseCode == courseCode {
			return &s.Enrollments[i], true
		}
	}
	return nil, false
}

// RemoveEnrollments drops every enrollment for the course code and reports how many were removed.
func (s *Student) RemoveEnrollments(courseCode string) int {
	kept := s.Enrollments[:0]
	removed := 0
	for _, e := range s.Enrollments {
		if e.CourseCode == courseCode {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.Enrollments = kept
	return removed
}

// Clone returns a deep copy of the student.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Enrollments = make([]Enrollment, len(s.Enrollments))
	copy(clone.Enrollments, s.Enrollments)
	return &clone
}
