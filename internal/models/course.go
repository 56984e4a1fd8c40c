package models

// Course represents a unit of study worth a number of credits.
type Course struct {
	Code       string `db:"code" json:"code"`
	Name       string `db:"name" json:"name"`
	Credits    int    `db:"credits" json:"credits"`
	Instructor string `db:"instructor" json:"instructor"`
}

// NewCourse builds a course.
func NewCourse(code, name string, credits int, instructor string) *Course {
	return &Course{Code: code, Name: name, Credits: credits, Instructor: instructor}
}

// UpdateCredits applies only positive values; anything else is ignored without error.
func (c *Course) UpdateCredits(credits int) {
	if credits > 0 {
		c.Credits = credits
	}
}

// UpdateInstructor replaces the instructor unconditionally.
func (c *Course) UpdateInstructor(instructor string) {
	c.Instructor = instructor
}

// CourseFilter holds the optional course search criteria. A course matches when
// either present criterion matches.
type CourseFilter struct {
	Instructor *string
	Credits    *int
}
