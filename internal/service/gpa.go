package service

import "github.com/noah-isme/sma-gpa-api/internal/models"

// courseIndex maps course codes to courses, keeping the first entry per code.
func courseIndex(courses []models.Course) map[string]models.Course {
	index := make(map[string]models.Course, len(courses))
	for _, c := range courses {
		if _, seen := index[c.Code]; !seen {
			index[c.Code] = c
		}
	}
	return index
}

// weightedGPA is the credit weighted mean grade over enrollments whose course
// resolves through lookup. Unresolved enrollments count towards neither sum.
func weightedGPA(enrollments []models.Enrollment, lookup func(code string) (models.Course, bool)) float64 {
	var weighted float64
	var credits int
	for _, e := range enrollments {
		course, ok := lookup(e.CourseCode)
		if !ok {
			continue
		}
		weighted += e.Grade * float64(course.Credits)
		credits += course.Credits
	}
	if credits == 0 {
		return 0
	}
	return weighted / float64(credits)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
