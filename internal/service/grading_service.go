package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gpa-api/internal/models"
	appErrors "github.com/noah-isme/sma-gpa-api/pkg/errors"
)

// GradingService owns enrollments, grades and GPA aggregation.
type GradingService struct {
	students StudentRepository
	courses  CourseRepository
	locks    *KeyLocker
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewGradingService wires the grading workflows. locks, cache and metrics may be nil.
func NewGradingService(students StudentRepository, courses CourseRepository, locks *KeyLocker, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *GradingService {
	if locks == nil {
		locks = NewKeyLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradingService{students: students, courses: courses, locks: locks, cache: cache, metrics: metrics, logger: logger}
}

// Enroll registers the student in the course with an ungraded enrollment.
func (s *GradingService) Enroll(ctx context.Context, studentID int, courseCode string) (*models.Enrollment, error) {
	unlock := s.locks.Lock(studentKey(studentID))
	defer unlock()

	student, err := loadStudent(ctx, s.students, studentID)
	if err != nil {
		return nil, err
	}
	if _, err := loadCourse(ctx, s.courses, courseCode); err != nil {
		return nil, err
	}
	if _, enrolled := student.Enrollment(courseCode); enrolled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled in course")
	}

	enrollment := models.NewEnrollment(studentID, courseCode)
	student.AddEnrollment(enrollment)
	if err := s.students.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save enrollment")
	}
	s.metrics.IncEnrollments()
	s.cache.InvalidateGPA(ctx)
	return &enrollment, nil
}

// AssignGrade sets the grade of an existing enrollment. An out-of-range grade
// leaves the stored grade untouched.
func (s *GradingService) AssignGrade(ctx context.Context, studentID int, courseCode string, grade float64) (*models.Enrollment, error) {
	unlock := s.locks.Lock(studentKey(studentID))
	defer unlock()

	student, err := loadStudent(ctx, s.students, studentID)
	if err != nil {
		return nil, err
	}
	enrollment, ok := student.Enrollment(courseCode)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	if err := enrollment.AssignGrade(grade); err != nil {
		s.metrics.RecordGradeAssignment("out_of_range")
		return nil, err
	}
	if err := s.students.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save grade")
	}
	s.metrics.RecordGradeAssignment("ok")
	s.cache.InvalidateGPA(ctx)

	result := *enrollment
	return &result, nil
}

// CalculateGPA returns the credit weighted GPA of a student. Unknown students
// and students without resolvable enrollments score 0.
func (s *GradingService) CalculateGPA(ctx context.Context, studentID int) (float64, error) {
	var cached models.StudentGPA
	if hit, _ := s.cache.Get(ctx, studentGPAKey(studentID), &cached); hit {
		return cached.GPA, nil
	}
	generation := s.cache.Generation()

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	var lookupErr error
	gpa := weightedGPA(student.Enrollments, func(code string) (models.Course, bool) {
		course, err := s.courses.FindByCode(ctx, code)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				lookupErr = multierr.Append(lookupErr, err)
			}
			return models.Course{}, false
		}
		return *course, true
	})
	if lookupErr != nil {
		return 0, appErrors.Wrap(lookupErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}

	_, _ = s.cache.SetIfCurrent(ctx, generation, studentGPAKey(studentID), models.StudentGPA{StudentID: studentID, GPA: gpa}, 0)
	return gpa, nil
}

// SchoolAverageGPA is the unweighted mean of every student's GPA, 0 with no students.
func (s *GradingService) SchoolAverageGPA(ctx context.Context) (models.SchoolGPA, error) {
	var cached models.SchoolGPA
	if hit, _ := s.cache.Get(ctx, schoolGPAKey, &cached); hit {
		return cached, nil
	}
	generation := s.cache.Generation()

	students, err := s.students.List(ctx)
	if err != nil {
		return models.SchoolGPA{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	courses, err := s.courses.List(ctx)
	if err != nil {
		return models.SchoolGPA{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	lookup := indexLookup(courseIndex(courses))
	gpas := make([]float64, 0, len(students))
	for _, student := range students {
		gpas = append(gpas, weightedGPA(student.Enrollments, lookup))
	}

	result := models.SchoolGPA{StudentCount: len(students), AverageGPA: mean(gpas)}
	_, _ = s.cache.SetIfCurrent(ctx, generation, schoolGPAKey, result, 0)
	return result, nil
}

// RemoveCourseFromAllStudents drops every enrollment for the course code and
// reports how many students were changed. The course record itself is kept.
// A failure on one student does not stop the sweep; all failures are returned together.
func (s *GradingService) RemoveCourseFromAllStudents(ctx context.Context, courseCode string) (int, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	var errs error
	affected, removed := 0, 0
	for _, listed := range students {
		if _, enrolled := listed.Enrollment(courseCode); !enrolled {
			continue
		}
		n, err := s.dropEnrollments(ctx, listed.ID, courseCode)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("student %d: %w", listed.ID, err))
			continue
		}
		if n > 0 {
			affected++
			removed += n
		}
	}

	s.metrics.AddCascadeRemovals(removed)
	if affected > 0 {
		s.cache.InvalidateGPA(ctx)
	}
	if errs != nil {
		s.logger.Warn("course cascade incomplete", zap.String("course_code", courseCode), zap.Int("failed", len(multierr.Errors(errs))))
		return affected, appErrors.Wrap(errs, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove course from all students")
	}
	return affected, nil
}

func (s *GradingService) dropEnrollments(ctx context.Context, studentID int, courseCode string) (int, error) {
	unlock := s.locks.Lock(studentKey(studentID))
	defer unlock()

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	n := student.RemoveEnrollments(courseCode)
	if n == 0 {
		return 0, nil
	}
	if err := s.students.Update(ctx, student); err != nil {
		return 0, err
	}
	return n, nil
}

// Transcript lists the student's enrollments with course details and the GPA.
func (s *GradingService) Transcript(ctx context.Context, studentID int) (*models.Transcript, error) {
	student, err := loadStudent(ctx, s.students, studentID)
	if err != nil {
		return nil, err
	}
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	index := courseIndex(courses)

	transcript := &models.Transcript{
		StudentID:   student.ID,
		StudentName: student.Name,
		Lines:       make([]models.TranscriptLine, 0, len(student.Enrollments)),
		GPA:         weightedGPA(student.Enrollments, indexLookup(index)),
	}
	for _, e := range student.Enrollments {
		line := models.TranscriptLine{CourseCode: e.CourseCode, Grade: e.Grade}
		if course, ok := index[e.CourseCode]; ok {
			line.CourseName = course.Name
			line.Credits = course.Credits
			line.Resolved = true
			transcript.TotalCredits += course.Credits
		}
		transcript.Lines = append(transcript.Lines, line)
	}
	return transcript, nil
}

func indexLookup(index map[string]models.Course) func(string) (models.Course, bool) {
	return func(code string) (models.Course, bool) {
		course, ok := index[code]
		return course, ok
	}
}
