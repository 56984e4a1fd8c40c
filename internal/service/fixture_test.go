package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gpa-api/internal/models"
	"github.com/noah-isme/sma-gpa-api/internal/repository"
)

type fixture struct {
	studentRepo *repository.MemoryStudentRepository
	courseRepo  *repository.MemoryCourseRepository
	students    *StudentService
	courses     *CourseService
	grading     *GradingService
	reports     *ReportService
	metrics     *MetricsService
}

func newFixture(t *testing.T, cache *CacheService) *fixture {
	t.Helper()
	studentRepo := repository.NewMemoryStudentRepository()
	courseRepo := repository.NewMemoryCourseRepository()
	locks := NewKeyLocker()
	metrics := NewMetricsService()
	logger := zap.NewNop()

	f := &fixture{
		studentRepo: studentRepo,
		courseRepo:  courseRepo,
		students:    NewStudentService(studentRepo, locks, cache, nil, logger),
		courses:     NewCourseService(courseRepo, locks, cache, nil, logger),
		grading:     NewGradingService(studentRepo, courseRepo, locks, cache, metrics, logger),
		reports:     NewReportService(studentRepo, courseRepo, nil, nil, logger),
		metrics:     metrics,
	}
	fixed := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	f.students.now = func() time.Time { return fixed }
	f.reports.now = func() time.Time { return fixed }
	return f
}

func newRedisCacheService(t *testing.T) *CacheService {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := repository.NewCacheRepository(client, "test:", zap.NewNop())
	return NewCacheService(repo, NewMetricsService(), time.Minute, zap.NewNop(), true)
}

func (f *fixture) addStudent(t *testing.T, id int, name, email string) {
	t.Helper()
	_, err := f.students.AddStudent(context.Background(), CreateStudentRequest{ID: id, Name: name, Email: email})
	require.NoError(t, err)
}

func (f *fixture) addCourse(t *testing.T, code string, credits int, instructor string) {
	t.Helper()
	_, err := f.courses.Add(context.Background(), CreateCourseRequest{Code: code, Name: code + " course", Credits: credits, Instructor: instructor})
	require.NoError(t, err)
}

func (f *fixture) grade(t *testing.T, id int, code string, grade float64) {
	t.Helper()
	ctx := context.Background()
	_, err := f.grading.Enroll(ctx, id, code)
	require.NoError(t, err)
	_, err = f.grading.AssignGrade(ctx, id, code, grade)
	require.NoError(t, err)
}

func studentIDs(students []models.Student) []int {
	ids := make([]int, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	return ids
}

func courseCodes(courses []models.Course) []string {
	codes := make([]string, 0, len(courses))
	for _, c := range courses {
		codes = append(codes, c.Code)
	}
	return codes
}
