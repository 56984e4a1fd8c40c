package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gpa-api/internal/repository"
	"github.com/noah-isme/sma-gpa-api/internal/service"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

type testAPI struct {
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	studentRepo := repository.NewMemoryStudentRepository()
	courseRepo := repository.NewMemoryCourseRepository()
	locks := service.NewKeyLocker()

	students := service.NewStudentService(studentRepo, locks, nil, nil, nil)
	courses := service.NewCourseService(courseRepo, locks, nil, nil, nil)
	grading := service.NewGradingService(studentRepo, courseRepo, locks, nil, nil, nil)
	reports := service.NewReportService(studentRepo, courseRepo, nil, nil, nil)

	_, err := courses.SeedDefaults(context.Background())
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), Handlers{
		Students: NewStudentHandler(students, grading),
		Courses:  NewCourseHandler(courses, grading),
		Reports:  NewReportHandler(grading, reports),
	})
	return &testAPI{router: r}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestStudentLifecycle(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(t, http.MethodPost, "/students", gin.H{"id": 1, "name": "Alice", "email": "alice@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := api.do(t, http.MethodPost, "/students", gin.H{"id": 1, "name": "Alice", "email": "alice@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	w, _ = api.do(t, http.MethodPost, "/students", gin.H{"id": 2, "name": "Bob", "email": "bob.example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(t, http.MethodPatch, "/students/1/email", gin.H{"email": "alice@school.org"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = api.do(t, http.MethodGet, "/students/search?q=SCHOOL", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Meta["count"])

	w, _ = api.do(t, http.MethodGet, "/students/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(t, http.MethodDelete, "/students/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env = api.do(t, http.MethodGet, "/students/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestEnrollAndGPA(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/students", gin.H{"id": 7, "name": "Alice", "email": "alice@example.com"})

	w, _ := api.do(t, http.MethodPost, "/students/7/enrollments", gin.H{"course_code": "CS101", "grade": 8})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := api.do(t, http.MethodPost, "/students/7/enrollments", gin.H{"course_code": "CS101"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	w, _ = api.do(t, http.MethodPost, "/students/7/enrollments", gin.H{"course_code": "MATH200"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = api.do(t, http.MethodPut, "/students/7/enrollments/MATH200/grade", gin.H{"grade": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(t, http.MethodPut, "/students/7/enrollments/PHY100/grade", gin.H{"grade": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(t, http.MethodPut, "/students/7/enrollments/MATH200/grade", gin.H{"grade": 6})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = api.do(t, http.MethodGet, "/students/7/gpa", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var gpa struct {
		GPA float64 `json:"gpa"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &gpa))
	assert.InDelta(t, 48.0/7.0, gpa.GPA, 1e-9)

	w, env = api.do(t, http.MethodGet, "/gpa/school", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var school struct {
		StudentCount int     `json:"student_count"`
		AverageGPA   float64 `json:"average_gpa"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &school))
	assert.Equal(t, 1, school.StudentCount)
	assert.InDelta(t, 48.0/7.0, school.AverageGPA, 1e-9)
}

func TestEnrollTrimsCourseCode(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/students", gin.H{"id": 3, "name": "Carol", "email": "carol@example.com"})

	w, env := api.do(t, http.MethodPost, "/students/3/enrollments", gin.H{"course_code": " CS101 ", "grade": 7})
	require.Equal(t, http.StatusCreated, w.Code)
	var enrollment struct {
		CourseCode string `json:"course_code"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &enrollment))
	assert.Equal(t, "CS101", enrollment.CourseCode)

	w, _ = api.do(t, http.MethodPut, "/students/3/enrollments/CS101/grade", gin.H{"grade": 9})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCourseDeleteCascades(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/students", gin.H{"id": 1, "name": "Alice", "email": "alice@example.com"})
	api.do(t, http.MethodPost, "/students/1/enrollments", gin.H{"course_code": "CS101", "grade": 9})

	w, env := api.do(t, http.MethodDelete, "/courses/CS101", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		StudentsUpdated int `json:"students_updated"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.StudentsUpdated)

	w, _ = api.do(t, http.MethodGet, "/courses/CS101", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = api.do(t, http.MethodGet, "/students/1/transcript", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var transcript struct {
		Lines []interface{} `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &transcript))
	assert.Empty(t, transcript.Lines)
}

func TestCourseSearchAndUpdate(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(t, http.MethodGet, "/courses/search?instructor=smith&credits=4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, env.Meta["count"])

	w, env = api.do(t, http.MethodGet, "/courses/search", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, env.Meta["count"])

	w, _ = api.do(t, http.MethodGet, "/courses/search?credits=four", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(t, http.MethodPatch, "/courses/CS101", gin.H{"instructor": "Dr. Adams", "credits": 5})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = api.do(t, http.MethodGet, "/courses/search?credits=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Meta["count"])
}

func TestGPARosterFormats(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/students", gin.H{"id": 1, "name": "Alice", "email": "alice@example.com"})

	w, _ := api.do(t, http.MethodGet, "/reports/gpa", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(t, http.MethodGet, "/reports/gpa?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "gpa-roster-")
	assert.Contains(t, w.Body.String(), "1,Alice,alice@example.com,0,0.00")

	w, _ = api.do(t, http.MethodGet, "/reports/gpa?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
