package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-gpa-api/internal/models"
	"github.com/noah-isme/sma-gpa-api/internal/service"
	"github.com/noah-isme/sma-gpa-api/pkg/response"
)

// EnrollRequest enrolls a student in a course, optionally grading it straight away.
type EnrollRequest struct {
	CourseCode string   `json:"course_code" binding:"required"`
	Grade      *float64 `json:"grade" binding:"omitempty,gte=0,lte=10"`
}

// AssignGradeRequest sets the grade of an enrollment.
type AssignGradeRequest struct {
	Grade *float64 `json:"grade" binding:"required,gte=0,lte=10"`
}

// StudentHandler handles student, enrollment and per-student GPA endpoints.
type StudentHandler struct {
	students *service.StudentService
	grading  *service.GradingService
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(students *service.StudentService, grading *service.GradingService) *StudentHandler {
	return &StudentHandler{students: students, grading: grading}
}

// List godoc
// @Summary List students sorted by name
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.ListSorted(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, map[string]interface{}{"count": len(students)})
}

// Search godoc
// @Summary Search students by name or email
// @Tags Students
// @Produce json
// @Param q query string false "Case-insensitive search term"
// @Success 200 {object} response.Envelope
// @Router /students/search [get]
func (h *StudentHandler) Search(c *gin.Context) {
	students, err := h.students.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, map[string]interface{}{"count": len(students)})
}

// Create godoc
// @Summary Register student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	student, err := h.students.AddStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Get godoc
// @Summary Get student by id
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// UpdateEmail godoc
// @Summary Update student email
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body service.UpdateEmailRequest true "Email payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/email [patch]
func (h *StudentHandler) UpdateEmail(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	student, err := h.students.UpdateEmail(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Delete godoc
// @Summary Delete student and its enrollments
// @Tags Students
// @Param id path int true "Student ID"
// @Success 204
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.students.Remove(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GPA godoc
// @Summary Credit-weighted GPA of a student
// @Description Unknown students report a GPA of 0.
// @Tags GPA
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/gpa [get]
func (h *StudentHandler) GPA(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	gpa, err := h.grading.CalculateGPA(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, models.StudentGPA{StudentID: id, GPA: gpa})
}

// Transcript godoc
// @Summary Student transcript
// @Tags GPA
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/transcript [get]
func (h *StudentHandler) Transcript(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	transcript, err := h.grading.Transcript(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transcript)
}

// Enroll godoc
// @Summary Enroll student in a course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/enrollments [post]
func (h *StudentHandler) Enroll(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	req.CourseCode = strings.TrimSpace(req.CourseCode)

	ctx := c.Request.Context()
	enrollment, err := h.grading.Enroll(ctx, id, req.CourseCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	if req.Grade != nil {
		enrollment, err = h.grading.AssignGrade(ctx, id, req.CourseCode, *req.Grade)
		if err != nil {
			response.Error(c, err)
			return
		}
	}
	response.Created(c, enrollment)
}

// AssignGrade godoc
// @Summary Assign grade to an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param code path string true "Course code"
// @Param payload body AssignGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /students/{id}/enrollments/{code}/grade [put]
func (h *StudentHandler) AssignGrade(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req AssignGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	enrollment, err := h.grading.AssignGrade(c.Request.Context(), id, courseCodeParam(c), *req.Grade)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}
