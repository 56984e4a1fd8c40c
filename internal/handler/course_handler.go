package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-gpa-api/internal/models"
	"github.com/noah-isme/sma-gpa-api/internal/service"
	appErrors "github.com/noah-isme/sma-gpa-api/pkg/errors"
	"github.com/noah-isme/sma-gpa-api/pkg/response"
)

// CourseHandler handles course catalogue endpoints.
type CourseHandler struct {
	courses *service.CourseService
	grading *service.GradingService
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(courses *service.CourseService, grading *service.GradingService) *CourseHandler {
	return &CourseHandler{courses: courses, grading: grading}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, map[string]interface{}{"count": len(courses)})
}

// Search godoc
// @Summary Search courses
// @Description Returns courses whose instructor contains the text OR whose credits equal the value.
// @Tags Courses
// @Produce json
// @Param instructor query string false "Instructor substring, case-insensitive"
// @Param credits query int false "Exact credit count"
// @Success 200 {object} response.Envelope
// @Router /courses/search [get]
func (h *CourseHandler) Search(c *gin.Context) {
	var filter models.CourseFilter
	if instructor, ok := c.GetQuery("instructor"); ok {
		filter.Instructor = &instructor
	}
	if raw, ok := c.GetQuery("credits"); ok {
		credits, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "credits must be an integer"))
			return
		}
		filter.Credits = &credits
	}

	courses, err := h.courses.Search(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, map[string]interface{}{"count": len(courses)})
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	course, err := h.courses.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Get godoc
// @Summary Get course by code
// @Tags Courses
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{code} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), courseCodeParam(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Update godoc
// @Summary Update course credits and/or instructor
// @Tags Courses
// @Accept json
// @Produce json
// @Param code path string true "Course code"
// @Param payload body service.UpdateCourseRequest true "Course changes"
// @Success 200 {object} response.Envelope
// @Router /courses/{code} [patch]
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	course, err := h.courses.Update(c.Request.Context(), courseCodeParam(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete godoc
// @Summary Delete course
// @Description Drops the course from every student, then deletes the course record.
// @Tags Courses
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /courses/{code} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	code := courseCodeParam(c)

	affected, err := h.grading.RemoveCourseFromAllStudents(ctx, code)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.courses.Remove(ctx, code); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"course_code": code, "students_updated": affected})
}
