package handler

import "github.com/gin-gonic/gin"

// Handlers groups the HTTP handlers mounted under the API prefix.
type Handlers struct {
	Students *StudentHandler
	Courses  *CourseHandler
	Reports  *ReportHandler
}

// RegisterRoutes mounts the grading API on the given group.
func RegisterRoutes(api gin.IRouter, h Handlers) {
	students := api.Group("/students")
	students.GET("", h.Students.List)
	students.GET("/search", h.Students.Search)
	students.POST("", h.Students.Create)
	students.GET("/:id", h.Students.Get)
	students.PATCH("/:id/email", h.Students.UpdateEmail)
	students.DELETE("/:id", h.Students.Delete)
	students.GET("/:id/gpa", h.Students.GPA)
	students.GET("/:id/transcript", h.Students.Transcript)
	students.POST("/:id/enrollments", h.Students.Enroll)
	students.PUT("/:id/enrollments/:code/grade", h.Students.AssignGrade)

	courses := api.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.GET("/search", h.Courses.Search)
	courses.POST("", h.Courses.Create)
	courses.GET("/:code", h.Courses.Get)
	courses.PATCH("/:code", h.Courses.Update)
	courses.DELETE("/:code", h.Courses.Delete)

	api.GET("/gpa/school", h.Reports.SchoolGPA)
	api.GET("/reports/gpa", h.Reports.GPARoster)
}
