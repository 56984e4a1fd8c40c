package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-gpa-api/internal/service"
)

func TestMetricsRecordsRouteTemplates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()

	r := gin.New()
	r.Use(Metrics(metrics, "/metrics"))
	r.GET("/students/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	for _, path := range []string{"/students/1", "/students/2", "/nowhere", "/metrics"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	body := w.Body.String()

	assert.Contains(t, body, `http_requests_total{method="GET",path="/students/:id",status="200"} 2`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="unmatched",status="404"} 1`)
	assert.NotContains(t, body, `path="/metrics"`)
}
