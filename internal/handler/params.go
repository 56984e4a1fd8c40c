package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sma-gpa-api/pkg/errors"
)

func studentIDParam(c *gin.Context) (int, error) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "student id must be a positive integer")
	}
	return id, nil
}

func courseCodeParam(c *gin.Context) string {
	return strings.TrimSpace(c.Param("code"))
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}
