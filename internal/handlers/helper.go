package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextUsernameKey = "username"

// currentUsername returns the authenticated username set by AuthMiddleware.
func currentUsername(c *gin.Context) string {
	return c.GetString(contextUsernameKey)
}

func ParseStringParam(c *gin.Context, param string) string {
	value := strings.TrimSpace(c.Param(param))
	if value == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: param + " cannot be empty",
			Code:    CodeValidation,
		})
		return ""
	}
	return value
}

// bindJSON decodes the request body, answering 400 on failure.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
			Code:    CodeValidation,
		})
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
