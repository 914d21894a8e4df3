package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/normalizer"
	"github.com/SAP-F-2025/yds-assistant-service/internal/services"
	"github.com/SAP-F-2025/yds-assistant-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error codes returned alongside generative failures
const (
	CodeMalformedResponse = "MALFORMED_RESPONSE"
	CodeEmptyResult       = "EMPTY_RESULT"
	CodeNetworkFailure    = "NETWORK_FAILURE"
	CodeStaleResponse     = "STALE_RESPONSE"
	CodeValidation        = "VALIDATION_FAILED"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInternal          = "INTERNAL_ERROR"
)

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

func (h *BaseHandler) requestFields(c *gin.Context, additionalFields ...interface{}) []interface{} {
	fields := []interface{}{
		"request_id", utils.RequestIDFromContext(c.Request.Context()),
		"username", c.GetString(contextUsernameKey),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	return append(fields, additionalFields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.logger.LogError(err, message, h.requestFields(c, additionalFields...)...)
}

// LogInfo logs informational messages with context
func (h *BaseHandler) LogInfo(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Info(message, h.requestFields(c, additionalFields...)...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Warn(message, h.requestFields(c, additionalFields...)...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, code, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
		Code:    code,
	}

	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if statusCode >= http.StatusInternalServerError && err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "code", code)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// handleServiceError maps service errors onto HTTP responses. input is echoed
// back in the details of generative failures.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error, input ...string) {
	var echo interface{}
	if len(input) > 0 {
		echo = gin.H{"input": input[0]}
	}

	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, "Validation failed", err, validationErrors)
		return
	}

	var malformed *normalizer.MalformedResponseError
	switch {
	case errors.Is(err, context.Canceled):
		// client went away
		c.Status(499)
	case errors.Is(err, context.DeadlineExceeded):
		h.RespondWithError(c, http.StatusGatewayTimeout, CodeNetworkFailure,
			"The generative service did not answer in time, please retry", err, echo)
	case errors.As(err, &malformed):
		details := gin.H{"reason": malformed.Reason}
		if len(input) > 0 {
			details["input"] = input[0]
		}
		h.RespondWithError(c, http.StatusBadGateway, CodeMalformedResponse,
			"The model returned a response that could not be read, please retry", err, details)
	case errors.Is(err, services.ErrEmptyResult), errors.Is(err, services.ErrEmptyModelResponse):
		h.RespondWithError(c, http.StatusUnprocessableEntity, CodeEmptyResult,
			"The model found nothing usable, try a different input", err, echo)
	case errors.Is(err, services.ErrNetworkFailure):
		h.RespondWithError(c, http.StatusServiceUnavailable, CodeNetworkFailure,
			"The generative service is unavailable, please retry", err, echo)
	case errors.Is(err, services.ErrStaleResponse):
		h.RespondWithError(c, http.StatusConflict, CodeStaleResponse,
			"A newer request superseded this one", nil)
	case errors.Is(err, services.ErrNotQuestionResult):
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.Is(err, services.ErrHistoryEmpty):
		h.RespondWithError(c, http.StatusUnprocessableEntity, CodeEmptyResult, err.Error(), nil)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required", nil)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, CodeInternal, "Internal server error", err)
	}
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "yds-assistant-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
