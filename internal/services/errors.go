package services

import (
	"errors"

	apperrors "github.com/SAP-F-2025/yds-assistant-service/internal/errors"
	"github.com/SAP-F-2025/yds-assistant-service/internal/imagesearch"
	"github.com/SAP-F-2025/yds-assistant-service/internal/llm"
	"github.com/SAP-F-2025/yds-assistant-service/internal/normalizer"
	"github.com/SAP-F-2025/yds-assistant-service/internal/sequence"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")

	// Auth errors
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidToken = errors.New("invalid or expired token")

	// Study errors
	ErrWordNotSaved       = errors.New("word is not in the vocabulary list")
	ErrHistoryEmpty       = errors.New("no analysis history yet")
	ErrNotQuestionResult  = errors.New("similar quiz needs a single question analysis")
	ErrExamCalendarEmpty  = errors.New("no upcoming exam sessions")
	ErrEmptyModelResponse = errors.New("the model returned an empty response")
)

// Upstream error classes, re-exported so handlers depend on one package.
var (
	ErrMalformedResponse = normalizer.ErrMalformedResponse
	ErrEmptyResult       = normalizer.ErrEmptyResult
	ErrNetworkFailure    = llm.ErrNetworkFailure
	ErrStaleResponse     = sequence.ErrStaleResponse
)

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func singleValidationError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{*NewValidationError(field, message, value)}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrWordNotSaved) ||
		errors.Is(err, ErrExamCalendarEmpty)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidToken)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsUpstream checks if error came from the generative backend or its output
func IsUpstream(err error) bool {
	return errors.Is(err, ErrMalformedResponse) ||
		errors.Is(err, ErrEmptyResult) ||
		errors.Is(err, ErrNetworkFailure) ||
		errors.Is(err, ErrEmptyModelResponse) ||
		errors.Is(err, imagesearch.ErrNotConfigured)
}
