package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidationErrors is returned whole so clients see every bad field at once.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	switch len(ve) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// ToValidationErrors flattens validator field errors. Anything else yields nil.
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return nil
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

var ruleMessages = map[string]string{
	"required":         "is required",
	"not_blank":        "must not be blank",
	"dive":             "contains an invalid item",
	"challenge_type":   "must be a valid challenge type (analyze, dictionary, tutor, reading, writing)",
	"question_type":    "must be a recognized YDS question type (e.g. Kelime Sorusu, Dil Bilgisi Sorusu)",
	"difficulty_level": "must be Easy, Intermediate, Advanced, or Expert",
	"exam_type":        "must be a valid exam type (YDS, YÖKDİL, e-YDS, TOEFL, IELTS)",
	"username":         "must be 1 to 64 characters without control characters",
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := ruleMessages[fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return fmt.Sprintf("failed the '%s' rule", fe.Tag())
}
