package validator

import (
	"reflect"
	"strings"
	"unicode"

	apperrors "github.com/SAP-F-2025/yds-assistant-service/internal/errors"
	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/go-playground/validator/v10"
)

const MaxUsernameLength = 64

// Validator wraps the struct validator with the service's custom tags.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{structValidator: structValidator}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates s and converts failures into ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}
	if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

// Engine exposes the underlying validator, e.g. for gin's binding.
func (v *Validator) Engine() *validator.Validate {
	return v.structValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("challenge_type", validateChallengeType)
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("difficulty_level", validateDifficultyLevel)
	validate.RegisterValidation("exam_type", validateExamType)
	validate.RegisterValidation("username", validateUsername)
	validate.RegisterValidation("not_blank", validateNotBlank)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateChallengeType(fl validator.FieldLevel) bool {
	return models.ChallengeType(fl.Field().String()).IsValid()
}

// validateQuestionType accepts analyzer labels with a sub-type suffix.
func validateQuestionType(fl validator.FieldLevel) bool {
	_, ok := models.CanonicalQuestionType(fl.Field().String())
	return ok
}

func validateDifficultyLevel(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, level := range models.DifficultyLevels {
		if string(level) == value {
			return true
		}
	}
	return false
}

func validateExamType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, examType := range models.ExamTypes {
		if string(examType) == value {
			return true
		}
	}
	return false
}

func validateUsername(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" || len([]rune(value)) > MaxUsernameLength {
		return false
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
