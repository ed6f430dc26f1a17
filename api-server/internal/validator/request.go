package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/marcos020499/booker/shared/logger"
	"github.com/marcos020499/booker/shared/search"
)

var expiryRegex = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// RequestValidator checks the request bodies of the session API
type RequestValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRequestValidator(log *logger.Logger) *RequestValidator {
	v := validator.New()

	if err := v.RegisterValidation("expiry", validateExpiry); err != nil {
		log.Fatal("Failed to register 'expiry' validator",
			"error", err,
		)
	}

	if err := v.RegisterValidation("timebucket", validateTimeBucket); err != nil {
		log.Fatal("Failed to register 'timebucket' validator",
			"error", err,
		)
	}

	return &RequestValidator{
		validate: v,
		logger:   log,
	}
}

// validateExpiry accepts a card expiry written as MM/YY
func validateExpiry(fl validator.FieldLevel) bool {
	return expiryRegex.MatchString(fl.Field().String())
}

// validateTimeBucket accepts Any, Morning, Afternoon or Evening in any case
func validateTimeBucket(fl validator.FieldLevel) bool {
	_, ok := search.ParseTimeBucket(fl.Field().String())
	return ok
}

// Validate runs the struct tags of req and returns ValidationErrors on failure
func (v *RequestValidator) Validate(req any) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *RequestValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	result := make(ValidationErrors, 0, len(errs))
	for _, err := range errs {
		result = append(result, ValidationError{
			Field:   err.Field(),
			Message: v.getErrorMessage(err),
		})
	}

	v.logger.Debug("Request validation failed",
		"error_count", len(result),
		"errors", result,
	)
	return result
}

func (v *RequestValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "field is required"
	case "numeric":
		return "must contain only digits"
	case "alpha":
		return "must contain only letters"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", err.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "expiry":
		return "must be a valid expiry in MM/YY format"
	case "timebucket":
		return "must be one of: Any, Morning, Afternoon, Evening"
	default:
		return fmt.Sprintf("failed validation on '%s'", err.Tag())
	}
}
