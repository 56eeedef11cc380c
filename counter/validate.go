package counter

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// identifierPattern is applied independently to namespace and key.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,64}$`)

// Params carries one invocation's caller-supplied inputs. Initializer
// and Value stay raw strings until validation proves they are integers.
type Params struct {
	Operation   Operation `json:"operation"`
	Namespace   string    `json:"namespace" validate:"required,counter_id"`
	Key         string    `json:"key" validate:"required,counter_id"`
	Initializer string    `json:"initializer"`
	Value       string    `json:"value"`
	AdminKey    string    `json:"admin_key"`
}

// Validator wraps go-playground/validator with the counter service's
// input rules. It performs no I/O; callers run it before any request
// is built.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator instance with custom validation rules registered.
func NewValidator() *Validator {
	v := validator.New()

	if err := v.RegisterValidation("counter_id", validateIdentifier); err != nil {
		return nil
	}

	// Report caller-facing input names (json tags) instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Validate checks the invocation parameters and returns a *ValidationError
// describing every violated rule, or nil when the parameters are valid.
func (v *Validator) Validate(p *Params) error {
	var fieldErrors []FieldError

	if err := v.validate.Struct(p); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		for _, fe := range validationErrors {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   fe.Field(),
				Message: getErrorMessage(fe),
				Value:   fmt.Sprintf("%v", fe.Value()),
			})
		}
	}

	fieldErrors = append(fieldErrors, checkOperationRules(p)...)

	if len(fieldErrors) > 0 {
		return &ValidationError{Errors: fieldErrors}
	}
	return nil
}

// checkOperationRules enforces the rules that depend on the operation:
// admin operations need the credential, set/update need an integer value,
// and create's initializer must be an integer when present.
func checkOperationRules(p *Params) []FieldError {
	var fieldErrors []FieldError

	if p.Operation.IsAdmin() && p.AdminKey == "" {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   "admin_key",
			Message: fmt.Sprintf("admin_key is missing: operation %s requires the admin credential", p.Operation),
		})
	}

	switch p.Operation {
	case OpSet, OpUpdate:
		if p.Value == "" {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   "value",
				Message: fmt.Sprintf("value is required for operation %s", p.Operation),
			})
		} else if _, err := strconv.ParseInt(p.Value, 10, 64); err != nil {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   "value",
				Message: fmt.Sprintf("value must be an integer (got %q)", p.Value),
				Value:   p.Value,
			})
		}
	case OpCreate:
		if p.Initializer != "" {
			if _, err := strconv.ParseInt(p.Initializer, 10, 64); err != nil {
				fieldErrors = append(fieldErrors, FieldError{
					Field:   "initializer",
					Message: fmt.Sprintf("initializer must be an integer (got %q)", p.Initializer),
					Value:   p.Initializer,
				})
			}
		}
	}

	return fieldErrors
}

// ValidationError wraps validation failures with structured field errors.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}

	if len(ve.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s", ve.Errors[0].Message)
	}

	messages := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		messages = append(messages, fe.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "counter_id":
		return fmt.Sprintf("%s must be 3-64 characters of letters, digits, underscores, hyphens or periods (got %q)", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed validation", fe.Field())
	}
}

func validateIdentifier(fl validator.FieldLevel) bool {
	return identifierPattern.MatchString(fl.Field().String())
}
