package validation

import (
	stderrors "errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/feedback/errors"
)

var (
	validate *validator.Validate
	once     sync.Once

	handlePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their json names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})

		// handle: a login name made of letters, digits, '_', '.' and '-'.
		_ = validate.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
			return handlePattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Validate checks s against its `validate` struct tags. Failures are
// returned as a 400 AppError listing every offending field.
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Validation("validation failed")
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, FieldError{Field: e.Field(), Message: message(e)})
	}
	return fieldErrors(fields)
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	case "handle":
		return "may only contain letters, digits, '_', '.' and '-'"
	default:
		return "is invalid"
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
