package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/phrazzld/task-tracker-api/internal/domain"
)

// MaxRequestBodyBytes bounds the size of a JSON request body.
const MaxRequestBodyBytes = 1 << 20

// Global validator instance for reuse
var validate = newValidator()

// fieldMessages holds the client-facing message for a failed field/tag pair.
var fieldMessages = map[string]map[string]string{
	"title": {
		"required": "Title cannot be empty",
		"notblank": "Title cannot be empty",
	},
	"description": {
		"max": "Description cannot exceed 500 characters",
	},
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so messages match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		// ALLOW-PANIC: registration only fails on a programming error
		panic(fmt.Sprintf("failed to register notblank validation: %v", err))
	}
	return v
}

// DecodeJSON decodes the request body into the given struct.
// Every decoding failure is reported as a *domain.ValidationError.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes)
	decoder := json.NewDecoder(body)

	if err := decoder.Decode(v); err != nil {
		return decodeError(err)
	}
	if decoder.More() {
		return domain.NewValidationError("", "Request body must contain a single JSON object", nil)
	}
	return nil
}

func decodeError(err error) error {
	var vErr *domain.ValidationError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &vErr):
		return vErr
	case errors.Is(err, io.EOF):
		return domain.NewValidationError("", "Request body must not be empty", nil)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return domain.NewValidationError(typeErr.Field, "has an invalid type", nil)
	case errors.As(err, &maxBytesErr):
		return domain.NewValidationError("", "Request body is too large", nil)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.NewValidationError("", "Malformed JSON request body", nil)
	default:
		return domain.NewValidationError("", "Malformed JSON request body", err)
	}
}

// ValidateRequest validates the given struct using the validator package.
// The first failing field is reported as a *domain.ValidationError.
func ValidateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.NewValidationError(fe.Field(), fieldMessage(fe.Field(), fe.Tag()), nil)
	}

	return domain.NewValidationError("", "Validation failed", err)
}

func fieldMessage(field, tag string) string {
	if messages, ok := fieldMessages[field]; ok {
		if msg, ok := messages[tag]; ok {
			return msg
		}
	}
	return fmt.Sprintf("failed on the '%s' rule", tag)
}
