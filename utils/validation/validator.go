package validation

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sahilchouksey/skill-training-api/utils/response"
)

// Messages maps "field.tag" (json field name) to the message shown to clients
type Messages map[string]string

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
	policy   *bluemonday.Policy
}

// NewValidator creates a new validator instance that reports json field names
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("maxbytes", maxBytes)

	return &Validator{
		validate: v,
		policy:   bluemonday.StrictPolicy(),
	}
}

// Validate checks struct tags and returns one FieldError per failing field,
// in declaration order. A nil result means the struct is valid.
func (v *Validator) Validate(s interface{}, messages Messages) []response.FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []response.FieldError{{Field: "", Message: "Invalid request"}}
	}

	out := make([]response.FieldError, 0, len(validationErrs))
	for _, e := range validationErrs {
		out = append(out, response.FieldError{
			Field:   e.Field(),
			Message: messageFor(e, messages),
		})
	}
	return out
}

// maxBytes limits the encoded length of a string, unlike max which counts runes
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func messageFor(e validator.FieldError, messages Messages) string {
	if msg, ok := messages[e.Field()+"."+e.Tag()]; ok {
		return msg
	}
	if msg, ok := messages[e.Field()]; ok {
		return msg
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "email":
		return "Please enter a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}

// SanitizeText strips markup from user supplied text and trims it
func (v *Validator) SanitizeText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	// StrictPolicy escapes entities, undo that for plain text storage
	return strings.TrimSpace(html.UnescapeString(v.policy.Sanitize(s)))
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
