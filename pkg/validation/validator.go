package validation

import (
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"
)

const minPasswordLen = 6

// engine runs single-field rules. validator.Validate is safe for concurrent use.
var engine = newEngine()

func newEngine() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("pwd", passwordLength); err != nil {
		panic(err)
	}
	return v
}

// passwordLength counts UTF-16 code units, so an astral-plane character counts twice.
func passwordLength(fl validator.FieldLevel) bool {
	n := 0
	for _, r := range fl.Field().String() {
		n += utf16.RuneLen(r)
	}
	return n >= minPasswordLen
}

// Errors maps a payload field to a human-friendly failure message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// check runs tag against value with the shared engine and records the first failure under field.
func (e Errors) check(field string, value any, tag string) {
	err := engine.Var(value, tag)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e.add(field, formatFieldError(verrs[0]))
		return
	}
	e.add(field, "is invalid")
}

func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// ToDetails converts decoding/validation errors into a map[field]message suitable for logs.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var fields Errors
	if errors.As(err, &fields) {
		return fields
	}

	var se *json.SyntaxError
	if errors.As(err, &se) || errors.Is(err, io.ErrUnexpectedEOF) {
		return map[string]string{"payload": "invalid json"}
	}
	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "pwd":
		return "must be at least 6 characters long"
	default:
		return "validation failed for '" + fe.Tag() + "'"
	}
}
