package types

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation error")

var (
	nameRe  = regexp.MustCompile(`^[A-Za-z ]+$`)
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9]{11}$`)

	// phoneSeparators are stripped before the digit check only; the stored
	// phone keeps them.
	phoneSeparators = regexp.MustCompile(`[\s\-()]+`)
)

// ValidationError names the first field that failed and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Is lets callers test with errors.Is(err, types.ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// validate is shared: validator.Validate caches parsed tags and is safe for
// reuse.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	mustRegister(v, "student_name", func(fl validator.FieldLevel) bool {
		return nameRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "student_email", func(fl validator.FieldLevel) bool {
		return emailRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "student_phone", func(fl validator.FieldLevel) bool {
		digits := phoneSeparators.ReplaceAllString(fl.Field().String(), "")
		return phoneRe.MatchString(digits)
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("types: register " + tag + ": " + err.Error())
	}
}

// fieldCheck pairs a field with the validator tags it must satisfy.
type fieldCheck struct {
	field string
	value any
	tags  string
}

// reasons maps "field/tag" to the message shown to the user. Any tag not
// listed falls back to "<field> is invalid".
var reasons = map[string]string{
	"student_id/required": "student ID is required and must be a non-empty string",
	"name/required":       "name is required and must be a non-empty string",
	"name/student_name":   "name must contain only letters and spaces",
	"age/min":             "age must be between 1 and 100",
	"age/max":             "age must be between 1 and 100",
	"grade/oneof":         "grade must be one of " + strings.Join(Grades, ", "),
	"email/required":      "email is required",
	"email/student_email": "invalid email format, use user@example.com",
	"phone/required":      "phone is required",
	"phone/student_phone": "phone must contain exactly 11 digits, optionally with a + prefix",
	"attendance/gte":      "attendance must be between 0 and 100",
	"attendance/lte":      "attendance must be between 0 and 100",
}

// validateFields runs the checks in record order and stops at the first
// failure. Inputs are expected to be trimmed already.
func validateFields(id, name string, age int, grade, email, phone string, attendance float64) error {
	checks := []fieldCheck{
		{field: "student_id", value: id, tags: "required"},
		{field: "name", value: name, tags: "required,student_name"},
		{field: "age", value: age, tags: "min=1,max=100"},
		{field: "grade", value: grade, tags: "oneof=" + strings.Join(Grades, " ")},
		{field: "email", value: email, tags: "required,student_email"},
		{field: "phone", value: phone, tags: "required,student_phone"},
		{field: "attendance", value: attendance, tags: "gte=0,lte=100"},
	}

	for _, c := range checks {
		if err := validate.Var(c.value, c.tags); err != nil {
			return toValidationError(c.field, err)
		}
	}
	return nil
}

func toValidationError(field string, err error) *ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if reason, ok := reasons[field+"/"+fieldErrs[0].Tag()]; ok {
			return &ValidationError{Field: field, Reason: reason}
		}
	}
	return &ValidationError{Field: field, Reason: field + " is invalid"}
}
