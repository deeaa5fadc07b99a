package registration

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Validation bounds for a registration record.
const (
	MinNameLength = 2
	MaxNameLength = 100
	MaxAgeYears   = 150
)

// Canonical field names used in validation reports and field-tagged errors.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldDateOfBirth = "date_of_birth"
)

// emailPattern accepts the usual local@domain.tld shape.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ErrDuplicateEmail is returned by Add when the candidate email is already
// present in the store. Matched with errors.Is.
var ErrDuplicateEmail = errors.New("email already registered")

// FieldError names one violated rule on one field. Message is a
// self-contained sentence; Field tags it for programmatic grouping.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// ValidationError aggregates every violated rule across all fields of a
// candidate registration. Add reports all violations at once rather than
// stopping at the first. Retrieved with errors.As.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// ValidateName checks that the trimmed name length is within
// [MinNameLength, MaxNameLength]. Length is counted in runes so multi-byte
// names are not penalized.
func ValidateName(name string) *FieldError {
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	if n < MinNameLength {
		return &FieldError{FieldName, "name must be at least 2 characters long"}
	}
	if n > MaxNameLength {
		return &FieldError{FieldName, "name must be at most 100 characters long"}
	}
	return nil
}

// ValidateEmailFormat checks the local@domain.tld shape only. Uniqueness
// against the store is a separate check owned by Add and Validate.
func ValidateEmailFormat(email string) *FieldError {
	if email == "" {
		return &FieldError{FieldEmail, "email is required"}
	}
	if !emailPattern.MatchString(email) {
		return &FieldError{FieldEmail, "invalid email format"}
	}
	return nil
}

// ValidateDateOfBirth checks the YYYY-MM-DD shape, rejects future dates, and
// rejects dates implying an age above MaxAgeYears. The comparison is against
// the calendar date of now, so a birth date of today is valid (age 0).
func ValidateDateOfBirth(dob string, now time.Time) *FieldError {
	if dob == "" {
		return &FieldError{FieldDateOfBirth, "date of birth is required"}
	}
	birth, err := time.Parse(DateLayout, dob)
	if err != nil {
		return &FieldError{FieldDateOfBirth, "date of birth must use the YYYY-MM-DD format"}
	}
	today := dateOf(now)
	if birth.After(today) {
		return &FieldError{FieldDateOfBirth, "date of birth cannot be in the future"}
	}
	if AgeYears(birth, today) > MaxAgeYears {
		return &FieldError{FieldDateOfBirth, "date of birth implies an age above 150 years"}
	}
	return nil
}

// AgeYears is whole elapsed days divided by 365. The statistics report uses
// the same arithmetic, so validation and stats always agree on an age.
func AgeYears(birth, today time.Time) int {
	days := int(today.Sub(birth) / (24 * time.Hour))
	return days / 365
}

// dateOf truncates a timestamp to its calendar date at UTC midnight, the
// same instant time.Parse assigns a bare YYYY-MM-DD value.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// validateFields runs the three field validators and collects every
// violation. Returns nil when all fields pass.
func validateFields(name, email, dob string, now time.Time) *ValidationError {
	var fields []FieldError
	if fe := ValidateName(name); fe != nil {
		fields = append(fields, *fe)
	}
	if fe := ValidateEmailFormat(email); fe != nil {
		fields = append(fields, *fe)
	}
	if fe := ValidateDateOfBirth(dob, now); fe != nil {
		fields = append(fields, *fe)
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// FieldResult is one field's line in a validation report.
type FieldResult struct {
	OK      bool
	Message string // "valid", or the violated rule
}

// Report is the per-field outcome of Validate. It applies the same rule set
// as Add, including the duplicate-email check, without persisting anything.
type Report struct {
	Name        FieldResult
	Email       FieldResult
	DateOfBirth FieldResult
}

// Valid reports whether every field passed.
func (r Report) Valid() bool {
	return r.Name.OK && r.Email.OK && r.DateOfBirth.OK
}

func fieldResult(fe *FieldError) FieldResult {
	if fe != nil {
		return FieldResult{OK: false, Message: fe.Message}
	}
	return FieldResult{OK: true, Message: "valid"}
}
