package registration

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)

func TestValidateName_Valid(t *testing.T) {
	for _, name := range []string{"Al", "John Doe", "  padded  ", strings.Repeat("x", 100)} {
		require.Nil(t, ValidateName(name), "name %q should be valid", name)
	}
}

func TestValidateName_TooShort(t *testing.T) {
	for _, name := range []string{"", "A", "  J  ", " "} {
		fe := ValidateName(name)
		require.NotNil(t, fe, "name %q should be rejected", name)
		assert.Equal(t, FieldName, fe.Field)
		assert.Contains(t, fe.Message, "at least 2 characters")
	}
}

func TestValidateName_TooLong(t *testing.T) {
	fe := ValidateName(strings.Repeat("x", 101))
	require.NotNil(t, fe)
	assert.Contains(t, fe.Message, "at most 100 characters")
}

func TestValidateName_CountsRunesNotBytes(t *testing.T) {
	// Two runes, six bytes.
	require.Nil(t, ValidateName("日本"))
	// 100 multi-byte runes are within bounds even at 300 bytes.
	require.Nil(t, ValidateName(strings.Repeat("ü", 100)))
	require.NotNil(t, ValidateName(strings.Repeat("ü", 101)))
}

func TestValidateEmailFormat_Valid(t *testing.T) {
	valid := []string{
		"john@example.com",
		"first.last@example.co.uk",
		"user+tag@sub.example.org",
		"UPPER@EXAMPLE.COM",
		"x_%-@host.io",
	}
	for _, email := range valid {
		require.Nil(t, ValidateEmailFormat(email), "email %q should be valid", email)
	}
}

func TestValidateEmailFormat_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"bad-email",
		"no-at.example.com",
		"@example.com",
		"user@",
		"user@domain",
		"user@domain.c",
		"spa ce@example.com",
	}
	for _, email := range invalid {
		fe := ValidateEmailFormat(email)
		require.NotNil(t, fe, "email %q should be rejected", email)
		assert.Equal(t, FieldEmail, fe.Field)
	}
}

func TestValidateDateOfBirth_Valid(t *testing.T) {
	require.Nil(t, ValidateDateOfBirth("1990-05-15", testNow))
	// Born today: age 0 is allowed.
	require.Nil(t, ValidateDateOfBirth(testNow.Format(DateLayout), testNow))
}

func TestValidateDateOfBirth_BadFormat(t *testing.T) {
	for _, dob := range []string{"", "15-05-1990", "1990/05/15", "1990-13-01", "not-a-date", "1990-05-15T00:00:00"} {
		fe := ValidateDateOfBirth(dob, testNow)
		require.NotNil(t, fe, "dob %q should be rejected", dob)
		assert.Equal(t, FieldDateOfBirth, fe.Field)
	}
}

func TestValidateDateOfBirth_Future(t *testing.T) {
	tomorrow := testNow.AddDate(0, 0, 1).Format(DateLayout)
	fe := ValidateDateOfBirth(tomorrow, testNow)
	require.NotNil(t, fe)
	assert.Contains(t, fe.Message, "future")
}

func TestValidateDateOfBirth_TodayEvening(t *testing.T) {
	// The check compares calendar dates, so today stays valid regardless of
	// the time of day.
	evening := time.Date(2026, 8, 25, 23, 59, 0, 0, time.UTC)
	require.Nil(t, ValidateDateOfBirth("2026-08-25", evening))
}

func TestValidateDateOfBirth_AgeBounds(t *testing.T) {
	today := dateOf(testNow)

	// Exactly 150 years of elapsed days passes.
	atLimit := today.AddDate(0, 0, -MaxAgeYears*365).Format(DateLayout)
	require.Nil(t, ValidateDateOfBirth(atLimit, testNow))

	// One year of days beyond the limit fails.
	overLimit := today.AddDate(0, 0, -(MaxAgeYears+1)*365).Format(DateLayout)
	fe := ValidateDateOfBirth(overLimit, testNow)
	require.NotNil(t, fe)
	assert.Contains(t, fe.Message, "150")
}

func TestAgeYears(t *testing.T) {
	today := dateOf(testNow)

	assert.Equal(t, 0, AgeYears(today, today))
	assert.Equal(t, 0, AgeYears(today.AddDate(0, 0, -364), today))
	assert.Equal(t, 1, AgeYears(today.AddDate(0, 0, -365), today))
	assert.Equal(t, 36, AgeYears(time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC), today))
}

func TestValidateFields_CollectsEveryViolation(t *testing.T) {
	verr := validateFields("A", "bad-email", "2200-01-01", testNow)
	require.NotNil(t, verr)
	require.Len(t, verr.Fields, 3)

	fields := make([]string, len(verr.Fields))
	for i, fe := range verr.Fields {
		fields[i] = fe.Field
	}
	assert.Equal(t, []string{FieldName, FieldEmail, FieldDateOfBirth}, fields)
	assert.Contains(t, verr.Error(), "validation failed: ")
	assert.Contains(t, verr.Error(), "name must be at least 2 characters")
	assert.Contains(t, verr.Error(), "invalid email format")
	assert.Contains(t, verr.Error(), "future")
}

func TestValidateFields_AllValid(t *testing.T) {
	require.Nil(t, validateFields("John Doe", "john@example.com", "1990-05-15", testNow))
}

func TestReport_Valid(t *testing.T) {
	report := Report{
		Name:        FieldResult{OK: true, Message: "valid"},
		Email:       FieldResult{OK: true, Message: "valid"},
		DateOfBirth: FieldResult{OK: true, Message: "valid"},
	}
	assert.True(t, report.Valid())

	report.Email = FieldResult{OK: false, Message: "invalid email format"}
	assert.False(t, report.Valid())
}
