// Package presentation renders store results for every outward surface: the
// chat transcript, MCP tool results, and the CLI subcommands. The text shapes
// are shared so a registration reads the same everywhere it is reported.
package presentation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"rollcall/internal/registration"
)

// Records renders the full listing with 1-based ids in insertion order.
func Records(records []registration.Record) string {
	if len(records) == 0 {
		return "No registrations found yet.\n\nThe registration system is ready to accept new registrations!"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**All Registrations (%d total):**\n\n", len(records))
	writeEntries(&b, records)
	return b.String()
}

// SearchResults renders the matches for query, numbered 1-based in insertion
// order.
func SearchResults(query string, records []registration.Record) string {
	if len(records) == 0 {
		return fmt.Sprintf("No matches found for '%s'\n\nTry searching with a different name or email.", query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Search Results for '%s' (%d matches):**\n\n", query, len(records))
	writeEntries(&b, records)
	return b.String()
}

func writeEntries(b *strings.Builder, records []registration.Record) {
	for i, rec := range records {
		fmt.Fprintf(b, "**%d. %s**\n", i+1, rec.Name)
		fmt.Fprintf(b, "   Email: %s\n", rec.Email)
		fmt.Fprintf(b, "   Date of Birth: %s\n", rec.DateOfBirth)
		fmt.Fprintf(b, "   Registered: %s\n\n", rec.RegisteredAt)
	}
}

// ValidationReport renders the per-field outcome with an overall verdict.
func ValidationReport(report registration.Report) string {
	var b strings.Builder
	b.WriteString("**Validation Results:**\n\n")
	fmt.Fprintf(&b, "**Name:** %s\n", fieldLine(report.Name))
	fmt.Fprintf(&b, "**Email:** %s\n", fieldLine(report.Email))
	fmt.Fprintf(&b, "**Date of Birth:** %s\n", fieldLine(report.DateOfBirth))
	if report.Valid() {
		b.WriteString("\n**Overall Status:** Ready for registration!")
	} else {
		b.WriteString("\n**Overall Status:** Fix validation errors before registering")
	}
	return b.String()
}

func fieldLine(r registration.FieldResult) string {
	if r.OK {
		return "✓ Valid"
	}
	return "✗ " + UpperFirst(r.Message)
}

// RegistrationSuccess renders the committed record with a details block.
func RegistrationSuccess(rec registration.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SUCCESS: Successfully registered %s\n\n", rec.Name)
	b.WriteString("Registration Details:\n")
	fmt.Fprintf(&b, "- Name: %s\n", rec.Name)
	fmt.Fprintf(&b, "- Email: %s\n", rec.Email)
	fmt.Fprintf(&b, "- Date of Birth: %s\n", rec.DateOfBirth)
	fmt.Fprintf(&b, "- Registered: %s", rec.RegisteredAt)
	return b.String()
}

// RegistrationFailure renders an Add failure. Validation failures list every
// violated rule; the duplicate conflict names the offending email.
func RegistrationFailure(email string, err error) string {
	var verr *registration.ValidationError
	switch {
	case errors.As(err, &verr):
		var b strings.Builder
		b.WriteString("ERROR: Registration failed: Validation failed\n\nValidation errors:\n")
		for _, fe := range verr.Fields {
			fmt.Fprintf(&b, "- %s: ✗ %s\n", FieldLabel(fe.Field), UpperFirst(fe.Message))
		}
		return b.String()
	case errors.Is(err, registration.ErrDuplicateEmail):
		return fmt.Sprintf(
			"ERROR: Registration failed: Email already registered\n\nValidation errors:\n- The email %s is already registered\n",
			email)
	default:
		return fmt.Sprintf("ERROR: Registration failed: %s", err)
	}
}

// Statistics renders the aggregate report. An empty store reports that no
// statistics are available; the age section is omitted when no birth dates
// parse.
func Statistics(stats registration.Stats) string {
	var b strings.Builder
	b.WriteString("**Registration Statistics:**\n\n")
	if stats.Total == 0 {
		b.WriteString("No statistics available - no registrations found")
	} else {
		fmt.Fprintf(&b, "Total Registrations: %d\n", stats.Total)
		fmt.Fprintf(&b, "Unique Email Domains: %d\n", stats.UniqueEmailDomains)
		fmt.Fprintf(&b, "First Registration: %s\n", stats.OldestRegistration)
		fmt.Fprintf(&b, "Latest Registration: %s\n", stats.NewestRegistration)
		fmt.Fprintf(&b, "File Size: %d bytes\n", stats.FileSizeBytes)
		if stats.HasAges {
			b.WriteString("\n**Age Demographics:**\n")
			fmt.Fprintf(&b, "   Average Age: %.1f years\n", stats.AverageAge)
			fmt.Fprintf(&b, "   Youngest User: %d years\n", stats.YoungestAge)
			fmt.Fprintf(&b, "   Oldest User: %d years\n", stats.OldestAge)
		}
	}
	fmt.Fprintf(&b, "\nData File: %s", stats.FilePath)
	return b.String()
}

// FieldLabel maps a field tag to its display label.
func FieldLabel(field string) string {
	switch field {
	case registration.FieldName:
		return "Name"
	case registration.FieldEmail:
		return "Email"
	case registration.FieldDateOfBirth:
		return "Date of Birth"
	}
	return field
}

// UpperFirst capitalizes the first rune of s.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
