// Package registration owns the persisted registration table: the record
// type, the field validation rules, and the file-backed store with its
// add/list/search/stats/validate operations.
package registration

import (
	"time"
)

// Layouts for the two date-valued columns.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Header is the exact header row of the data file, in column order.
var Header = []string{"Name", "Email", "Date_of_Birth", "Registration_Date"}

// Record is one persisted registration. Records are immutable once written;
// RegisteredAt is assigned by the store at insertion time and is never
// user-supplied. Field values are kept verbatim as stored in the file, so a
// hand-edited data file still lists; the parse helpers report per-record
// whether the date columns are usable.
type Record struct {
	Name         string
	Email        string
	DateOfBirth  string // YYYY-MM-DD
	RegisteredAt string // YYYY-MM-DD HH:MM:SS
}

// BirthDate parses the DateOfBirth column.
func (r Record) BirthDate() (time.Time, error) {
	return time.Parse(DateLayout, r.DateOfBirth)
}

// RegisteredTime parses the RegisteredAt column.
func (r Record) RegisteredTime() (time.Time, error) {
	return time.Parse(TimestampLayout, r.RegisteredAt)
}

func (r Record) row() []string {
	return []string{r.Name, r.Email, r.DateOfBirth, r.RegisteredAt}
}

// Clock provides the current time. Use RealClock in production and a fixed
// clock in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }
