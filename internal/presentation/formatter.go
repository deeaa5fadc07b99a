package presentation

import (
	"encoding/json"
	"io"
)

// Formatter handles machine-readable output for the CLI surface.
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter.
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatRecords writes a listing as indented JSON.
func (f *Formatter) FormatRecords(records []RecordDTO) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// FormatStats writes the aggregate report as indented JSON.
func (f *Formatter) FormatStats(stats StatsDTO) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(stats)
}
