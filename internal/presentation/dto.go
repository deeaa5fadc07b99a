package presentation

import (
	"rollcall/internal/registration"
)

// RecordDTO is the JSON projection of a stored registration. IDs are 1-based
// positions in insertion order.
type RecordDTO struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	DateOfBirth  string `json:"dob"`
	RegisteredAt string `json:"registration_date"`
}

// StatsDTO is the JSON projection of the aggregate report. The age fields are
// omitted when no birth dates parse.
type StatsDTO struct {
	TotalRegistrations int      `json:"total_registrations"`
	UniqueEmailDomains int      `json:"unique_email_domains"`
	OldestRegistration string   `json:"oldest_registration,omitempty"`
	NewestRegistration string   `json:"newest_registration,omitempty"`
	FileSizeBytes      int64    `json:"file_size_bytes"`
	FilePath           string   `json:"file_path"`
	AverageAge         *float64 `json:"average_age,omitempty"`
	YoungestUser       *int     `json:"youngest_user,omitempty"`
	OldestUser         *int     `json:"oldest_user,omitempty"`
}

// FromRecord converts one stored record to its DTO.
func FromRecord(id int, rec registration.Record) RecordDTO {
	return RecordDTO{
		ID:           id,
		Name:         rec.Name,
		Email:        rec.Email,
		DateOfBirth:  rec.DateOfBirth,
		RegisteredAt: rec.RegisteredAt,
	}
}

// FromRecords converts a listing to DTOs with 1-based ids.
func FromRecords(records []registration.Record) []RecordDTO {
	dtos := make([]RecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = FromRecord(i+1, rec)
	}
	return dtos
}

// FromStats converts the aggregate report to its DTO.
func FromStats(stats registration.Stats) StatsDTO {
	dto := StatsDTO{
		TotalRegistrations: stats.Total,
		UniqueEmailDomains: stats.UniqueEmailDomains,
		OldestRegistration: stats.OldestRegistration,
		NewestRegistration: stats.NewestRegistration,
		FileSizeBytes:      stats.FileSizeBytes,
		FilePath:           stats.FilePath,
	}
	if stats.HasAges {
		avg := stats.AverageAge
		youngest := stats.YoungestAge
		oldest := stats.OldestAge
		dto.AverageAge = &avg
		dto.YoungestUser = &youngest
		dto.OldestUser = &oldest
	}
	return dto
}
