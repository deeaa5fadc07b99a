package registration

import (
	"math"
	"strings"
	"time"
)

// Stats is the aggregate report over the whole store. Oldest/Newest use the
// TimestampLayout and are empty when the store is empty. The age fields are
// only meaningful when HasAges is set; records whose date columns do not
// parse are skipped rather than failing the whole report.
type Stats struct {
	Total              int
	UniqueEmailDomains int
	OldestRegistration string
	NewestRegistration string
	FilePath           string
	FileSizeBytes      int64

	AverageAge  float64 // rounded to one decimal
	YoungestAge int
	OldestAge   int
	HasAges     bool
}

func computeStats(records []Record, path string, size int64, now time.Time) Stats {
	stats := Stats{
		Total:         len(records),
		FilePath:      path,
		FileSizeBytes: size,
	}
	if len(records) == 0 {
		return stats
	}

	domains := make(map[string]struct{})
	for _, rec := range records {
		if _, domain, ok := strings.Cut(rec.Email, "@"); ok {
			domains[domain] = struct{}{}
		}
	}
	stats.UniqueEmailDomains = len(domains)

	var oldest, newest time.Time
	for _, rec := range records {
		ts, err := rec.RegisteredTime()
		if err != nil {
			continue
		}
		if oldest.IsZero() || ts.Before(oldest) {
			oldest = ts
		}
		if newest.IsZero() || ts.After(newest) {
			newest = ts
		}
	}
	if !oldest.IsZero() {
		stats.OldestRegistration = oldest.Format(TimestampLayout)
		stats.NewestRegistration = newest.Format(TimestampLayout)
	}

	today := dateOf(now)
	var ages []int
	for _, rec := range records {
		birth, err := rec.BirthDate()
		if err != nil {
			continue
		}
		ages = append(ages, AgeYears(birth, today))
	}
	if len(ages) > 0 {
		stats.HasAges = true
		stats.YoungestAge = ages[0]
		stats.OldestAge = ages[0]
		sum := 0
		for _, age := range ages {
			sum += age
			if age < stats.YoungestAge {
				stats.YoungestAge = age
			}
			if age > stats.OldestAge {
				stats.OldestAge = age
			}
		}
		avg := float64(sum) / float64(len(ages))
		stats.AverageAge = math.Round(avg*10) / 10
	}
	return stats
}
