package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rollcall/internal/presentation"
	"rollcall/internal/registration"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show registration statistics",
	Long: `Show aggregate statistics over the registration store: totals, unique
email domains, first and last registration timestamps, the age
distribution, and the data file location.

Age figures are omitted when no stored birth dates parse.

Examples:
  rollcall stats
  rollcall stats --json | jq '.total_registrations'`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	store, err := registration.New(resolveDataPath())
	if err != nil {
		return fmt.Errorf("opening registration store: %w", err)
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("computing statistics: %w", err)
	}

	dto := presentation.FromStats(stats)
	if statsJSON {
		return presentation.NewFormatter(os.Stdout).FormatStats(dto)
	}

	printStats(os.Stdout, dto)
	return nil
}

func printStats(w io.Writer, dto presentation.StatsDTO) {
	if dto.TotalRegistrations == 0 {
		fmt.Fprintln(w, "No statistics available - no registrations found.")
		fmt.Fprintf(w, "Data file: %s\n", dto.FilePath)
		return
	}

	fmt.Fprintf(w, "Total registrations:  %d\n", dto.TotalRegistrations)
	fmt.Fprintf(w, "Unique email domains: %d\n", dto.UniqueEmailDomains)
	fmt.Fprintf(w, "Oldest registration:  %s\n", dto.OldestRegistration)
	fmt.Fprintf(w, "Newest registration:  %s\n", dto.NewestRegistration)
	if dto.AverageAge != nil {
		fmt.Fprintf(w, "Average age:          %.1f years\n", *dto.AverageAge)
		fmt.Fprintf(w, "Age range:            %d to %d years\n", *dto.YoungestUser, *dto.OldestUser)
	}
	fmt.Fprintf(w, "Data file:            %s (%d bytes)\n", dto.FilePath, dto.FileSizeBytes)
}
