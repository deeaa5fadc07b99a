package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"rollcall/internal/presentation"
	"rollcall/internal/registration"
)

var (
	listSearch string
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registrations",
	Long: `List registered users from the CSV store as an aligned table, numbered
in insertion order.

Use --search to filter by a case-insensitive substring of name or email.
Use --json for machine-readable output.

Examples:
  # List everything
  rollcall list

  # Filter by name or email
  rollcall list --search john
  rollcall list -s @gmail.com

  # Parse fields with jq
  rollcall list --json | jq '.[].email'`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "",
		"filter by name or email (case-insensitive substring)")
	listCmd.Flags().BoolVar(&listJSON, "json", false,
		"output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	store, err := registration.New(resolveDataPath())
	if err != nil {
		return fmt.Errorf("opening registration store: %w", err)
	}

	ctx := context.Background()
	var records []registration.Record
	if cmd.Flags().Changed("search") {
		records, err = store.Search(ctx, listSearch)
	} else {
		records, err = store.List(ctx)
	}
	if err != nil {
		return fmt.Errorf("reading registrations: %w", err)
	}

	dtos := presentation.FromRecords(records)
	if listJSON {
		return presentation.NewFormatter(os.Stdout).FormatRecords(dtos)
	}

	if len(dtos) == 0 {
		fmt.Println("No registrations found.")
		return nil
	}
	printRecordTable(os.Stdout, dtos)
	return nil
}

// printRecordTable renders an aligned table. Column widths are computed in
// display cells so names with wide characters still line up.
func printRecordTable(w io.Writer, records []presentation.RecordDTO) {
	headers := []string{"#", "NAME", "EMAIL", "DATE OF BIRTH", "REGISTERED"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.ID), r.Name, r.Email, r.DateOfBirth, r.RegisteredAt,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	writeRow := func(cells []string) {
		padded := make([]string, len(cells))
		for i, cell := range cells {
			padded[i] = runewidth.FillRight(cell, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(padded, "  "), " "))
	}

	writeRow(headers)
	for _, row := range rows {
		writeRow(row)
	}
}
