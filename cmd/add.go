package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rollcall/internal/registration"
)

var (
	addName  string
	addEmail string
	addDOB   string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a registration without the chat UI",
	Long: `Add one registration directly from flags, applying the same validation
and duplicate-email check as the chat flow.

Required inputs:
  --name (-n):  Full name, 2-100 characters
  --email (-e): Email address, unique in the store
  --dob (-b):   Date of birth, YYYY-MM-DD, age 0-150

Examples:
  rollcall add --name "John Doe" --email john@example.com --dob 1990-05-15
  rollcall add -n "John Doe" -e john@example.com -b 1990-05-15`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "Full name (required)")
	addCmd.Flags().StringVarP(&addEmail, "email", "e", "", "Email address (required)")
	addCmd.Flags().StringVarP(&addDOB, "dob", "b", "", "Date of birth, YYYY-MM-DD (required)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	// Validate required flags
	if addName == "" || addEmail == "" || addDOB == "" {
		return cmd.Help()
	}

	store, err := registration.New(resolveDataPath())
	if err != nil {
		return fmt.Errorf("opening registration store: %w", err)
	}

	rec, err := store.Add(context.Background(), addName, addEmail, addDOB)
	if err != nil {
		var verr *registration.ValidationError
		switch {
		case errors.As(err, &verr):
			fmt.Fprintln(os.Stderr, "Registration failed:")
			for _, fe := range verr.Fields {
				fmt.Fprintf(os.Stderr, "  - %s\n", fe.Message)
			}
			return fmt.Errorf("%d validation error(s)", len(verr.Fields))
		case errors.Is(err, registration.ErrDuplicateEmail):
			return fmt.Errorf("email %s is already registered", addEmail)
		default:
			return fmt.Errorf("adding registration: %w", err)
		}
	}

	fmt.Printf("Registered %s (%s), born %s, at %s\n",
		rec.Name, rec.Email, rec.DateOfBirth, rec.RegisteredAt)
	return nil
}
