package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"rollcall/internal/presentation"
	"rollcall/internal/registration"
)

// RegistrationServer is an MCP server that exposes the registration store to
// an AI client. It provides tools for adding, listing, searching, and
// validating registrations, and publishes the CSV data file as a resource.
type RegistrationServer struct {
	*Server
	store *registration.Store
}

// registrationInstructions provides a brief description for the MCP server.
const registrationInstructions = `Registration server providing tools to add, list, search, and validate user registrations stored in a CSV file. Use validate_registration_data to check input before add_registration.`

// NewRegistrationServer creates an MCP server backed by store.
func NewRegistrationServer(store *registration.Store, version string, opts ...ServerOption) *RegistrationServer {
	opts = append([]ServerOption{WithInstructions(registrationInstructions)}, opts...)
	rs := &RegistrationServer{
		Server: NewServer("registration-server", version, opts...),
		store:  store,
	}

	rs.registerTools()
	rs.registerResources()
	return rs
}

// registerTools registers all registration tools with the MCP server.
func (rs *RegistrationServer) registerTools() {
	rs.RegisterTool(Tool{
		Name:        "add_registration",
		Description: "Add a new user registration with name, email, and date of birth",
		InputSchema: &InputSchema{
			Type: "object",
			Properties: map[string]*PropertySchema{
				"name":  {Type: "string", Description: "Full name of the user (2-100 characters)"},
				"email": {Type: "string", Description: "Valid email address"},
				"dob":   {Type: "string", Description: "Date of birth in YYYY-MM-DD format"},
			},
			Required: []string{"name", "email", "dob"},
		},
	}, rs.handleAddRegistration)

	rs.RegisterTool(Tool{
		Name:        "get_all_registrations",
		Description: "Retrieve all user registrations from the CSV file",
		InputSchema: &InputSchema{
			Type:       "object",
			Properties: map[string]*PropertySchema{},
			Required:   []string{},
		},
	}, rs.handleGetAllRegistrations)

	rs.RegisterTool(Tool{
		Name:        "search_registrations",
		Description: "Search registrations by name or email",
		InputSchema: &InputSchema{
			Type: "object",
			Properties: map[string]*PropertySchema{
				"query": {Type: "string", Description: "Search query (name or email)"},
			},
			Required: []string{"query"},
		},
	}, rs.handleSearchRegistrations)

	rs.RegisterTool(Tool{
		Name:        "get_registration_statistics",
		Description: "Get statistics about registrations (count, age demographics, etc.)",
		InputSchema: &InputSchema{
			Type:       "object",
			Properties: map[string]*PropertySchema{},
			Required:   []string{},
		},
	}, rs.handleGetRegistrationStatistics)

	rs.RegisterTool(Tool{
		Name:        "validate_registration_data",
		Description: "Validate registration data without saving",
		InputSchema: &InputSchema{
			Type: "object",
			Properties: map[string]*PropertySchema{
				"name":  {Type: "string", Description: "Name to validate"},
				"email": {Type: "string", Description: "Email to validate"},
				"dob":   {Type: "string", Description: "Date of birth to validate (YYYY-MM-DD)"},
			},
			Required: []string{"name", "email", "dob"},
		},
	}, rs.handleValidateRegistrationData)
}

// registerResources publishes the CSV data file for direct reads.
func (rs *RegistrationServer) registerResources() {
	rs.RegisterResource(Resource{
		URI:         rs.dataFileURI(),
		Name:        "User Registrations",
		Description: "CSV file containing all user registrations",
		MimeType:    "text/csv",
	}, rs.handleReadDataFile)
}

func (rs *RegistrationServer) dataFileURI() string {
	return "file://" + rs.store.Path()
}

// Tool argument structs for JSON parsing. Absent fields decode to empty
// strings and fail validation with the same messages a chat user would see.
type registrationArgs struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	DOB   string `json:"dob"`
}

type searchArgs struct {
	Query string `json:"query"`
}

// decodeArgs unmarshals tool arguments, treating absent arguments as empty.
func decodeArgs(rawArgs json.RawMessage, into any) error {
	if len(rawArgs) == 0 {
		return nil
	}
	if err := json.Unmarshal(rawArgs, into); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// handleAddRegistration validates and appends one registration.
func (rs *RegistrationServer) handleAddRegistration(ctx context.Context, rawArgs json.RawMessage) (*ToolCallResult, error) {
	var args registrationArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}

	rec, err := rs.store.Add(ctx, args.Name, args.Email, args.DOB)
	if err != nil {
		return ErrorResult(presentation.RegistrationFailure(strings.TrimSpace(args.Email), err)), nil
	}

	return SuccessResult(presentation.RegistrationSuccess(rec)), nil
}

// handleGetAllRegistrations returns every registration in insertion order.
func (rs *RegistrationServer) handleGetAllRegistrations(ctx context.Context, _ json.RawMessage) (*ToolCallResult, error) {
	records, err := rs.store.List(ctx)
	if err != nil {
		return ErrorResult(fmt.Sprintf("ERROR: Failed to retrieve registrations: %s", err)), nil
	}

	return SuccessResult(presentation.Records(records)), nil
}

// handleSearchRegistrations matches the query against names and emails.
func (rs *RegistrationServer) handleSearchRegistrations(ctx context.Context, rawArgs json.RawMessage) (*ToolCallResult, error) {
	var args searchArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}

	records, err := rs.store.Search(ctx, args.Query)
	if err != nil {
		return ErrorResult(fmt.Sprintf("ERROR: Search failed: %s", err)), nil
	}

	return SuccessResult(presentation.SearchResults(args.Query, records)), nil
}

// handleGetRegistrationStatistics summarizes the data file.
func (rs *RegistrationServer) handleGetRegistrationStatistics(ctx context.Context, _ json.RawMessage) (*ToolCallResult, error) {
	stats, err := rs.store.Stats(ctx)
	if err != nil {
		return ErrorResult(fmt.Sprintf("ERROR: Failed to get statistics: %s", err)), nil
	}

	return SuccessResult(presentation.Statistics(stats)), nil
}

// handleValidateRegistrationData runs every field check without persisting.
func (rs *RegistrationServer) handleValidateRegistrationData(ctx context.Context, rawArgs json.RawMessage) (*ToolCallResult, error) {
	var args registrationArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}

	report, err := rs.store.Validate(ctx, args.Name, args.Email, args.DOB)
	if err != nil {
		return ErrorResult(fmt.Sprintf("ERROR: Validation failed: %s", err)), nil
	}

	return SuccessResult(presentation.ValidationReport(report)), nil
}

// handleReadDataFile serves the raw CSV contents.
func (rs *RegistrationServer) handleReadDataFile(_ context.Context) (ResourceContents, error) {
	data, err := os.ReadFile(rs.store.Path())
	if errors.Is(err, os.ErrNotExist) {
		return ResourceContents{
			URI:      rs.dataFileURI(),
			MimeType: "text/plain",
			Text:     "CSV file doesn't exist yet. No registrations found.",
		}, nil
	}
	if err != nil {
		return ResourceContents{}, fmt.Errorf("reading data file: %w", err)
	}

	return ResourceContents{
		URI:      rs.dataFileURI(),
		MimeType: "text/csv",
		Text:     string(data),
	}, nil
}
