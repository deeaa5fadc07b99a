package registration

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"rollcall/internal/log"
	"rollcall/internal/tracing"
)

// Store is the file-backed registration table. It owns the CSV data file
// and is the only writer to it. The store is not safe for concurrent use;
// callers process turns sequentially (one conversation, one MCP request at
// a time).
type Store struct {
	path   string
	clock  Clock
	tracer trace.Tracer
}

// Option configures a Store.
type Option func(*Store)

// WithClock substitutes the time source. Defaults to RealClock.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithTracer enables span emission for store operations. Defaults to a
// no-op tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Store) { s.tracer = t }
}

// New opens the store at path, creating the data file with its header row
// if it does not exist yet.
func New(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		clock:  RealClock{},
		tracer: noop.NewTracerProvider().Tracer("noop"),
	}
	for _, opt := range opts {
		opt(s)
	}

	log.Debug(log.CatStore, "opening registration store", "path", path)
	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the data file path.
func (s *Store) Path() string { return s.path }

// Add validates the three fields, rejects duplicates, then appends a record
// with a server-assigned timestamp and returns it. A *ValidationError lists
// every violated field rule; a duplicate email is reported as
// ErrDuplicateEmail. Name and email are trimmed before validation and
// storage.
func (s *Store) Add(ctx context.Context, name, email, dob string) (Record, error) {
	_, span := s.tracer.Start(ctx, tracing.SpanPrefixStore+"add")
	defer span.End()

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	now := s.clock.Now()
	if verr := validateFields(name, email, dob, now); verr != nil {
		span.SetStatus(codes.Error, "validation failed")
		span.SetAttributes(attribute.Int(tracing.AttrViolationCount, len(verr.Fields)))
		return Record{}, verr
	}

	exists, err := s.emailExists(email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Record{}, err
	}
	if exists {
		span.SetStatus(codes.Error, ErrDuplicateEmail.Error())
		return Record{}, ErrDuplicateEmail
	}

	rec := Record{
		Name:         name,
		Email:        email,
		DateOfBirth:  dob,
		RegisteredAt: now.Format(TimestampLayout),
	}
	if err := s.append(rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Record{}, err
	}

	span.SetStatus(codes.Ok, "")
	log.Info(log.CatStore, "registration added", "email", rec.Email)
	return rec, nil
}

// List returns all records in insertion order (file order).
func (s *Store) List(ctx context.Context) ([]Record, error) {
	_, span := s.tracer.Start(ctx, tracing.SpanPrefixStore+"list")
	defer span.End()

	records, err := s.readAll()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrRecordCount, len(records)))
	return records, nil
}

// Search returns the records whose name or email contains query as a
// case-insensitive substring, in insertion order. An empty query matches
// every record.
func (s *Store) Search(ctx context.Context, query string) ([]Record, error) {
	_, span := s.tracer.Start(ctx, tracing.SpanPrefixStore+"search")
	defer span.End()

	records, err := s.readAll()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	q := strings.ToLower(query)
	matches := make([]Record, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Name), q) ||
			strings.Contains(strings.ToLower(rec.Email), q) {
			matches = append(matches, rec)
		}
	}
	span.SetAttributes(
		attribute.String(tracing.AttrSearchQuery, query),
		attribute.Int(tracing.AttrRecordCount, len(matches)),
	)
	return matches, nil
}

// Stats computes the aggregate report over all records: total count,
// distinct email domains, earliest and latest registration timestamps, the
// age distribution, and the data file's path and size.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	_, span := s.tracer.Start(ctx, tracing.SpanPrefixStore+"stats")
	defer span.End()

	records, err := s.readAll()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Stats{}, err
	}

	var size int64
	if fi, err := os.Stat(s.path); err == nil {
		size = fi.Size()
	}

	stats := computeStats(records, s.path, size, s.clock.Now())
	span.SetAttributes(attribute.Int(tracing.AttrRecordCount, stats.Total))
	return stats, nil
}

// Validate applies the same rule set as Add, including the duplicate-email
// check, without persisting anything. The error return covers data-file
// read failures during the duplicate check only; rule violations live in
// the report.
func (s *Store) Validate(ctx context.Context, name, email, dob string) (Report, error) {
	_, span := s.tracer.Start(ctx, tracing.SpanPrefixStore+"validate")
	defer span.End()

	email = strings.TrimSpace(email)

	now := s.clock.Now()
	report := Report{
		Name:        fieldResult(ValidateName(name)),
		Email:       fieldResult(ValidateEmailFormat(email)),
		DateOfBirth: fieldResult(ValidateDateOfBirth(dob, now)),
	}

	// Uniqueness is only meaningful for a well-formed email.
	if report.Email.OK {
		exists, err := s.emailExists(email)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Report{}, err
		}
		if exists {
			report.Email = FieldResult{OK: false, Message: ErrDuplicateEmail.Error()}
		}
	}
	return report, nil
}

func (s *Store) emailExists(email string) (bool, error) {
	records, err := s.readAll()
	if err != nil {
		return false, err
	}
	candidate := strings.ToLower(strings.TrimSpace(email))
	for _, rec := range records {
		// Uniqueness is case-insensitive.
		if strings.ToLower(rec.Email) == candidate {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking data file: %w", err)
	}

	// The parent directory must already exist; the store never invents
	// directory structure for a mistyped --data path.
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating data file: %w", err)
	}
	w := csv.NewWriter(f)
	_ = w.Write(Header)
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing data file: %w", err)
	}
	log.Info(log.CatStore, "created data file", "path", s.path)
	return nil
}

func (s *Store) readAll() ([]Record, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening data file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if !slices.Equal(rows[0], Header) {
		return nil, fmt.Errorf("unexpected header in %s: %v", s.path, rows[0])
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, Record{
			Name:         row[0],
			Email:        row[1],
			DateOfBirth:  row[2],
			RegisteredAt: row[3],
		})
	}
	return records, nil
}

func (s *Store) append(rec Record) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening data file for append: %w", err)
	}

	w := csv.NewWriter(f)
	_ = w.Write(rec.row())
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("appending record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing data file: %w", err)
	}
	return nil
}
