package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rollcall/internal/log"
	"rollcall/internal/presentation"
	"rollcall/internal/registration"
)

// State is the dialogue cursor. Idle accepts commands; the awaiting states
// treat every input as field input for the draft.
type State int

const (
	StateIdle State = iota
	StateAwaitingName
	StateAwaitingEmail
	StateAwaitingDOB
	StateAwaitingConfirmation
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAwaitingName:
		return "AWAITING_NAME"
	case StateAwaitingEmail:
		return "AWAITING_EMAIL"
	case StateAwaitingDOB:
		return "AWAITING_DOB"
	case StateAwaitingConfirmation:
		return "AWAITING_CONFIRMATION"
	default:
		return "UNKNOWN"
	}
}

// Store is the slice of the registration store the dialogue drives.
// *registration.Store satisfies it.
type Store interface {
	Add(ctx context.Context, name, email, dob string) (registration.Record, error)
	List(ctx context.Context) ([]registration.Record, error)
	Search(ctx context.Context, query string) ([]registration.Record, error)
	Stats(ctx context.Context) (registration.Stats, error)
	Validate(ctx context.Context, name, email, dob string) (registration.Report, error)
}

// Draft is the partially collected registration, discarded on completion or
// cancellation.
type Draft struct {
	Name  string
	Email string
	DOB   string
}

// Reply is one bot turn. Completed and Cancelled report that the draft just
// reached a terminal outcome; the dialogue itself is already back at idle.
type Reply struct {
	Text      string
	Completed bool
	Cancelled bool
	Record    registration.Record // set when Completed
}

// Dialogue is the single-session registration state machine: one draft, one
// conversation, strictly sequential turns.
type Dialogue struct {
	store Store
	clock registration.Clock
	state State
	draft Draft
}

// Option configures a Dialogue.
type Option func(*Dialogue)

// WithClock substitutes the time source used for date-of-birth validation.
func WithClock(c registration.Clock) Option {
	return func(d *Dialogue) { d.clock = c }
}

// NewDialogue creates an idle dialogue over the given store.
func NewDialogue(store Store, opts ...Option) *Dialogue {
	d := &Dialogue{
		store: store,
		clock: registration.RealClock{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current cursor.
func (d *Dialogue) State() State { return d.state }

// Draft returns a copy of the in-progress draft.
func (d *Dialogue) Draft() Draft { return d.draft }

// Reset discards the draft and returns to idle.
func (d *Dialogue) Reset() {
	d.state = StateIdle
	d.draft = Draft{}
}

// Turn processes one user input and returns the bot reply. Every failure is
// reported through the reply text; the dialogue always remains resumable.
func (d *Dialogue) Turn(ctx context.Context, input string) Reply {
	switch d.state {
	case StateAwaitingName:
		return d.nameTurn(input)
	case StateAwaitingEmail:
		return d.emailTurn(ctx, input)
	case StateAwaitingDOB:
		return d.dobTurn(ctx, input)
	case StateAwaitingConfirmation:
		return d.confirmTurn(ctx, input)
	default:
		return d.idleTurn(ctx, input)
	}
}

// idleTurn dispatches a parsed command. Unrecognized input is answered with
// a pointer to help.
func (d *Dialogue) idleTurn(ctx context.Context, input string) Reply {
	cmd, query := ParseCommand(input)
	log.Debug(log.CatChat, "command parsed", "command", cmd.String())

	switch cmd {
	case CommandRegister:
		d.draft = Draft{}
		d.state = StateAwaitingName
		return Reply{Text: startText}

	case CommandList:
		records, err := d.store.List(ctx)
		if err != nil {
			log.ErrorErr(log.CatChat, "list failed", err)
			return Reply{Text: listErrorText(err)}
		}
		return Reply{Text: presentation.Records(records)}

	case CommandSearch:
		records, err := d.store.Search(ctx, query)
		if err != nil {
			log.ErrorErr(log.CatChat, "search failed", err)
			return Reply{Text: searchErrorText(err)}
		}
		return Reply{Text: presentation.SearchResults(query, records)}

	case CommandStats:
		stats, err := d.store.Stats(ctx)
		if err != nil {
			log.ErrorErr(log.CatChat, "stats failed", err)
			return Reply{Text: statsErrorText(err)}
		}
		return Reply{Text: presentation.Statistics(stats)}

	case CommandHelp:
		return Reply{Text: HelpText()}

	default:
		return Reply{Text: unknownText}
	}
}

func (d *Dialogue) nameTurn(input string) Reply {
	name := strings.TrimSpace(input)
	if fe := registration.ValidateName(name); fe != nil {
		return Reply{Text: nameRetryText(fe)}
	}
	d.draft.Name = name
	d.state = StateAwaitingEmail
	return Reply{Text: emailPromptText(name)}
}

// emailTurn checks format only; uniqueness surfaces in the confirmation
// preview and is enforced by Add.
func (d *Dialogue) emailTurn(ctx context.Context, input string) Reply {
	email := strings.TrimSpace(input)
	if fe := registration.ValidateEmailFormat(email); fe != nil {
		return Reply{Text: emailRetryText}
	}
	d.draft.Email = email
	// After a duplicate-email bounce the rest of the draft is still present;
	// skip straight back to confirmation.
	if d.draft.DOB != "" {
		d.state = StateAwaitingConfirmation
		return Reply{Text: d.confirmationPreview(ctx)}
	}
	d.state = StateAwaitingDOB
	return Reply{Text: dobPromptText}
}

func (d *Dialogue) dobTurn(ctx context.Context, input string) Reply {
	dob := strings.TrimSpace(input)
	if fe := registration.ValidateDateOfBirth(dob, d.clock.Now()); fe != nil {
		return Reply{Text: dobRetryText(fe)}
	}
	d.draft.DOB = dob
	d.state = StateAwaitingConfirmation
	return Reply{Text: d.confirmationPreview(ctx)}
}

// confirmationPreview shows the draft fields plus the store's validation
// report, duplicate check included.
func (d *Dialogue) confirmationPreview(ctx context.Context) string {
	var b strings.Builder
	b.WriteString("📋 **Please confirm your registration details:**\n\n")
	fmt.Fprintf(&b, "• **Name:** %s\n", d.draft.Name)
	fmt.Fprintf(&b, "• **Email:** %s\n", d.draft.Email)
	fmt.Fprintf(&b, "• **Date of Birth:** %s\n\n", d.draft.DOB)

	report, err := d.store.Validate(ctx, d.draft.Name, d.draft.Email, d.draft.DOB)
	if err != nil {
		log.ErrorErr(log.CatChat, "confirmation preview check failed", err)
		fmt.Fprintf(&b, "⚠️ **Validation Error:** %s\n\n", err)
		b.WriteString("Type **'confirm'** to try saving anyway, or anything else to cancel.")
		return b.String()
	}

	b.WriteString(presentation.ValidationReport(report))
	b.WriteString("\n\n")
	if report.Valid() {
		b.WriteString("✅ **Everything looks good!**\n\n")
		b.WriteString("• Type **'confirm'** to complete registration\n")
		b.WriteString("• Type anything else to cancel")
	} else {
		b.WriteString("❌ **Please fix the issues above before proceeding.**\n\n")
		b.WriteString("Type anything else to cancel and start over.")
	}
	return b.String()
}

// confirmTurn commits the draft on a confirmation reply; anything else
// cancels. A duplicate email sends the dialogue back to email collection
// with the rest of the draft intact; an I/O failure keeps the draft and the
// state so confirm can be retried.
func (d *Dialogue) confirmTurn(ctx context.Context, input string) Reply {
	if !isConfirmation(input) {
		log.Info(log.CatChat, "registration cancelled")
		d.Reset()
		return Reply{Text: cancelledText, Cancelled: true}
	}

	rec, err := d.store.Add(ctx, d.draft.Name, d.draft.Email, d.draft.DOB)
	if err == nil {
		log.Info(log.CatChat, "registration completed", "email", rec.Email)
		d.Reset()
		return Reply{Text: completedText(rec), Completed: true, Record: rec}
	}

	if errors.Is(err, registration.ErrDuplicateEmail) {
		email := d.draft.Email
		d.draft.Email = ""
		d.state = StateAwaitingEmail
		return Reply{Text: duplicateText(email)}
	}

	var verr *registration.ValidationError
	if errors.As(err, &verr) {
		return Reply{Text: commitFailureText(presentation.RegistrationFailure(d.draft.Email, err))}
	}

	log.ErrorErr(log.CatChat, "registration commit failed", err)
	return Reply{Text: ioFailureText(err)}
}
