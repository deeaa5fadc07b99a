// Package chat implements the conversational surface: a command parser for
// idle input and a turn-based dialogue state machine that collects a
// registration draft and commits it through the store.
package chat

import "strings"

// Command is the enumerated idle-state command produced by ParseCommand.
type Command int

const (
	CommandUnknown Command = iota
	CommandRegister
	CommandList
	CommandSearch
	CommandStats
	CommandHelp
)

// String returns the string representation of the command.
func (c Command) String() string {
	switch c {
	case CommandUnknown:
		return "UNKNOWN"
	case CommandRegister:
		return "REGISTER"
	case CommandList:
		return "LIST"
	case CommandSearch:
		return "SEARCH"
	case CommandStats:
		return "STATS"
	case CommandHelp:
		return "HELP"
	default:
		return "UNKNOWN"
	}
}

// commandWords maps every accepted phrasing to its command.
var commandWords = map[string]Command{
	"register":           CommandRegister,
	"start registration": CommandRegister,
	"new registration":   CommandRegister,
	"sign up":            CommandRegister,

	"show registrations":    CommandList,
	"get all registrations": CommandList,
	"list registrations":    CommandList,
	"view all":              CommandList,

	"statistics": CommandStats,
	"stats":      CommandStats,
	"show stats": CommandStats,

	"help":     CommandHelp,
	"/help":    CommandHelp,
	"commands": CommandHelp,
}

// searchPrefix introduces a search command; the remainder is the query. A
// bare "search" with no argument is not a command.
const searchPrefix = "search "

// ParseCommand classifies one line of idle input. The query return is only
// meaningful for CommandSearch, where it carries the trimmed search argument
// in its original casing.
func ParseCommand(input string) (Command, string) {
	trimmed := strings.TrimSpace(input)
	if cmd, ok := commandWords[strings.ToLower(trimmed)]; ok {
		return cmd, ""
	}
	// EqualFold on the byte prefix only matches when those bytes are ASCII,
	// so slicing the original at the same offset is rune-safe.
	if len(trimmed) >= len(searchPrefix) && strings.EqualFold(trimmed[:len(searchPrefix)], searchPrefix) {
		return CommandSearch, strings.TrimSpace(trimmed[len(searchPrefix):])
	}
	return CommandUnknown, ""
}

// confirmWords are the accepted confirmation replies at the confirmation
// step. Anything else cancels the registration.
var confirmWords = map[string]struct{}{
	"confirm": {},
	"yes":     {},
	"y":       {},
	"correct": {},
}

func isConfirmation(input string) bool {
	_, ok := confirmWords[strings.ToLower(strings.TrimSpace(input))]
	return ok
}
