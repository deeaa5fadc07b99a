package chatpanel

import "fmt"

// Zone ID constants for mouse click detection in the chat panel.
// Uses bubblezone for click detection on command chips and the input area.
// zoneChipPrefix is the prefix for chip zone IDs.
const zoneChipPrefix = "chatpanel-chip:"

// zoneInput is the zone ID for the input box. Clicking it focuses the input.
const zoneInput = "chatpanel-input"

// makeChipZoneID creates a zone ID for a command chip. The message ID keeps
// chips from different messages distinct.
func makeChipZoneID(messageID, command string) string {
	return fmt.Sprintf("%s%s:%s", zoneChipPrefix, messageID, command)
}

// InputZoneID returns the zone ID for the input box.
func InputZoneID() string {
	return zoneInput
}
