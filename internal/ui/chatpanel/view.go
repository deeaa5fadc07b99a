package chatpanel

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"

	"rollcall/internal/ui/styles"
)

// View renders the transcript viewport stacked above the input box.
func (m Model) View() string {
	if m.width < 1 || m.height < 1 {
		return ""
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.renderInput(),
	)
}

// renderInput renders the bordered input box. The border brightens to the
// accent color when focused.
func (m Model) renderInput() string {
	style := styles.InputBorderStyle
	if m.focused {
		style = styles.InputBorderFocusedStyle
	}

	box := style.Width(max(m.width-2, 1)).Render(m.input.View())
	return zone.Mark(zoneInput, box)
}

// renderTranscript renders all messages, plus the thinking indicator while
// a turn is in flight. Blocks are separated by one blank line.
func (m Model) renderTranscript() string {
	blocks := make([]string, 0, len(m.messages)+1)
	for _, msg := range m.messages {
		blocks = append(blocks, m.renderMessage(msg))
	}

	if m.thinking {
		// Styles are built at render time so theme changes take effect
		spinnerStyle := lipgloss.NewStyle().Foreground(styles.SpinnerColor)
		frame := spinnerFrames[m.spinnerFrame%len(spinnerFrames)]
		blocks = append(blocks, spinnerStyle.Render(frame+" thinking..."))
	}

	return strings.Join(blocks, "\n\n")
}

// renderMessage renders one message: a label header, the body, and the
// chip row for bot messages that carry chips.
func (m Model) renderMessage(msg Message) string {
	var b strings.Builder
	b.WriteString(m.renderHeader(msg))
	b.WriteString("\n")
	b.WriteString(m.renderBody(msg))

	if len(msg.Chips) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderChips(msg))
	}

	return b.String()
}

// renderHeader renders the role label with an optional HH:MM timestamp.
func (m Model) renderHeader(msg Message) string {
	label := styles.UserLabelStyle.Render("You")
	if msg.Role == RoleBot {
		label = styles.BotLabelStyle.Render(m.cfg.BotLabel)
	}

	if m.cfg.ShowTimestamps && !msg.Time.IsZero() {
		return label + " " + styles.TimestampStyle.Render(msg.Time.Format("15:04"))
	}
	return label
}

// renderBody renders bot messages through glamour, falling back to plain
// word-wrapped text when the renderer is unavailable or fails.
func (m Model) renderBody(msg Message) string {
	if msg.Role == RoleBot && m.mdRenderer != nil {
		if rendered, err := m.mdRenderer.Render(msg.Content); err == nil {
			return strings.TrimSpace(rendered)
		}
	}

	return wordwrap.String(msg.Content, m.wrapWidth())
}

// renderChips renders clickable command buttons, each wrapped in a zone
// keyed by the message ID so clicks resolve to the right chip.
func (m Model) renderChips(msg Message) string {
	chipStyle := lipgloss.NewStyle().
		Foreground(styles.AccentColor).
		Bold(true)

	chips := make([]string, 0, len(msg.Chips))
	for _, chip := range msg.Chips {
		rendered := chipStyle.Render("[ " + chip + " ]")
		chips = append(chips, zone.Mark(makeChipZoneID(msg.ID, chip), rendered))
	}
	return strings.Join(chips, " ")
}
