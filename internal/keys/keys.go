// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the chat application. Plain keys
// belong to the input field, so every app-level action is bound to a
// control or function key that the input does not consume.
type KeyMap struct {
	// Input
	Submit key.Binding
	Escape key.Binding

	// Toggles
	ToggleTimestamps key.Binding
	ToggleTheme      key.Binding
	ToggleStatusBar  key.Binding

	// General
	Quit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Input
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear input"),
		),

		// Toggles
		ToggleTimestamps: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "toggle timestamps"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "toggle theme"),
		),
		ToggleStatusBar: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "toggle status bar"),
		),

		// General
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Escape}, // Input
		{k.ToggleTimestamps, k.ToggleTheme, k.ToggleStatusBar}, // Toggles
		{k.Quit}, // General
	}
}
