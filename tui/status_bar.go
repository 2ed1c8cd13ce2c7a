// ABOUTME: Single-line status bar for the bottom of the terminal board.
// ABOUTME: Shows the card count and shared version next to the latest message or error.
package tui

import "fmt"

// StatusBarModel displays board status in a single line.
type StatusBarModel struct {
	cards     int
	version   int
	hasRemote bool
	message   string
	err       error
	width     int
}

// SetBoard records the card count and the last shared version seen.
func (m *StatusBarModel) SetBoard(cards, version int, hasRemote bool) {
	m.cards = cards
	m.version = version
	m.hasRemote = hasRemote
}

// SetMessage shows an informational message and clears any error.
func (m *StatusBarModel) SetMessage(msg string) {
	m.message = msg
	m.err = nil
}

// SetError shows an error in place of the message.
func (m *StatusBarModel) SetError(err error) {
	m.err = err
	m.message = ""
}

// SetWidth sets the bar width for rendering.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// Err returns the error currently shown, if any.
func (m StatusBarModel) Err() error {
	return m.err
}

// Message returns the informational message currently shown.
func (m StatusBarModel) Message() string {
	return m.message
}

// View renders the status bar.
func (m StatusBarModel) View() string {
	left := fmt.Sprintf("corkboard · %d cards", m.cards)
	if m.hasRemote {
		left += fmt.Sprintf(" · shared v%d", m.version)
	}
	switch {
	case m.err != nil:
		left += " · " + ErrorStyle.Render(m.err.Error())
	case m.message != "":
		left += " · " + m.message
	}

	style := StatusBarStyle
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render(left)
}
