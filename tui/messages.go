// ABOUTME: Bubble Tea message types for the terminal board.
// ABOUTME: Remote reloads run as commands and report back through ReloadedMsg.
package tui

// ReloadedMsg reports the outcome of a reload from the shared board.
type ReloadedMsg struct {
	Version int
	Err     error
}
