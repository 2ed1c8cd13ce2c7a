// ABOUTME: PromptModel is a one-line text prompt used for naming new cards and renaming existing ones.
// ABOUTME: Wraps bubbles/textinput; the board model decides what a submitted value means.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PromptModel collects a single line of text.
type PromptModel struct {
	textInput textinput.Model
	question  string
	active    bool
}

// NewPromptModel creates an idle prompt.
func NewPromptModel() PromptModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200
	return PromptModel{textInput: ti}
}

// Open activates the prompt with a question and an initial value.
func (m *PromptModel) Open(question, value string) {
	m.question = question
	m.active = true
	m.textInput.SetValue(value)
	m.textInput.CursorEnd()
	m.textInput.Focus()
}

// Close deactivates the prompt and clears it.
func (m *PromptModel) Close() {
	m.active = false
	m.question = ""
	m.textInput.SetValue("")
	m.textInput.Blur()
}

// Submit returns the trimmed value and closes the prompt.
func (m *PromptModel) Submit() string {
	v := strings.TrimSpace(m.textInput.Value())
	m.Close()
	return v
}

// IsActive reports whether the prompt is showing.
func (m PromptModel) IsActive() bool {
	return m.active
}

// Value returns the current text.
func (m PromptModel) Value() string {
	return m.textInput.Value()
}

// Update forwards key input to the text field.
func (m PromptModel) Update(msg tea.Msg) (PromptModel, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the prompt box, or nothing when idle.
func (m PromptModel) View() string {
	if !m.active {
		return ""
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.question))
	b.WriteString("\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("enter to save · esc to cancel"))
	return PromptStyle.Render(b.String())
}
