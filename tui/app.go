// ABOUTME: Top-level Bubble Tea model for the terminal board: columns side by side with a card cursor.
// ABOUTME: Cards are carried between columns with kanban.Drag; every mutation goes through the board service.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/corkboard/kanban"
)

// Board is the slice of app.BoardService the terminal board uses.
type Board interface {
	Columns() []kanban.Column
	Find(id string) (kanban.Card, bool)
	Create(ctx context.Context, in kanban.CardInput) (kanban.Card, error)
	Update(ctx context.Context, id string, in kanban.CardInput) (kanban.Card, error)
	Delete(ctx context.Context, id string) error
	Drop(ctx context.Context, d *kanban.Drag, status kanban.Status) (bool, error)
	ReloadFromRemote(ctx context.Context) (int, error)
	HasRemote() bool
	Stashed() int
}

// mode is what the next key press means.
type mode int

const (
	modeBrowse mode = iota
	modePrompt
	modeConfirmDelete
	modeConfirmReload
)

// promptKind says what a submitted prompt value is for.
type promptKind int

const (
	promptNew promptKind = iota
	promptRename
)

// AppModel is the terminal board.
type AppModel struct {
	board  Board
	ctx    context.Context
	prompt PromptModel
	status StatusBarModel

	columns []kanban.Column
	col     int
	row     int
	drag    kanban.Drag

	mode       mode
	promptKind promptKind
	width      int
	height     int
}

// NewAppModel builds the model around a loaded board.
func NewAppModel(ctx context.Context, board Board) AppModel {
	m := AppModel{
		board:  board,
		ctx:    ctx,
		prompt: NewPromptModel(),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m AppModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.status.SetWidth(msg.Width)
		return m, nil

	case ReloadedMsg:
		if msg.Err != nil {
			m.status.SetError(msg.Err)
		} else {
			m.status.SetMessage(fmt.Sprintf("reloaded shared board v%d", msg.Version))
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == modePrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

// refresh re-reads the columns and keeps the cursor inside them.
func (m *AppModel) refresh() {
	m.columns = m.board.Columns()
	n := 0
	for _, c := range m.columns {
		n += c.Count()
	}
	m.status.SetBoard(n, m.board.Stashed(), m.board.HasRemote())
	if len(m.columns) == 0 {
		m.col, m.row = 0, 0
		return
	}
	m.col = clamp(m.col, 0, len(m.columns)-1)
	m.row = clamp(m.row, 0, max(0, m.columns[m.col].Count()-1))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// current returns the card under the cursor.
func (m AppModel) current() (kanban.Card, bool) {
	if m.col >= len(m.columns) {
		return kanban.Card{}, false
	}
	cards := m.columns[m.col].Cards
	if m.row >= len(cards) {
		return kanban.Card{}, false
	}
	return cards[m.row], true
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modePrompt:
		return m.handlePromptKey(msg)
	case modeConfirmDelete, modeConfirmReload:
		return m.handleConfirmKey(msg)
	}

	if m.drag.Active() {
		return m.handleDragKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.col--
		m.refresh()
	case "right", "l":
		m.col++
		m.refresh()
	case "up", "k":
		m.row--
		m.refresh()
	case "down", "j":
		m.row++
		m.refresh()
	case " ", "enter":
		if card, ok := m.current(); ok {
			if err := m.drag.Start(card); err != nil {
				m.status.SetError(err)
			} else {
				m.status.SetMessage("carrying " + card.Title)
			}
		}
	case "n":
		m.mode = modePrompt
		m.promptKind = promptNew
		m.prompt.Open("New card in "+m.columns[m.col].Title, "")
		return m, nil
	case "e":
		if card, ok := m.current(); ok {
			m.mode = modePrompt
			m.promptKind = promptRename
			m.prompt.Open("Rename card", card.Title)
		}
	case "p":
		if card, ok := m.current(); ok {
			m.save(m.board.Update(m.ctx, card.ID, kanban.CardInput{
				Title:       card.Title,
				Description: card.Description,
				Priority:    card.Priority.Next(),
			}))
		}
	case "d":
		if card, ok := m.current(); ok {
			m.mode = modeConfirmDelete
			m.status.SetMessage(fmt.Sprintf("delete %q? (y/n)", card.Title))
		}
	case "r":
		if !m.board.HasRemote() {
			m.status.SetError(errors.New("no shared board configured"))
			return m, nil
		}
		m.mode = modeConfirmReload
		m.status.SetMessage("replace local cards with the shared board? (y/n)")
	}
	return m, nil
}

func (m AppModel) handleDragKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.col = clamp(m.col-1, 0, len(m.columns)-1)
		m.drag.Hover(m.columns[m.col].Status)
	case "right", "l":
		m.col = clamp(m.col+1, 0, len(m.columns)-1)
		m.drag.Hover(m.columns[m.col].Status)
	case " ", "enter":
		id := m.drag.CardID()
		changed, err := m.board.Drop(m.ctx, &m.drag, m.drag.Over())
		if err != nil {
			m.status.SetError(err)
			break
		}
		if changed {
			m.status.SetMessage("moved to " + m.columns[m.col].Title)
		} else {
			m.status.SetMessage("")
		}
		m.refresh()
		m.row = m.rowOf(id)
	case "esc":
		m.drag.Cancel()
		m.status.SetMessage("")
		m.refresh()
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

// rowOf returns the cursor row of card id in the current column.
func (m AppModel) rowOf(id string) int {
	for i, c := range m.columns[m.col].Cards {
		if c.ID == id {
			return i
		}
	}
	return m.row
}

func (m AppModel) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt.Close()
		m.mode = modeBrowse
		return m, nil
	case tea.KeyEnter:
		title := m.prompt.Submit()
		m.mode = modeBrowse
		switch m.promptKind {
		case promptNew:
			card, err := m.board.Create(m.ctx, kanban.CardInput{Title: title, Status: m.columns[m.col].Status})
			if m.save(card, err) {
				m.row = m.rowOf(card.ID)
			}
		case promptRename:
			if card, ok := m.current(); ok {
				m.save(m.board.Update(m.ctx, card.ID, kanban.CardInput{
					Title:       title,
					Description: card.Description,
				}))
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m AppModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirmed := msg.String() == "y" || msg.String() == "Y"
	pending := m.mode
	m.mode = modeBrowse
	if !confirmed {
		m.status.SetMessage("cancelled")
		return m, nil
	}

	switch pending {
	case modeConfirmDelete:
		if card, ok := m.current(); ok {
			if err := m.board.Delete(m.ctx, card.ID); err != nil {
				m.status.SetError(err)
			} else {
				m.status.SetMessage("deleted " + card.Title)
			}
			m.refresh()
		}
	case modeConfirmReload:
		m.status.SetMessage("reloading...")
		return m, ReloadCmd(m.ctx, m.board)
	}
	return m, nil
}

// save reports a mutation result and re-reads the board. It returns whether
// the mutation succeeded.
func (m *AppModel) save(_ kanban.Card, err error) bool {
	if err != nil {
		m.status.SetError(err)
		return false
	}
	m.status.SetMessage("saved")
	m.refresh()
	return true
}

// ReloadCmd fetches the shared board in the background.
func ReloadCmd(ctx context.Context, board Board) tea.Cmd {
	return func() tea.Msg {
		v, err := board.ReloadFromRemote(ctx)
		return ReloadedMsg{Version: v, Err: err}
	}
}

// View implements tea.Model.
func (m AppModel) View() string {
	if len(m.columns) == 0 {
		return "No columns."
	}

	colWidth := 24
	if m.width > 0 {
		colWidth = max(16, m.width/len(m.columns)-4)
	}

	rendered := make([]string, 0, len(m.columns))
	for i, c := range m.columns {
		rendered = append(rendered, m.renderColumn(i, c, colWidth))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n")
	if m.prompt.IsActive() {
		b.WriteString(m.prompt.View())
		b.WriteString("\n")
	}
	b.WriteString(m.status.View())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.help()))
	return b.String()
}

func (m AppModel) help() string {
	if m.drag.Active() {
		return "←/→ choose column · enter drop · esc cancel"
	}
	return "←/→/↑/↓ move · enter grab · n new · e rename · p priority · d delete · r reload · q quit"
}

func (m AppModel) renderColumn(i int, c kanban.Column, width int) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(c.Title))
	b.WriteString(" ")
	b.WriteString(CountStyle.Render(fmt.Sprintf("(%d)", c.Count())))
	b.WriteString("\n")

	if c.Count() == 0 {
		b.WriteString(EmptyColStyle.Render("empty"))
	}
	for r, card := range c.Cards {
		line := StyleForPriority(card.Priority).Render("●") + " " + truncate(card.Title, width-2)
		switch {
		case m.drag.CardID() == card.ID:
			line = CarriedStyle.Render("» " + truncate(card.Title, width-2))
		case i == m.col && r == m.row && !m.drag.Active():
			line = CursorStyle.Render(line)
		}
		b.WriteString(line)
		if r < len(c.Cards)-1 {
			b.WriteString("\n")
		}
	}

	style := ColumnStyle
	switch {
	case m.drag.Active() && c.Status == m.drag.Over():
		style = DropTargetStyle
	case i == m.col:
		style = ActiveColumnStyle
	}
	return style.Width(width).Render(b.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
