// ABOUTME: Board is the ordered in-memory card collection and its mutation operations.
// ABOUTME: Create, Update, Delete, and Move are linear scans over a small slice; rendering partitions by column.
package kanban

import (
	"fmt"
	"strings"
	"time"
)

// CardInput carries the mutable card fields submitted by a form or tool call.
// Empty Status or Priority means "default" on create and "unchanged" on update.
type CardInput struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
}

// Column is one rendered partition of the board.
type Column struct {
	Status Status
	Title  string
	Cards  []Card
}

// Count returns the number of cards rendered in the column.
func (c Column) Count() int {
	return len(c.Cards)
}

// Board holds cards in collection order. Render order follows this order;
// nothing sorts within a column.
type Board struct {
	cards []Card
}

// NewBoard wraps an existing collection. The slice is copied.
func NewBoard(cards []Card) *Board {
	b := &Board{}
	b.Replace(cards)
	return b
}

// Replace swaps the whole collection, as on load, pull, or import.
func (b *Board) Replace(cards []Card) {
	b.cards = append(make([]Card, 0, len(cards)), cards...)
}

// Cards returns a copy of the collection in order.
func (b *Board) Cards() []Card {
	return append([]Card(nil), b.cards...)
}

// Len returns the number of cards, including ones with unknown statuses.
func (b *Board) Len() int {
	return len(b.cards)
}

// Find returns the card with the given ID.
func (b *Board) Find(id string) (Card, bool) {
	i := b.index(id)
	if i < 0 {
		return Card{}, false
	}
	return b.cards[i], true
}

func (b *Board) index(id string) int {
	for i := range b.cards {
		if b.cards[i].ID == id {
			return i
		}
	}
	return -1
}

// Create validates the input and appends a new card with a fresh ID.
// An empty title returns ErrTitleRequired and leaves the board untouched.
func (b *Board) Create(in CardInput, now time.Time) (Card, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Card{}, ErrTitleRequired
	}
	status := in.Status
	if status == "" {
		status = StatusIdeas
	}
	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if err := checkEnums(status, priority); err != nil {
		return Card{}, err
	}

	card := Card{
		ID:          NewID(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		Priority:    priority,
		CreatedAt:   now.UTC(),
	}
	b.cards = append(b.cards, card)
	return card, nil
}

// Update overwrites the mutable fields of an existing card in place.
// ID and CreatedAt never change.
func (b *Board) Update(id string, in CardInput) (Card, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Card{}, ErrTitleRequired
	}
	i := b.index(id)
	if i < 0 {
		return Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}

	card := &b.cards[i]
	// Only values the caller changes are checked, so a card loaded with an
	// unknown status or priority stays editable.
	status := card.Status
	if in.Status != "" && in.Status != card.Status {
		if !in.Status.Valid() {
			return Card{}, fmt.Errorf("%w: %q", ErrUnknownStatus, in.Status)
		}
		status = in.Status
	}
	priority := card.Priority
	if in.Priority != "" && in.Priority != card.Priority {
		if !in.Priority.Valid() {
			return Card{}, fmt.Errorf("%w: %q", ErrUnknownPriority, in.Priority)
		}
		priority = in.Priority
	}

	card.Title = title
	card.Description = strings.TrimSpace(in.Description)
	card.Status = status
	card.Priority = priority
	return *card, nil
}

// Delete removes the card with the given ID.
func (b *Board) Delete(id string) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	b.cards = append(b.cards[:i], b.cards[i+1:]...)
	return nil
}

// Move reassigns a card's column. Moving a card to the column it is already
// in reports changed=false so the caller can skip persisting.
func (b *Board) Move(id string, status Status) (changed bool, err error) {
	if !status.Valid() {
		return false, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	i := b.index(id)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	if b.cards[i].Status == status {
		return false, nil
	}
	b.cards[i].Status = status
	return true, nil
}

// Columns partitions the board into the known columns, preserving collection
// order. Cards with unknown statuses are skipped, not deleted.
func (b *Board) Columns() []Column {
	cols := make([]Column, len(Columns))
	pos := make(map[Status]int, len(Columns))
	for i, s := range Columns {
		cols[i] = Column{Status: s, Title: s.Title(), Cards: []Card{}}
		pos[s] = i
	}
	for _, c := range b.cards {
		i, ok := pos[c.Status]
		if !ok {
			continue
		}
		cols[i].Cards = append(cols[i].Cards, c)
	}
	return cols
}

func checkEnums(status Status, priority Priority) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	if !priority.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPriority, priority)
	}
	return nil
}

// Validate checks a collection read from outside the process (storage,
// network, import file). Unknown statuses and priorities are allowed since
// they only affect rendering.
func Validate(cards []Card) error {
	seen := make(map[string]bool, len(cards))
	for i, c := range cards {
		if c.ID == "" {
			return fmt.Errorf("%w: card %d has no id", ErrInvalidCard, i)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidCard, c.ID)
		}
		seen[c.ID] = true
		if strings.TrimSpace(c.Title) == "" {
			return fmt.Errorf("%w: card %q has no title", ErrInvalidCard, c.ID)
		}
	}
	return nil
}
