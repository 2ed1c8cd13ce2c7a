// ABOUTME: Drag is the idle/dragging state machine for carrying a card across columns.
// ABOUTME: Dropping on the card's own column is a no-op; no intra-column order is computed.
package kanban

// Drag tracks at most one card being carried. The zero value is idle.
type Drag struct {
	cardID string
	over   Status
}

// Active reports whether a card is being dragged.
func (d *Drag) Active() bool {
	return d.cardID != ""
}

// CardID returns the dragged card's ID, or "" when idle.
func (d *Drag) CardID() string {
	return d.cardID
}

// Over returns the column the card is currently hovering, or "" if none.
func (d *Drag) Over() Status {
	return d.over
}

// Start captures a card and enters the dragging state.
func (d *Drag) Start(card Card) error {
	if d.Active() {
		return ErrDragInProgress
	}
	d.cardID = card.ID
	d.over = card.Status
	return nil
}

// Hover marks the column under the dragged card.
func (d *Drag) Hover(status Status) {
	if d.Active() {
		d.over = status
	}
}

// Drop moves the dragged card into status and returns to idle. It reports
// whether the board changed.
func (d *Drag) Drop(b *Board, status Status) (bool, error) {
	if !d.Active() {
		return false, ErrNotDragging
	}
	id := d.cardID
	d.Cancel()
	return b.Move(id, status)
}

// Cancel returns to idle without touching the board.
func (d *Drag) Cancel() {
	d.cardID = ""
	d.over = ""
}
