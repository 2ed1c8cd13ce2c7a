// ABOUTME: Sentinel errors for kanban board mutations and document parsing.
// ABOUTME: Boundary errors (snapshot, import) are classified so callers can report them distinctly.
package kanban

import "errors"

var (
	ErrTitleRequired   = errors.New("card title is required")
	ErrCardNotFound    = errors.New("card not found")
	ErrUnknownStatus   = errors.New("unknown card status")
	ErrUnknownPriority = errors.New("unknown card priority")
	ErrInvalidCard     = errors.New("invalid card")

	ErrInvalidSnapshot = errors.New("invalid board snapshot")
	ErrInvalidImport   = errors.New("invalid board import")

	ErrDragInProgress = errors.New("a card is already being dragged")
	ErrNotDragging    = errors.New("no card is being dragged")
)
