// ABOUTME: Card is a kanban record with a status column, priority, and creation time.
// ABOUTME: Defines the fixed column and priority sets plus the ULID-based ID generator.
package kanban

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Status is a column key. A card's status decides which column renders it.
type Status string

const (
	StatusIdeas      Status = "ideas"
	StatusBacklog    Status = "backlog"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Priority drives visual styling only. The set is ordered low < medium < high.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Columns lists every known column in display order.
var Columns = []Status{StatusIdeas, StatusBacklog, StatusInProgress, StatusDone}

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

var columnTitles = map[Status]string{
	StatusIdeas:      "Ideas",
	StatusBacklog:    "Backlog",
	StatusInProgress: "In Progress",
	StatusDone:       "Done",
}

// Valid reports whether s is a known column key.
func (s Status) Valid() bool {
	_, ok := columnTitles[s]
	return ok
}

// Title returns the column heading, or the raw key for unknown statuses.
func (s Status) Title() string {
	if t, ok := columnTitles[s]; ok {
		return t
	}
	return string(s)
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Rank returns the position of p in Priorities, or -1 when unknown.
func (p Priority) Rank() int {
	for i, known := range Priorities {
		if p == known {
			return i
		}
	}
	return -1
}

// Next cycles to the following priority, wrapping from high back to low.
func (p Priority) Next() Priority {
	r := p.Rank()
	return Priorities[(r+1)%len(Priorities)]
}

// Card is one kanban record. JSON keys match the shared snapshot document.
type Card struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewID returns a fresh time-ordered card ID.
func NewID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
