// ABOUTME: Decision and Option records for the decision map, plus status and ID helpers.
// ABOUTME: Options are owned by their decision; LinksTo is a weak edge to another decision.
package decisions

import (
	"crypto/rand"
	"errors"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Status is a manually set enumeration. The only automatic transition is
// open -> leaning when an option becomes selected.
type Status string

const (
	StatusOpen    Status = "open"
	StatusLeaning Status = "leaning"
	StatusDecided Status = "decided"
	StatusBlocked Status = "blocked"
)

// Statuses lists every status in form order.
var Statuses = []Status{StatusOpen, StatusLeaning, StatusDecided, StatusBlocked}

var statusLabels = map[Status]string{
	StatusOpen:    "Open",
	StatusLeaning: "Leaning",
	StatusDecided: "Decided",
	StatusBlocked: "Blocked",
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display label, falling back to the raw value.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

var (
	ErrQuestionRequired = errors.New("decision question is required")
	ErrDecisionNotFound = errors.New("decision not found")
	ErrOptionNotFound   = errors.New("option not found")
	ErrUnknownStatus    = errors.New("unknown decision status")
	ErrSelfLink         = errors.New("an option cannot link to its own decision")
	ErrInvalidDecision  = errors.New("invalid decision")
)

// Option is one choice within a decision.
type Option struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Selected bool    `json:"selected"`
	LinksTo  *string `json:"linksTo"`
}

// Linked reports whether the option points at another decision.
func (o Option) Linked() bool {
	return o.LinksTo != nil && *o.LinksTo != ""
}

// Target returns the linked decision ID, or "".
func (o Option) Target() string {
	if o.LinksTo == nil {
		return ""
	}
	return *o.LinksTo
}

// Decision is one node on the map.
type Decision struct {
	ID         string   `json:"id"`
	Question   string   `json:"question"`
	Context    string   `json:"context"`
	Evaluation string   `json:"evaluation,omitempty"`
	Status     Status   `json:"status"`
	X          int      `json:"x"`
	Y          int      `json:"y"`
	Options    []Option `json:"options"`
}

// Selected returns the selected option, if any.
func (d Decision) Selected() (Option, bool) {
	for _, o := range d.Options {
		if o.Selected {
			return o, true
		}
	}
	return Option{}, false
}

// Option returns the option with the given ID.
func (d Decision) Option(id string) (Option, bool) {
	for _, o := range d.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// NewID returns a fresh time-ordered decision ID.
func NewID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// NewOptionID returns an option ID that cannot collide within a decision,
// even when several are generated in the same millisecond.
func NewOptionID() string {
	return "opt-" + uuid.NewString()
}

func clone(d Decision) Decision {
	out := d
	out.Options = make([]Option, len(d.Options))
	for i, o := range d.Options {
		out.Options[i] = o
		if o.LinksTo != nil {
			target := *o.LinksTo
			out.Options[i].LinksTo = &target
		}
	}
	return out
}

func strPtr(s string) *string {
	return &s
}
