// ABOUTME: Map is the in-memory decision collection with create, edit, delete, toggle, and link operations.
// ABOUTME: Deleting a decision nulls every option link pointing at it before removal.
package decisions

import (
	"fmt"
	"strings"
)

const (
	// newNodeGap is the horizontal distance between the right-most node and
	// a newly created one.
	newNodeGap = 350
	newNodeY   = 100
	fitMargin  = 40
)

// OptionInput is one option row from the edit form. ID is empty for new rows.
type OptionInput struct {
	ID   string
	Text string
}

// Input carries the editable decision fields. An empty Status means "open"
// on create and "unchanged" on update.
type Input struct {
	Question   string
	Context    string
	Evaluation string
	Status     Status
	Options    []OptionInput
}

// Map holds decisions in collection order.
type Map struct {
	decisions []Decision
}

// NewMap wraps an existing collection. The slice is deep-copied.
func NewMap(ds []Decision) *Map {
	m := &Map{}
	m.Replace(ds)
	return m
}

// Replace swaps the whole collection.
func (m *Map) Replace(ds []Decision) {
	m.decisions = make([]Decision, len(ds))
	for i, d := range ds {
		m.decisions[i] = clone(d)
	}
}

// Decisions returns a deep copy of the collection.
func (m *Map) Decisions() []Decision {
	out := make([]Decision, len(m.decisions))
	for i, d := range m.decisions {
		out[i] = clone(d)
	}
	return out
}

// Len returns the number of decisions.
func (m *Map) Len() int {
	return len(m.decisions)
}

// Find returns a copy of the decision with the given ID.
func (m *Map) Find(id string) (Decision, bool) {
	i := m.index(id)
	if i < 0 {
		return Decision{}, false
	}
	return clone(m.decisions[i]), true
}

func (m *Map) index(id string) int {
	for i := range m.decisions {
		if m.decisions[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Map) mustIndex(id string) (int, error) {
	i := m.index(id)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrDecisionNotFound, id)
	}
	return i, nil
}

// Create validates the input and appends a decision to the right of every
// existing node.
func (m *Map) Create(in Input) (Decision, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return Decision{}, ErrQuestionRequired
	}
	status := in.Status
	if status == "" {
		status = StatusOpen
	}
	if !status.Valid() {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	fresh := make([]OptionInput, len(in.Options))
	for i, o := range in.Options {
		fresh[i] = OptionInput{Text: o.Text}
	}

	maxX := 0
	for _, d := range m.decisions {
		if d.X > maxX {
			maxX = d.X
		}
	}

	d := Decision{
		ID:         NewID(),
		Question:   question,
		Context:    strings.TrimSpace(in.Context),
		Evaluation: strings.TrimSpace(in.Evaluation),
		Status:     status,
		X:          maxX + newNodeGap,
		Y:          newNodeY,
		Options:    buildOptions(fresh, nil),
	}
	m.decisions = append(m.decisions, d)
	return clone(d), nil
}

// Update overwrites the editable fields and replaces the options sequence.
// Options whose ID matches a pre-edit option keep its selection and link;
// every other option starts unselected and unlinked.
func (m *Map) Update(id string, in Input) (Decision, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return Decision{}, ErrQuestionRequired
	}
	i, err := m.mustIndex(id)
	if err != nil {
		return Decision{}, err
	}
	d := &m.decisions[i]

	status := in.Status
	if status == "" {
		status = d.Status
	}
	if !status.Valid() {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	d.Question = question
	d.Context = strings.TrimSpace(in.Context)
	d.Evaluation = strings.TrimSpace(in.Evaluation)
	d.Status = status
	d.Options = buildOptions(in.Options, d.Options)
	return clone(*d), nil
}

// buildOptions turns form rows into options. Blank rows are dropped; an empty
// result becomes a single placeholder option.
func buildOptions(rows []OptionInput, previous []Option) []Option {
	prev := make(map[string]Option, len(previous))
	for _, o := range previous {
		prev[o.ID] = o
	}

	used := make(map[string]bool, len(rows))
	options := make([]Option, 0, len(rows))
	for _, row := range rows {
		text := strings.TrimSpace(row.Text)
		if text == "" {
			continue
		}
		id := row.ID
		if id == "" || used[id] {
			id = NewOptionID()
		}
		used[id] = true

		opt := Option{ID: id, Text: text}
		if old, ok := prev[id]; ok {
			opt.Selected = old.Selected
			if old.LinksTo != nil {
				opt.LinksTo = strPtr(*old.LinksTo)
			}
		}
		options = append(options, opt)
	}

	if len(options) == 0 {
		options = append(options, Option{ID: NewOptionID(), Text: "Option 1"})
	}
	return options
}

// Delete removes a decision after clearing every link that points at it.
func (m *Map) Delete(id string) error {
	i, err := m.mustIndex(id)
	if err != nil {
		return err
	}
	for di := range m.decisions {
		for oi := range m.decisions[di].Options {
			opt := &m.decisions[di].Options[oi]
			if opt.LinksTo != nil && *opt.LinksTo == id {
				opt.LinksTo = nil
			}
		}
	}
	m.decisions = append(m.decisions[:i], m.decisions[i+1:]...)
	return nil
}

// Toggle flips one option and clears every sibling. When an option ends up
// selected on an open decision, the decision moves to leaning.
func (m *Map) Toggle(decisionID, optionID string) (Decision, error) {
	i, err := m.mustIndex(decisionID)
	if err != nil {
		return Decision{}, err
	}
	d := &m.decisions[i]
	if _, ok := d.Option(optionID); !ok {
		return Decision{}, fmt.Errorf("%w: %s/%s", ErrOptionNotFound, decisionID, optionID)
	}

	anySelected := false
	for oi := range d.Options {
		opt := &d.Options[oi]
		if opt.ID == optionID {
			opt.Selected = !opt.Selected
		} else {
			opt.Selected = false
		}
		anySelected = anySelected || opt.Selected
	}
	if anySelected && d.Status == StatusOpen {
		d.Status = StatusLeaning
	}
	return clone(*d), nil
}

// Link points an option at another decision.
func (m *Map) Link(decisionID, optionID, targetID string) (Decision, error) {
	if decisionID == targetID {
		return Decision{}, ErrSelfLink
	}
	if _, err := m.mustIndex(targetID); err != nil {
		return Decision{}, err
	}
	return m.setLink(decisionID, optionID, strPtr(targetID))
}

// Unlink clears an option's link.
func (m *Map) Unlink(decisionID, optionID string) (Decision, error) {
	return m.setLink(decisionID, optionID, nil)
}

func (m *Map) setLink(decisionID, optionID string, target *string) (Decision, error) {
	i, err := m.mustIndex(decisionID)
	if err != nil {
		return Decision{}, err
	}
	d := &m.decisions[i]
	for oi := range d.Options {
		if d.Options[oi].ID == optionID {
			d.Options[oi].LinksTo = target
			return clone(*d), nil
		}
	}
	return Decision{}, fmt.Errorf("%w: %s/%s", ErrOptionNotFound, decisionID, optionID)
}

// LinkTargets lists every decision an option of decisionID may link to.
func (m *Map) LinkTargets(decisionID string) []Decision {
	var out []Decision
	for _, d := range m.decisions {
		if d.ID != decisionID {
			out = append(out, clone(d))
		}
	}
	return out
}

// MoveNode stores a node position, clamped to non-negative coordinates.
func (m *Map) MoveNode(id string, x, y int) (Decision, error) {
	i, err := m.mustIndex(id)
	if err != nil {
		return Decision{}, err
	}
	m.decisions[i].X = max(0, x)
	m.decisions[i].Y = max(0, y)
	return clone(m.decisions[i]), nil
}

// FitOrigin returns the scroll position that brings every node into view,
// leaving a small margin. ok is false for an empty map.
func (m *Map) FitOrigin() (x, y int, ok bool) {
	if len(m.decisions) == 0 {
		return 0, 0, false
	}
	minX, minY := m.decisions[0].X, m.decisions[0].Y
	for _, d := range m.decisions[1:] {
		minX = min(minX, d.X)
		minY = min(minY, d.Y)
	}
	return max(0, minX-fitMargin), max(0, minY-fitMargin), true
}

// Validate checks a collection read from storage.
func Validate(ds []Decision) error {
	seen := make(map[string]bool, len(ds))
	for i, d := range ds {
		if d.ID == "" {
			return fmt.Errorf("%w: decision %d has no id", ErrInvalidDecision, i)
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidDecision, d.ID)
		}
		seen[d.ID] = true
		if strings.TrimSpace(d.Question) == "" {
			return fmt.Errorf("%w: decision %q has no question", ErrInvalidDecision, d.ID)
		}
		optIDs := make(map[string]bool, len(d.Options))
		for _, o := range d.Options {
			if o.ID == "" || optIDs[o.ID] {
				return fmt.Errorf("%w: decision %q has a missing or duplicate option id", ErrInvalidDecision, d.ID)
			}
			optIDs[o.ID] = true
		}
	}
	return nil
}
