// ABOUTME: MapService owns the decision map, persists it, and runs the server side of node dragging.
// ABOUTME: Connectors are recomputed from whatever geometry the caller measured.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/2389-research/corkboard/decisions"
	"github.com/2389-research/corkboard/layout"
	"github.com/2389-research/corkboard/store"
)

// ErrNoDrag is returned by DragTo and EndDrag when no node is being dragged.
var ErrNoDrag = errors.New("no node drag in progress")

// ErrDragOwner is returned when a drag call names a decision other than the
// one being dragged. The drag in flight is left as it was.
var ErrDragOwner = errors.New("node drag in progress belongs to another decision")

// MapService is the decision map record store.
type MapService struct {
	mu   sync.Mutex
	kv   store.KV
	key  string
	m    *decisions.Map
	drag *layout.NodeDrag
}

// NewMapService returns an empty service. Call Load before use.
func NewMapService(kv store.KV, key string) *MapService {
	if key == "" {
		key = DefaultDecisionsKey
	}
	return &MapService{kv: kv, key: key, m: decisions.NewMap(nil)}
}

// Load reads stored decisions, or seeds and persists the starter map.
func (s *MapService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ds []decisions.Decision
	found, err := store.LoadJSON(ctx, s.kv, s.key, &ds)
	if err != nil {
		return err
	}
	if found {
		if err := decisions.Validate(ds); err != nil {
			return fmt.Errorf("%w: %s: %v", store.ErrCorrupt, s.key, err)
		}
	} else {
		ds = decisions.DefaultDecisions()
		if err := store.SaveJSON(ctx, s.kv, s.key, ds); err != nil {
			return err
		}
		log.Printf("component=app action=seed_decisions decisions=%d", len(ds))
	}
	s.m.Replace(ds)
	return nil
}

func (s *MapService) mutate(ctx context.Context, fn func() error) error {
	prev := s.m.Decisions()
	if err := fn(); err != nil {
		return err
	}
	if err := store.SaveJSON(ctx, s.kv, s.key, s.m.Decisions()); err != nil {
		s.m.Replace(prev)
		return err
	}
	return nil
}

// apply runs a single-decision mutation under the lock and persists it.
func (s *MapService) apply(ctx context.Context, fn func() (decisions.Decision, error)) (decisions.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var d decisions.Decision
	err := s.mutate(ctx, func() error {
		var err error
		d, err = fn()
		return err
	})
	if err != nil {
		return decisions.Decision{}, err
	}
	return d, nil
}

func (s *MapService) Create(ctx context.Context, in decisions.Input) (decisions.Decision, error) {
	d, err := s.apply(ctx, func() (decisions.Decision, error) { return s.m.Create(in) })
	if err == nil {
		log.Printf("component=app action=create_decision id=%s x=%d y=%d", d.ID, d.X, d.Y)
	}
	return d, err
}

func (s *MapService) Update(ctx context.Context, id string, in decisions.Input) (decisions.Decision, error) {
	return s.apply(ctx, func() (decisions.Decision, error) { return s.m.Update(id, in) })
}

func (s *MapService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate(ctx, func() error { return s.m.Delete(id) }); err != nil {
		return err
	}
	if s.drag.Active() && s.drag.ID == id {
		s.drag = nil
	}
	log.Printf("component=app action=delete_decision id=%s", id)
	return nil
}

func (s *MapService) Toggle(ctx context.Context, decisionID, optionID string) (decisions.Decision, error) {
	return s.apply(ctx, func() (decisions.Decision, error) { return s.m.Toggle(decisionID, optionID) })
}

func (s *MapService) Link(ctx context.Context, decisionID, optionID, targetID string) (decisions.Decision, error) {
	return s.apply(ctx, func() (decisions.Decision, error) { return s.m.Link(decisionID, optionID, targetID) })
}

func (s *MapService) Unlink(ctx context.Context, decisionID, optionID string) (decisions.Decision, error) {
	return s.apply(ctx, func() (decisions.Decision, error) { return s.m.Unlink(decisionID, optionID) })
}

func (s *MapService) MoveNode(ctx context.Context, id string, x, y int) (decisions.Decision, error) {
	return s.apply(ctx, func() (decisions.Decision, error) { return s.m.MoveNode(id, x, y) })
}

// BeginDrag starts dragging decision id. node is its on-screen rect at
// pointer-down. A drag already in flight is abandoned.
func (s *MapService) BeginDrag(id string, pointer layout.Point, node layout.Rect, vp layout.Viewport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m.Find(id); !ok {
		return fmt.Errorf("%w: %s", decisions.ErrDecisionNotFound, id)
	}
	s.drag = layout.BeginNodeDrag(id, pointer, node, vp)
	return nil
}

// DragTo moves the dragged node under the pointer and returns its live
// position with connectors drawn from the caller's measurement, the dragged
// node placed at that position. Nothing is persisted until EndDrag.
func (s *MapService) DragTo(id string, pointer layout.Point, m layout.Measurement) (x, y int, conns []layout.Connector, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkDrag(id); err != nil {
		return 0, 0, nil, err
	}
	x, y = s.drag.Move(pointer, m.Canvas())
	conns = layout.Connectors(s.m.Decisions(), m.PlaceNode(s.drag.ID, x, y))
	return x, y, conns, nil
}

// EndDrag writes the final position into the decision and persists it.
func (s *MapService) EndDrag(ctx context.Context, id string) (decisions.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkDrag(id); err != nil {
		return decisions.Decision{}, err
	}
	x, y := s.drag.End()
	s.drag = nil

	var d decisions.Decision
	err := s.mutate(ctx, func() error {
		var err error
		d, err = s.m.MoveNode(id, x, y)
		return err
	})
	if err != nil {
		return decisions.Decision{}, err
	}
	return d, nil
}

// CancelDrag abandons the drag of id without moving the node. Cancelling
// when nothing is being dragged is a no-op.
func (s *MapService) CancelDrag(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.drag.Active() {
		return nil
	}
	if s.drag.ID != id {
		return fmt.Errorf("%w: dragging %s, not %s", ErrDragOwner, s.drag.ID, id)
	}
	s.drag = nil
	return nil
}

// checkDrag requires an active drag of id. Callers hold s.mu.
func (s *MapService) checkDrag(id string) error {
	if !s.drag.Active() {
		return ErrNoDrag
	}
	if s.drag.ID != id {
		return fmt.Errorf("%w: dragging %s, not %s", ErrDragOwner, s.drag.ID, id)
	}
	return nil
}

// Connectors draws every resolved link using m's geometry.
func (s *MapService) Connectors(m layout.Measurer) []layout.Connector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return layout.Connectors(s.m.Decisions(), m)
}

// Estimate approximates node geometry from stored positions.
func (s *MapService) Estimate() *layout.Estimate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return layout.EstimateFor(s.m.Decisions(), layout.DefaultMetrics)
}

func (s *MapService) FitOrigin() (x, y int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.FitOrigin()
}

func (s *MapService) Decisions() []decisions.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Decisions()
}

func (s *MapService) Find(id string) (decisions.Decision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Find(id)
}

func (s *MapService) LinkTargets(id string) []decisions.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.LinkTargets(id)
}
