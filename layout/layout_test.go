// ABOUTME: Tests for connector curves, measurement-driven connector lists, estimates, and node dragging.
// ABOUTME: Uses injected fake measurements so no rendering is needed.
package layout

import (
	"testing"

	"github.com/2389-research/corkboard/decisions"
)

func TestCurveUsesEdgesAndMidpoint(t *testing.T) {
	from := Rect{Left: 100, Top: 100, Width: 200, Height: 150}
	opt := Rect{Left: 110, Top: 180, Width: 180, Height: 20}
	to := Rect{Left: 500, Top: 300, Width: 200, Height: 100}
	vp := Viewport{Origin: Rect{Left: 10, Top: 20}, ScrollLeft: 5, ScrollTop: 40}

	start, c1, c2, end := Curve(from, opt, to, vp)

	// start: right edge (300) at option centre (190), into canvas space.
	if start != (Point{X: 300 - 10 + 5, Y: 190 - 20 + 40}) {
		t.Errorf("start = %+v", start)
	}
	// end: left edge (500) at node centre (350).
	if end != (Point{X: 500 - 10 + 5, Y: 350 - 20 + 40}) {
		t.Errorf("end = %+v", end)
	}
	midX := (start.X + end.X) / 2
	if c1 != (Point{X: midX, Y: start.Y}) || c2 != (Point{X: midX, Y: end.Y}) {
		t.Errorf("controls = %+v %+v", c1, c2)
	}
}

func TestPathData(t *testing.T) {
	got := PathData(Point{1, 2}, Point{3.333, 2}, Point{3.333, 4.5}, Point{6, 4.5})
	want := "M 1 2 C 3.33 2, 3.33 4.5, 6 4.5"
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func linkedMap() []decisions.Decision {
	target := "b"
	ghost := "ghost"
	return []decisions.Decision{
		{ID: "a", Question: "A", Options: []decisions.Option{
			{ID: "o1", Text: "to b", LinksTo: &target},
			{ID: "o2", Text: "dangling", LinksTo: &ghost},
			{ID: "o3", Text: "plain"},
		}},
		{ID: "b", Question: "B", X: 400},
	}
}

func TestConnectorsFromMeasurement(t *testing.T) {
	m := Measurement{
		Nodes: map[string]Rect{
			"a": {Left: 0, Top: 0, Width: 100, Height: 100},
			"b": {Left: 300, Top: 0, Width: 100, Height: 60},
		},
		Options: map[string]map[string]Rect{
			"a": {"o1": {Left: 0, Top: 40, Width: 100, Height: 20}},
		},
	}

	got := Connectors(linkedMap(), m)
	if len(got) != 1 {
		t.Fatalf("connectors = %d, want 1 (dangling link skipped)", len(got))
	}
	c := got[0]
	if c.From != "a" || c.Option != "o1" || c.To != "b" {
		t.Errorf("connector = %+v", c)
	}
	if c.Path != "M 100 50 C 200 50, 200 30, 300 30" {
		t.Errorf("path = %q", c.Path)
	}
}

func TestConnectorsSkipUnmeasuredElements(t *testing.T) {
	m := Measurement{
		Nodes: map[string]Rect{"a": {Width: 100, Height: 100}},
		Options: map[string]map[string]Rect{
			"a": {"o1": {Top: 40, Width: 100, Height: 20}},
		},
	}
	if got := Connectors(linkedMap(), m); len(got) != 0 {
		t.Errorf("connectors = %+v, want none when target node is not rendered", got)
	}
	if got := Connectors(linkedMap(), Measurement{}); len(got) != 0 {
		t.Errorf("connectors = %+v, want none for empty measurement", got)
	}
}

func TestEstimateLayout(t *testing.T) {
	ds := []decisions.Decision{
		{ID: "a", Question: "A", Context: "why", X: 100, Y: 50, Options: []decisions.Option{{ID: "o1"}, {ID: "o2"}}},
		{ID: "b", Question: "B", X: 500, Y: 200},
	}
	mt := DefaultMetrics
	e := EstimateFor(ds, mt)

	a, ok := e.NodeRect("a")
	if !ok {
		t.Fatal("node a not estimated")
	}
	wantHeight := mt.HeaderHeight + mt.ContextHeight + 2*mt.OptionHeight + mt.Padding
	if a.Left != 100 || a.Top != 50 || a.Width != mt.NodeWidth || a.Height != wantHeight {
		t.Errorf("node a = %+v", a)
	}

	o2, ok := e.OptionRect("a", "o2")
	if !ok {
		t.Fatal("option o2 not estimated")
	}
	if o2.Top != 50+mt.HeaderHeight+mt.ContextHeight+mt.OptionHeight {
		t.Errorf("o2.Top = %v", o2.Top)
	}
	if _, ok := e.OptionRect("b", "o1"); ok {
		t.Error("unexpected option rect for b")
	}

	w, h := e.Extent()
	if w != 500+mt.NodeWidth {
		t.Errorf("extent width = %v", w)
	}
	if h != 200+mt.HeaderHeight+mt.Padding {
		t.Errorf("extent height = %v", h)
	}
	if e.Canvas() != (Viewport{}) {
		t.Error("estimate viewport should be identity")
	}
}

func TestNodeDrag(t *testing.T) {
	vp := Viewport{Origin: Rect{Left: 50, Top: 80}, ScrollLeft: 100, ScrollTop: 0}
	node := Rect{Left: 150, Top: 180, Width: 280, Height: 200}

	d := BeginNodeDrag("a", Point{X: 160, Y: 190}, node, vp)
	if !d.Active() {
		t.Fatal("drag should be active")
	}
	if d.Offset != (Point{X: 10, Y: 10}) {
		t.Errorf("offset = %+v", d.Offset)
	}
	if d.X != 200 || d.Y != 100 {
		t.Errorf("initial position = (%d,%d), want (200,100)", d.X, d.Y)
	}

	x, y := d.Move(Point{X: 310.7, Y: 290.2}, vp)
	if x != 350 || y != 200 {
		t.Errorf("moved to (%d,%d), want (350,200)", x, y)
	}

	// Dragging past the canvas origin clamps at zero.
	x, y = d.Move(Point{X: -500, Y: 0}, vp)
	if x != 0 || y != 0 {
		t.Errorf("clamped to (%d,%d), want (0,0)", x, y)
	}

	fx, fy := d.End()
	if fx != 0 || fy != 0 || d.Active() {
		t.Errorf("End = (%d,%d) active=%v", fx, fy, d.Active())
	}
}

func TestNodeDragEndWithoutMoveKeepsPosition(t *testing.T) {
	d := BeginNodeDrag("a", Point{X: 5, Y: 5}, Rect{Left: 120, Top: 60, Width: 10, Height: 10}, Viewport{})
	x, y := d.End()
	if x != 120 || y != 60 {
		t.Errorf("End = (%d,%d), want (120,60)", x, y)
	}
}

func TestPlaceNodeShiftsNodeAndOptions(t *testing.T) {
	m := Measurement{
		Viewport: Viewport{Origin: Rect{Left: 50, Top: 80}, ScrollLeft: 100},
		Nodes: map[string]Rect{
			"a": {Left: 0, Top: 0, Width: 100, Height: 100},
			"b": {Left: 300, Top: 10, Width: 100, Height: 40},
		},
		Options: map[string]map[string]Rect{
			"a": {"o1": {Left: 10, Top: 40, Width: 80, Height: 20}},
		},
	}

	// Canvas (250, 20) is screen (250+50-100, 20+80) = (200, 100).
	placed := m.PlaceNode("a", 250, 20)
	if got := placed.Nodes["a"]; got.Left != 200 || got.Top != 100 || got.Width != 100 {
		t.Errorf("node a = %+v", got)
	}
	if got := placed.Options["a"]["o1"]; got.Left != 210 || got.Top != 140 {
		t.Errorf("option o1 = %+v", got)
	}
	if got := placed.Nodes["b"]; got.Left != 300 {
		t.Errorf("other nodes must not move, b = %+v", got)
	}
	if m.Nodes["a"].Left != 0 || m.Options["a"]["o1"].Left != 10 {
		t.Error("PlaceNode must not mutate the receiver")
	}

	if same := m.PlaceNode("missing", 1, 1); same.Nodes["a"] != m.Nodes["a"] {
		t.Error("unknown node should leave the measurement alone")
	}
}
