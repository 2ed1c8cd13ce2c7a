// ABOUTME: Connector computation for decision map links: measure element geometry, then compute cubic curves.
// ABOUTME: Measuring is an injected side effect (Measurer); curve math is pure and unit-testable.
package layout

import (
	"fmt"
	"math"
	"strconv"

	"github.com/2389-research/corkboard/decisions"
)

// Measurer reports the current on-screen geometry of rendered elements.
// A false return means the element is not in the rendered tree.
type Measurer interface {
	Canvas() Viewport
	NodeRect(decisionID string) (Rect, bool)
	OptionRect(decisionID, optionID string) (Rect, bool)
}

// Connector is one drawn edge from an option row to a target node.
type Connector struct {
	From     string `json:"from"`
	Option   string `json:"option"`
	To       string `json:"to"`
	Start    Point  `json:"start"`
	Control1 Point  `json:"control1"`
	Control2 Point  `json:"control2"`
	End      Point  `json:"end"`
	Path     string `json:"path"`
}

// Curve computes a connector from the right edge of fromNode, at the
// vertical centre of optionRow, to the left edge of toNode at its vertical
// centre. Both control points share the horizontal midpoint.
func Curve(fromNode, optionRow, toNode Rect, vp Viewport) (start, c1, c2, end Point) {
	start = vp.ToCanvas(Point{X: fromNode.Right(), Y: optionRow.CenterY()})
	end = vp.ToCanvas(Point{X: toNode.Left, Y: toNode.CenterY()})
	midX := (start.X + end.X) / 2
	c1 = Point{X: midX, Y: start.Y}
	c2 = Point{X: midX, Y: end.Y}
	return start, c1, c2, end
}

// PathData renders a cubic curve as SVG path data.
func PathData(start, c1, c2, end Point) string {
	return fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s",
		num(start.X), num(start.Y),
		num(c1.X), num(c1.Y),
		num(c2.X), num(c2.Y),
		num(end.X), num(end.Y))
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// Connectors computes every connector for the map. Options linking to a
// decision that no longer exists, or whose elements are not measured, are
// skipped silently.
func Connectors(ds []decisions.Decision, m Measurer) []Connector {
	exists := make(map[string]bool, len(ds))
	for _, d := range ds {
		exists[d.ID] = true
	}

	vp := m.Canvas()
	var out []Connector
	for _, d := range ds {
		for _, o := range d.Options {
			target := o.Target()
			if target == "" || !exists[target] {
				continue
			}
			fromRect, ok := m.NodeRect(d.ID)
			if !ok {
				continue
			}
			optRect, ok := m.OptionRect(d.ID, o.ID)
			if !ok {
				continue
			}
			toRect, ok := m.NodeRect(target)
			if !ok {
				continue
			}
			start, c1, c2, end := Curve(fromRect, optRect, toRect, vp)
			out = append(out, Connector{
				From:     d.ID,
				Option:   o.ID,
				To:       target,
				Start:    start,
				Control1: c1,
				Control2: c2,
				End:      end,
				Path:     PathData(start, c1, c2, end),
			})
		}
	}
	return out
}

// Measurement is geometry reported by the browser after measuring the live
// DOM. Options are keyed by decision ID, then option ID.
type Measurement struct {
	Viewport Viewport                   `json:"canvas"`
	Nodes    map[string]Rect            `json:"nodes"`
	Options  map[string]map[string]Rect `json:"options"`
}

func (m Measurement) Canvas() Viewport { return m.Viewport }

func (m Measurement) NodeRect(id string) (Rect, bool) {
	r, ok := m.Nodes[id]
	return r, ok
}

func (m Measurement) OptionRect(decisionID, optionID string) (Rect, bool) {
	r, ok := m.Options[decisionID][optionID]
	return r, ok
}

// PlaceNode returns a copy of m with decision id moved so its top-left sits at
// canvas position (x, y). The node's option rows shift with it.
func (m Measurement) PlaceNode(id string, x, y int) Measurement {
	node, ok := m.Nodes[id]
	if !ok {
		return m
	}
	dx := float64(x) + m.Viewport.Origin.Left - m.Viewport.ScrollLeft - node.Left
	dy := float64(y) + m.Viewport.Origin.Top - m.Viewport.ScrollTop - node.Top

	out := Measurement{
		Viewport: m.Viewport,
		Nodes:    make(map[string]Rect, len(m.Nodes)),
		Options:  make(map[string]map[string]Rect, len(m.Options)),
	}
	for k, r := range m.Nodes {
		out.Nodes[k] = r
	}
	for k, rows := range m.Options {
		out.Options[k] = rows
	}

	out.Nodes[id] = node.Offset(dx, dy)
	if rows, ok := m.Options[id]; ok {
		shifted := make(map[string]Rect, len(rows))
		for oid, r := range rows {
			shifted[oid] = r.Offset(dx, dy)
		}
		out.Options[id] = shifted
	}
	return out
}
