// ABOUTME: Estimate is a server-side Measurer that approximates node geometry from stored x/y positions.
// ABOUTME: Used for the first render and for exports, before any browser measurement is available.
package layout

import "github.com/2389-research/corkboard/decisions"

// Metrics are the fixed node dimensions the stylesheet targets.
type Metrics struct {
	NodeWidth     float64
	HeaderHeight  float64
	ContextHeight float64
	OptionHeight  float64
	Padding       float64
}

// DefaultMetrics matches static/app.css.
var DefaultMetrics = Metrics{
	NodeWidth:     280,
	HeaderHeight:  64,
	ContextHeight: 36,
	OptionHeight:  34,
	Padding:       12,
}

// Estimate holds approximated rectangles in canvas coordinates, so its
// viewport is the identity transform.
type Estimate struct {
	nodes   map[string]Rect
	options map[string]map[string]Rect
	width   float64
	height  float64
}

// EstimateFor lays out every decision with the given metrics.
func EstimateFor(ds []decisions.Decision, mt Metrics) *Estimate {
	e := &Estimate{
		nodes:   make(map[string]Rect, len(ds)),
		options: make(map[string]map[string]Rect, len(ds)),
	}
	for _, d := range ds {
		left, top := float64(d.X), float64(d.Y)
		header := mt.HeaderHeight
		if d.Context != "" {
			header += mt.ContextHeight
		}

		opts := make(map[string]Rect, len(d.Options))
		for i, o := range d.Options {
			opts[o.ID] = Rect{
				Left:   left + mt.Padding,
				Top:    top + header + float64(i)*mt.OptionHeight,
				Width:  mt.NodeWidth - 2*mt.Padding,
				Height: mt.OptionHeight,
			}
		}
		node := Rect{
			Left:   left,
			Top:    top,
			Width:  mt.NodeWidth,
			Height: header + float64(len(d.Options))*mt.OptionHeight + mt.Padding,
		}
		e.nodes[d.ID] = node
		e.options[d.ID] = opts
		e.width = max(e.width, node.Right())
		e.height = max(e.height, node.Bottom())
	}
	return e
}

func (e *Estimate) Canvas() Viewport { return Viewport{} }

func (e *Estimate) NodeRect(id string) (Rect, bool) {
	r, ok := e.nodes[id]
	return r, ok
}

func (e *Estimate) OptionRect(decisionID, optionID string) (Rect, bool) {
	r, ok := e.options[decisionID][optionID]
	return r, ok
}

// Extent returns the bottom-right corner of the furthest node.
func (e *Estimate) Extent() (width, height float64) {
	return e.width, e.height
}
