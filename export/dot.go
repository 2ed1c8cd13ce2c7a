// ABOUTME: Exports the decision map as a Graphviz digraph: one node per decision, one edge per linked option.
// ABOUTME: Nodes are filled by status; the selected option's edge is drawn bold.
package export

import (
	"github.com/2389-research/corkboard/decisions"
	"github.com/2389-research/corkboard/dot"
)

// statusFill matches the status chips in static/app.css.
var statusFill = map[decisions.Status]string{
	decisions.StatusOpen:    "#e5e7eb",
	decisions.StatusLeaning: "#fef3c7",
	decisions.StatusDecided: "#d1fae5",
	decisions.StatusBlocked: "#fee2e2",
}

// MapGraph builds the graph for ds. Links whose target is gone are skipped.
func MapGraph(ds []decisions.Decision) *dot.Graph {
	g := dot.NewGraph("decisions")
	g.Attrs["rankdir"] = "LR"
	g.NodeDefaults["shape"] = "box"
	g.NodeDefaults["style"] = "rounded,filled"
	g.EdgeDefaults["fontsize"] = "10"

	exists := make(map[string]bool, len(ds))
	for _, d := range ds {
		exists[d.ID] = true
		attrs := map[string]string{
			"label": d.Question + "\n[" + d.Status.Label() + "]",
		}
		if fill, ok := statusFill[d.Status]; ok {
			attrs["fillcolor"] = fill
		}
		g.AddNode(&dot.Node{ID: d.ID, Attrs: attrs})
	}

	for _, d := range ds {
		for _, o := range d.Options {
			if !o.Linked() || !exists[o.Target()] {
				continue
			}
			attrs := map[string]string{"label": o.Text}
			if o.Selected {
				attrs["style"] = "bold"
				attrs["penwidth"] = "2"
			}
			g.AddEdge(&dot.Edge{From: d.ID, To: o.Target(), Attrs: attrs})
		}
	}
	return g
}

// MapDOT serializes MapGraph(ds).
func MapDOT(ds []decisions.Decision) string {
	return dot.Serialize(MapGraph(ds))
}
