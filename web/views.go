// ABOUTME: View models handed to the templates, built from service snapshots on every request.
// ABOUTME: Map nodes resolve their link targets and pre-render evaluation markdown here.
package web

import (
	"html/template"

	"github.com/2389-research/corkboard/decisions"
	"github.com/2389-research/corkboard/kanban"
	"github.com/2389-research/corkboard/layout"
)

// canvasPadding is extra room past the right-most and bottom-most node.
const canvasPadding = 200

type BoardView struct {
	Columns   []kanban.Column
	HasRemote bool
	Version   int
}

type CardForm struct {
	Action      string
	ID          string
	Title       string
	Description string
	Status      kanban.Status
	Priority    kanban.Priority
	Error       string
}

type MapView struct {
	Nodes      []NodeView
	Connectors []layout.Connector
	Width      int
	Height     int
}

type NodeView struct {
	ID             string
	Question       string
	Context        string
	Status         decisions.Status
	X              int
	Y              int
	EvaluationHTML template.HTML
	Options        []OptionView
}

type OptionView struct {
	ID             string
	Text           string
	Selected       bool
	Linked         bool
	Target         string
	TargetQuestion string
}

// DecisionForm backs the new/edit dialog. Options always ends with one blank
// row so a new option can be typed in.
type DecisionForm struct {
	Action     string
	ID         string
	Question   string
	Context    string
	Evaluation string
	Status     decisions.Status
	Options    []decisions.OptionInput
	Error      string
}

// ConnectView lists the decisions an option can link to.
type ConnectView struct {
	DecisionID string
	OptionID   string
	OptionText string
	Current    string
	Targets    []decisions.Decision
}

func (s *Server) boardView() BoardView {
	return BoardView{
		Columns:   s.board.Columns(),
		HasRemote: s.board.HasRemote(),
		Version:   s.board.Stashed(),
	}
}

func (s *Server) mapView() MapView {
	ds := s.maps.Decisions()
	est := layout.EstimateFor(ds, layout.DefaultMetrics)

	questions := make(map[string]string, len(ds))
	for _, d := range ds {
		questions[d.ID] = d.Question
	}

	view := MapView{
		Nodes:      make([]NodeView, 0, len(ds)),
		Connectors: layout.Connectors(ds, est),
	}
	for _, d := range ds {
		view.Nodes = append(view.Nodes, nodeView(d, questions))
	}
	w, h := est.Extent()
	view.Width = int(w) + canvasPadding
	view.Height = int(h) + canvasPadding
	return view
}

func nodeView(d decisions.Decision, questions map[string]string) NodeView {
	nv := NodeView{
		ID:             d.ID,
		Question:       d.Question,
		Context:        d.Context,
		Status:         d.Status,
		X:              d.X,
		Y:              d.Y,
		EvaluationHTML: markdownToHTML(d.Evaluation),
		Options:        make([]OptionView, 0, len(d.Options)),
	}
	for _, o := range d.Options {
		ov := OptionView{ID: o.ID, Text: o.Text, Selected: o.Selected}
		// A link to a decision that no longer exists renders as unlinked.
		if q, ok := questions[o.Target()]; ok && o.Linked() {
			ov.Linked = true
			ov.Target = o.Target()
			ov.TargetQuestion = q
		}
		nv.Options = append(nv.Options, ov)
	}
	return nv
}

func decisionForm(d decisions.Decision) DecisionForm {
	f := DecisionForm{
		Action:     "/decisions/" + d.ID,
		ID:         d.ID,
		Question:   d.Question,
		Context:    d.Context,
		Evaluation: d.Evaluation,
		Status:     d.Status,
	}
	for _, o := range d.Options {
		f.Options = append(f.Options, decisions.OptionInput{ID: o.ID, Text: o.Text})
	}
	f.Options = append(f.Options, decisions.OptionInput{})
	return f
}
