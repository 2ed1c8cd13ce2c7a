// ABOUTME: HTTP handlers for the decision map: page, dialogs, CRUD, option toggle and linking, exports.
// ABOUTME: Node dragging and connector redraws exchange JSON geometry with decisions.js.
package web

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/2389-research/corkboard/decisions"
	"github.com/2389-research/corkboard/export"
	"github.com/2389-research/corkboard/layout"
	"github.com/2389-research/corkboard/render"
)

// maxGeometryBytes caps measurement payloads from the browser.
const maxGeometryBytes = 1 << 20

func (s *Server) handleMapPage(w http.ResponseWriter, r *http.Request) {
	s.renderer.Page(w, "decisions.html", pageData{Title: "Decisions", Nav: "decisions", Map: s.mapView()})
}

func (s *Server) handleMapPartial(w http.ResponseWriter, r *http.Request) {
	s.renderMap(w)
}

func (s *Server) renderMap(w http.ResponseWriter) {
	s.renderer.Partial(w, "map_partial.html", s.mapView())
}

func (s *Server) closeDialogAndRenderMap(w http.ResponseWriter) {
	w.Header().Set("HX-Trigger", "closeDialog")
	s.renderMap(w)
}

func (s *Server) handleDecisionNew(w http.ResponseWriter, r *http.Request) {
	s.renderer.Partial(w, "decision_form.html", DecisionForm{
		Action: "/decisions",
		Status: decisions.StatusOpen,
		Options: []decisions.OptionInput{
			{Text: "Option 1"},
			{Text: "Option 2"},
			{},
		},
	})
}

func (s *Server) handleDecisionEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "decisionID")
	d, ok := s.maps.Find(id)
	if !ok {
		writeHTMLError(w, http.StatusNotFound, "decision not found: "+id)
		return
	}
	s.renderer.Partial(w, "decision_form.html", decisionForm(d))
}

// decisionInput reads the dialog form. Options arrive as parallel
// option_id/option_text fields, one pair per row.
func decisionInput(r *http.Request) (decisions.Input, error) {
	if err := r.ParseForm(); err != nil {
		return decisions.Input{}, err
	}
	in := decisions.Input{
		Question:   r.PostFormValue("question"),
		Context:    r.PostFormValue("context"),
		Evaluation: r.PostFormValue("evaluation"),
		Status:     decisions.Status(r.PostFormValue("status")),
	}
	ids := r.PostForm["option_id"]
	for i, text := range r.PostForm["option_text"] {
		row := decisions.OptionInput{Text: text}
		if i < len(ids) {
			row.ID = ids[i]
		}
		in.Options = append(in.Options, row)
	}
	return in, nil
}

func (s *Server) handleDecisionCreate(w http.ResponseWriter, r *http.Request) {
	in, err := decisionInput(r)
	if err != nil {
		writeHTMLError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	if _, err := s.maps.Create(r.Context(), in); err != nil {
		writeDomainError(w, "decision_create", err)
		return
	}
	s.closeDialogAndRenderMap(w)
}

func (s *Server) handleDecisionUpdate(w http.ResponseWriter, r *http.Request) {
	in, err := decisionInput(r)
	if err != nil {
		writeHTMLError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	if _, err := s.maps.Update(r.Context(), chi.URLParam(r, "decisionID"), in); err != nil {
		writeDomainError(w, "decision_update", err)
		return
	}
	s.closeDialogAndRenderMap(w)
}

func (s *Server) handleDecisionDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.maps.Delete(r.Context(), chi.URLParam(r, "decisionID")); err != nil {
		writeDomainError(w, "decision_delete", err)
		return
	}
	s.closeDialogAndRenderMap(w)
}

func (s *Server) handleOptionToggle(w http.ResponseWriter, r *http.Request) {
	_, err := s.maps.Toggle(r.Context(), chi.URLParam(r, "decisionID"), chi.URLParam(r, "optionID"))
	if err != nil {
		writeDomainError(w, "option_toggle", err)
		return
	}
	s.renderMap(w)
}

// findOption resolves the decision and option named in the URL, writing a 404
// when either is missing.
func (s *Server) findOption(w http.ResponseWriter, r *http.Request) (decisions.Decision, decisions.Option, bool) {
	id := chi.URLParam(r, "decisionID")
	d, ok := s.maps.Find(id)
	if !ok {
		writeHTMLError(w, http.StatusNotFound, "decision not found: "+id)
		return decisions.Decision{}, decisions.Option{}, false
	}
	optID := chi.URLParam(r, "optionID")
	o, ok := d.Option(optID)
	if !ok {
		writeHTMLError(w, http.StatusNotFound, "option not found: "+optID)
		return decisions.Decision{}, decisions.Option{}, false
	}
	return d, o, true
}

func (s *Server) handleOptionConnect(w http.ResponseWriter, r *http.Request) {
	d, o, ok := s.findOption(w, r)
	if !ok {
		return
	}
	s.renderer.Partial(w, "connect_dialog.html", ConnectView{
		DecisionID: d.ID,
		OptionID:   o.ID,
		OptionText: o.Text,
		Current:    o.Target(),
		Targets:    s.maps.LinkTargets(d.ID),
	})
}

func (s *Server) handleOptionLink(w http.ResponseWriter, r *http.Request) {
	d, o, ok := s.findOption(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeHTMLError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	target := r.PostFormValue("target")
	var err error
	if target == "" {
		_, err = s.maps.Unlink(r.Context(), d.ID, o.ID)
	} else {
		_, err = s.maps.Link(r.Context(), d.ID, o.ID, target)
	}
	if errors.Is(err, decisions.ErrDecisionNotFound) {
		// The source was checked above, so this is the target.
		writeHTMLError(w, http.StatusBadRequest, "link target not found: "+target)
		return
	}
	if err != nil {
		writeDomainError(w, "option_link", err)
		return
	}
	s.closeDialogAndRenderMap(w)
}

func (s *Server) handleOptionUnlink(w http.ResponseWriter, r *http.Request) {
	_, err := s.maps.Unlink(r.Context(), chi.URLParam(r, "decisionID"), chi.URLParam(r, "optionID"))
	if err != nil {
		writeDomainError(w, "option_unlink", err)
		return
	}
	s.renderMap(w)
}

type dragBeginRequest struct {
	Pointer layout.Point    `json:"pointer"`
	Node    layout.Rect     `json:"node"`
	Canvas  layout.Viewport `json:"canvas"`
}

type dragMoveRequest struct {
	Pointer     layout.Point       `json:"pointer"`
	Measurement layout.Measurement `json:"measurement"`
}

type positionResponse struct {
	ID         string             `json:"id,omitempty"`
	X          int                `json:"x"`
	Y          int                `json:"y"`
	Connectors []layout.Connector `json:"connectors,omitempty"`
}

type fitResponse struct {
	X  int  `json:"x"`
	Y  int  `json:"y"`
	OK bool `json:"ok"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxGeometryBytes))
	if err == nil {
		err = json.Unmarshal(data, dst)
	}
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDragError maps a drag failure to a JSON error.
func writeDragError(w http.ResponseWriter, action string, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("component=web action=%s err=%v", action, err)
	}
	writeJSONError(w, status, err.Error())
}

func (s *Server) handleDragBegin(w http.ResponseWriter, r *http.Request) {
	var req dragBeginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "decisionID")
	if err := s.maps.BeginDrag(id, req.Pointer, req.Node, req.Canvas); err != nil {
		writeDragError(w, "drag_begin", err)
		return
	}
	d, _ := s.maps.Find(id)
	writeJSON(w, http.StatusOK, positionResponse{ID: id, X: d.X, Y: d.Y})
}

func (s *Server) handleDragMove(w http.ResponseWriter, r *http.Request) {
	var req dragMoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "decisionID")
	x, y, conns, err := s.maps.DragTo(id, req.Pointer, req.Measurement)
	if err != nil {
		writeDragError(w, "drag_move", err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{ID: id, X: x, Y: y, Connectors: conns})
}

func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	d, err := s.maps.EndDrag(r.Context(), chi.URLParam(r, "decisionID"))
	if err != nil {
		writeDragError(w, "drag_end", err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{ID: d.ID, X: d.X, Y: d.Y})
}

func (s *Server) handleDragCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.maps.CancelDrag(chi.URLParam(r, "decisionID")); err != nil {
		writeDragError(w, "drag_cancel", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleConnectors redraws every connector from geometry the browser has
// just measured.
func (s *Server) handleConnectors(w http.ResponseWriter, r *http.Request) {
	var m layout.Measurement
	if !decodeJSON(w, r, &m) {
		return
	}
	conns := s.maps.Connectors(m)
	if conns == nil {
		conns = []layout.Connector{}
	}
	writeJSON(w, http.StatusOK, conns)
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	x, y, ok := s.maps.FitOrigin()
	writeJSON(w, http.StatusOK, fitResponse{X: x, Y: y, OK: ok})
}

func (s *Server) handleMapExportYAML(w http.ResponseWriter, r *http.Request) {
	out, err := export.MapYAML(s.maps.Decisions())
	if err != nil {
		log.Printf("component=web action=export_map_yaml err=%v", err)
		writeHTMLError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="corkboard-decisions.yaml"`)
	_, _ = io.WriteString(w, out)
}

func (s *Server) handleMapExportDOT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="corkboard-decisions.dot"`)
	_, _ = io.WriteString(w, export.MapDOT(s.maps.Decisions()))
}

// handleMapExportImage renders the map through Graphviz. Without the dot
// binary the route answers 503 and the DOT export still works.
func (s *Server) handleMapExportImage(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := s.images.Render(r.Context(), export.MapDOT(s.maps.Decisions()), format)
		switch {
		case errors.Is(err, render.ErrGraphvizMissing):
			writeHTMLError(w, http.StatusServiceUnavailable, "Graphviz is not installed; use the DOT export instead.")
			return
		case err != nil:
			log.Printf("component=web action=render_map format=%s err=%v", format, err)
			writeHTMLError(w, http.StatusInternalServerError, "Could not render the decision map.")
			return
		}
		w.Header().Set("Content-Type", render.ContentType(format))
		w.Header().Set("Content-Disposition", `attachment; filename="corkboard-decisions.`+format+`"`)
		_, _ = w.Write(data)
	}
}
