// ABOUTME: HTTP handlers for the kanban board: page, card dialog, create/edit/delete/move, import, export, reload.
// ABOUTME: Mutations answer with the re-rendered board partial so htmx can swap #board in place.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/2389-research/corkboard/app"
	"github.com/2389-research/corkboard/export"
	"github.com/2389-research/corkboard/kanban"
)

// maxImportBytes caps uploaded board documents.
const maxImportBytes = 10 << 20

type pageData struct {
	Title string
	Nav   string
	Board BoardView
	Map   MapView
}

func (s *Server) handleBoardPage(w http.ResponseWriter, r *http.Request) {
	s.renderer.Page(w, "board.html", pageData{Title: "Board", Nav: "board", Board: s.boardView()})
}

func (s *Server) handleBoardPartial(w http.ResponseWriter, r *http.Request) {
	s.renderBoard(w)
}

func (s *Server) renderBoard(w http.ResponseWriter) {
	s.renderer.Partial(w, "board_partial.html", s.boardView())
}

// closeDialogAndRender re-renders the board and tells the page to close the
// card dialog.
func (s *Server) closeDialogAndRender(w http.ResponseWriter) {
	w.Header().Set("HX-Trigger", "closeDialog")
	s.renderBoard(w)
}

func (s *Server) handleCardNew(w http.ResponseWriter, r *http.Request) {
	status := kanban.Status(r.URL.Query().Get("status"))
	if !status.Valid() {
		status = kanban.StatusIdeas
	}
	s.renderer.Partial(w, "card_form.html", CardForm{
		Action:   "/board/cards",
		Status:   status,
		Priority: kanban.PriorityMedium,
	})
}

func (s *Server) handleCardEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cardID")
	card, ok := s.board.Find(id)
	if !ok {
		writeHTMLError(w, http.StatusNotFound, "card not found: "+id)
		return
	}
	s.renderer.Partial(w, "card_form.html", CardForm{
		Action:      "/board/cards/" + card.ID,
		ID:          card.ID,
		Title:       card.Title,
		Description: card.Description,
		Status:      card.Status,
		Priority:    card.Priority,
	})
}

func cardInput(r *http.Request) (kanban.CardInput, error) {
	if err := r.ParseForm(); err != nil {
		return kanban.CardInput{}, err
	}
	return kanban.CardInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Status:      kanban.Status(r.PostFormValue("status")),
		Priority:    kanban.Priority(r.PostFormValue("priority")),
	}, nil
}

func (s *Server) handleCardCreate(w http.ResponseWriter, r *http.Request) {
	in, err := cardInput(r)
	if err != nil {
		writeHTMLError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	if _, err := s.board.Create(r.Context(), in); err != nil {
		writeDomainError(w, "card_create", err)
		return
	}
	s.closeDialogAndRender(w)
}

func (s *Server) handleCardUpdate(w http.ResponseWriter, r *http.Request) {
	in, err := cardInput(r)
	if err != nil {
		writeHTMLError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	if _, err := s.board.Update(r.Context(), chi.URLParam(r, "cardID"), in); err != nil {
		writeDomainError(w, "card_update", err)
		return
	}
	s.closeDialogAndRender(w)
}

func (s *Server) handleCardDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.board.Delete(r.Context(), chi.URLParam(r, "cardID")); err != nil {
		writeDomainError(w, "card_delete", err)
		return
	}
	s.closeDialogAndRender(w)
}

func (s *Server) handleCardMove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeHTMLError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	status := kanban.Status(r.PostFormValue("status"))
	if _, err := s.board.Move(r.Context(), chi.URLParam(r, "cardID"), status); err != nil {
		writeDomainError(w, "card_move", err)
		return
	}
	s.renderBoard(w)
}

func (s *Server) handleBoardExportJSON(w http.ResponseWriter, r *http.Request) {
	data, err := json.MarshalIndent(s.board.Export(), "", "  ")
	if err != nil {
		log.Printf("component=web action=export_json err=%v", err)
		writeHTMLError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="corkboard-board.json"`)
	_, _ = w.Write(data)
}

func (s *Server) handleBoardExportYAML(w http.ResponseWriter, r *http.Request) {
	out, err := export.BoardYAML(s.board.Export())
	if err != nil {
		log.Printf("component=web action=export_yaml err=%v", err)
		writeHTMLError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="corkboard-board.yaml"`)
	_, _ = io.WriteString(w, out)
}

// importBody reads the uploaded document from a multipart "file" field, or
// from the raw request body for any other content type.
func importBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("reading upload: %w", err)
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(r.Body)
}

func (s *Server) handleBoardImport(w http.ResponseWriter, r *http.Request) {
	data, err := importBody(w, r)
	if err != nil {
		writeHTMLError(w, http.StatusBadRequest, err.Error())
		return
	}
	imp, err := s.board.Import(r.Context(), data)
	if err != nil {
		if errors.Is(err, kanban.ErrInvalidImport) {
			writeHTMLError(w, http.StatusBadRequest, "Import failed: "+err.Error())
			return
		}
		writeDomainError(w, "board_import", err)
		return
	}
	w.Header().Set("HX-Trigger", fmt.Sprintf(`{"flash":"Imported %d cards"}`, len(imp.Cards)))
	s.renderBoard(w)
}

func (s *Server) handleBoardReload(w http.ResponseWriter, r *http.Request) {
	version, err := s.board.ReloadFromRemote(r.Context())
	switch {
	case errors.Is(err, app.ErrNoRemote):
		writeHTMLError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("component=web action=board_reload err=%v", err)
		writeHTMLError(w, http.StatusBadGateway, "Could not reload the shared board: "+err.Error())
		return
	}
	w.Header().Set("HX-Trigger", fmt.Sprintf(`{"flash":"Reloaded shared board v%d"}`, version))
	s.renderBoard(w)
}
