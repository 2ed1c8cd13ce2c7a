// ABOUTME: Maps domain errors onto HTTP status codes and writes them as escaped HTML fragments.
// ABOUTME: Validation is 400, unknown IDs are 404, drag misuse is 409, everything else is 500.
package web

import (
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"

	"github.com/2389-research/corkboard/app"
	"github.com/2389-research/corkboard/decisions"
	"github.com/2389-research/corkboard/kanban"
)

var validationErrors = []error{
	kanban.ErrTitleRequired,
	kanban.ErrUnknownStatus,
	kanban.ErrUnknownPriority,
	kanban.ErrInvalidImport,
	decisions.ErrQuestionRequired,
	decisions.ErrUnknownStatus,
	decisions.ErrSelfLink,
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, kanban.ErrCardNotFound),
		errors.Is(err, decisions.ErrDecisionNotFound),
		errors.Is(err, decisions.ErrOptionNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrNoDrag), errors.Is(err, app.ErrDragOwner):
		return http.StatusConflict
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// writeHTMLError writes msg as an escaped error fragment htmx can swap in.
func writeHTMLError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `<p class="error-msg">%s</p>`, html.EscapeString(msg))
}

// writeDomainError classifies err and writes it. Server-side failures are
// logged and reported generically.
func writeDomainError(w http.ResponseWriter, action string, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("component=web action=%s err=%v", action, err)
		writeHTMLError(w, status, "Something went wrong saving your change.")
		return
	}
	writeHTMLError(w, status, err.Error())
}
