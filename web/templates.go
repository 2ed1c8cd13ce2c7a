// ABOUTME: Renderer parses the embedded page and partial templates and executes them into responses.
// ABOUTME: Each page is parsed with the base layout and every partial; partials also render standalone for htmx swaps.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/2389-research/corkboard/decisions"
	"github.com/2389-research/corkboard/kanban"
)

var pages = []string{"board.html", "decisions.html"}

// Renderer holds the parsed template sets.
type Renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
}

// NewRenderer parses every embedded template once.
func NewRenderer() (*Renderer, error) {
	funcs := buildFuncMap()

	partials, err := template.New("partials").Funcs(funcs).ParseFS(ContentFS, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse partial templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template), partials: partials}
	for _, page := range pages {
		t, err := template.New("base.html").Funcs(funcs).ParseFS(
			ContentFS,
			"templates/base.html",
			"templates/partials/*.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Page renders a full page inside the base layout.
func (r *Renderer) Page(w http.ResponseWriter, page string, data any) {
	t, ok := r.pages[page]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	r.write(w, func(buf io.Writer) error { return t.ExecuteTemplate(buf, "base.html", data) })
}

// Partial renders a single partial with no layout.
func (r *Renderer) Partial(w http.ResponseWriter, name string, data any) {
	r.write(w, func(buf io.Writer) error { return r.partials.ExecuteTemplate(buf, name, data) })
}

// write buffers the output so a template failure never sends half a page.
func (r *Renderer) write(w http.ResponseWriter, exec func(io.Writer) error) {
	var buf bytes.Buffer
	if err := exec(&buf); err != nil {
		log.Printf("component=web action=render err=%v", err)
		http.Error(w, "template render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func buildFuncMap() template.FuncMap {
	return template.FuncMap{
		"markdown":       markdownToHTML,
		"json":           jsonEncode,
		"statusLabel":    func(s decisions.Status) string { return s.Label() },
		"columnTitle":    func(s kanban.Status) string { return s.Title() },
		"decisionStatus": func() []decisions.Status { return decisions.Statuses },
		"columns":        func() []kanban.Status { return kanban.Columns },
		"priorities":     func() []kanban.Priority { return kanban.Priorities },
		"ago":            func(t time.Time) string { return relativeDate(t, time.Now()) },
	}
}

// md renders GitHub-flavored Markdown. Raw HTML in the source is omitted
// because the renderer is not configured as unsafe.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

func markdownToHTML(input string) template.HTML {
	if input == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(input), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(input))
	}
	return template.HTML(buf.String())
}

// jsonEncode marshals v for a script context. json.Marshal escapes <, > and &.
func jsonEncode(v any) (template.JS, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(data), nil
}

// relativeDate is how card timestamps read on the board: "Today",
// "Yesterday", "3 days ago", then a short date once a week has passed.
func relativeDate(t, now time.Time) string {
	days := int(now.Sub(t).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	}
	return t.Format("2 Jan")
}
