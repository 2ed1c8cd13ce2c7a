// ABOUTME: corkboard HTTP server: the kanban board and the decision map behind one chi router.
// ABOUTME: Pages render server-side; htmx swaps partials and a little JavaScript handles pointer dragging.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/2389-research/corkboard/app"
	"github.com/2389-research/corkboard/render"
)

// imageTTL is how long a rendered decision map image stays cached.
const imageTTL = 5 * time.Minute

// Server serves the web UI and JSON API.
type Server struct {
	board    *app.BoardService
	maps     *app.MapService
	renderer *Renderer
	images   *render.Cache
	router   chi.Router
	addr     string
}

// ServerConfig wires the server to loaded services.
type ServerConfig struct {
	Addr  string
	Board *app.BoardService
	Maps  *app.MapService

	// Render turns DOT into images for the map export. Defaults to Graphviz.
	Render render.Func
}

// NewServer parses templates and builds routes.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Board == nil || cfg.Maps == nil {
		return nil, errors.New("web server needs both a board and a decision map service")
	}
	if cfg.Addr == "" {
		cfg.Addr = app.DefaultBind
	}
	renderer, err := NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("initializing templates: %w", err)
	}
	if cfg.Render == nil {
		cfg.Render = render.Source
	}
	s := &Server{
		board:    cfg.Board,
		maps:     cfg.Maps,
		renderer: renderer,
		images:   render.NewCache(cfg.Render, imageTTL),
		addr:     cfg.Addr,
	}
	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the server on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("component=web action=listen addr=%s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Printf("component=web action=shutdown")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/board", http.StatusFound)
	})
	r.Get("/health", s.handleHealth)

	staticFS, err := fs.Sub(ContentFS, "static")
	if err != nil {
		log.Printf("component=web action=static_fs err=%v", err)
	} else {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Route("/board", func(r chi.Router) {
		r.Get("/", s.handleBoardPage)
		r.Get("/partial", s.handleBoardPartial)
		r.Get("/export.json", s.handleBoardExportJSON)
		r.Get("/export.yaml", s.handleBoardExportYAML)
		r.Post("/import", s.handleBoardImport)
		r.Post("/reload", s.handleBoardReload)

		r.Route("/cards", func(r chi.Router) {
			r.Get("/new", s.handleCardNew)
			r.Post("/", s.handleCardCreate)
			r.Get("/{cardID}/edit", s.handleCardEdit)
			r.Post("/{cardID}", s.handleCardUpdate)
			r.Delete("/{cardID}", s.handleCardDelete)
			r.Post("/{cardID}/move", s.handleCardMove)
		})
	})

	r.Route("/decisions", func(r chi.Router) {
		r.Get("/", s.handleMapPage)
		r.Get("/partial", s.handleMapPartial)
		r.Get("/new", s.handleDecisionNew)
		r.Post("/", s.handleDecisionCreate)
		r.Post("/connectors", s.handleConnectors)
		r.Get("/fit", s.handleFit)
		r.Get("/export.yaml", s.handleMapExportYAML)
		r.Get("/export.dot", s.handleMapExportDOT)
		r.Get("/export.svg", s.handleMapExportImage("svg"))
		r.Get("/export.png", s.handleMapExportImage("png"))

		r.Route("/{decisionID}", func(r chi.Router) {
			r.Get("/edit", s.handleDecisionEdit)
			r.Post("/", s.handleDecisionUpdate)
			r.Delete("/", s.handleDecisionDelete)
			r.Post("/drag/begin", s.handleDragBegin)
			r.Post("/drag/move", s.handleDragMove)
			r.Post("/drag/end", s.handleDragEnd)
			r.Post("/drag/cancel", s.handleDragCancel)

			r.Route("/options/{optionID}", func(r chi.Router) {
				r.Post("/toggle", s.handleOptionToggle)
				r.Get("/connect", s.handleOptionConnect)
				r.Post("/link", s.handleOptionLink)
				r.Delete("/link", s.handleOptionUnlink)
			})
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/cards", s.handleAPICards)
		r.Get("/decisions", s.handleAPIDecisions)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAPICards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Cards())
}

func (s *Server) handleAPIDecisions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.maps.Decisions())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("component=web action=encode_json err=%v", err)
	}
}
