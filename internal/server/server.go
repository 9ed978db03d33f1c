// Package server exposes a family tree editor over HTTP.
//
// Routes:
//
//	GET    /health
//	GET    /api/tree                          snapshot JSON
//	PUT    /api/tree                          replace the tree with a snapshot
//	GET    /api/members                       members sorted by name
//	POST   /api/members                       {"name", "gender"}
//	DELETE /api/members/{id}
//	GET    /api/relations                     edges with existing targets
//	POST   /api/relations                     {"from", "type", "to"}
//	DELETE /api/relations/{from}/{type}/{to}
//	GET    /api/hierarchy?root=ID             indented text
//	GET    /api/graph.dot?detailed=true       Graphviz source
//	GET    /api/graph.svg?detailed=true       rendered diagram
//	POST   /api/refresh                       reload from storage
//
// Errors are JSON objects {"error": message, "code": code}.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/famtree/pkg/editor"
)

const (
	// maxBodyBytes bounds request bodies, including uploaded snapshots.
	maxBodyBytes = 10 << 20

	shutdownTimeout = 5 * time.Second
)

// Server serves one editor.
type Server struct {
	editor *editor.Editor
	logger *log.Logger
}

// New creates a server for ed. A nil logger discards log output.
func New(ed *editor.Editor, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{editor: ed, logger: logger}
}

// Handler returns the routed handler with middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tree", s.getTree)
		r.Put("/tree", s.putTree)

		r.Route("/members", func(r chi.Router) {
			r.Get("/", s.listMembers)
			r.Post("/", s.addMember)
			r.Delete("/{id}", s.deleteMember)
		})

		r.Route("/relations", func(r chi.Router) {
			r.Get("/", s.listRelations)
			r.Post("/", s.addRelation)
			r.Delete("/{from}/{type}/{to}", s.deleteRelation)
		})

		r.Get("/hierarchy", s.hierarchy)
		r.Get("/graph.dot", s.graphDOT)
		r.Get("/graph.svg", s.graphSVG)
		r.Post("/refresh", s.refresh)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "backend", s.editor.Backend())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
