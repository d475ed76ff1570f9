// Package web serves the tile dashboard status over HTTP: an HTML table of
// all tiles, JSON for the whole daemon or a single tile, and Prometheus
// metrics.
package web

import (
	"context"
	"net"
	"net/http"

	"github.com/sweeney/tiled/internal/status"
)

// Server is the dashboard's HTTP front end. It only reads the tracker.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New builds the routes. A nil metrics handler leaves /metrics unmounted.
func New(addr string, tracker *status.Tracker, metrics http.Handler) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /index.html", s.handleDashboard)
	mux.HandleFunc("GET /index.json", s.handleStatus)
	mux.HandleFunc("GET /tiles/{name}", s.handleTile)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler exposes the routes for httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown waits for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.tracker.Snapshot())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(s.tracker.Snapshot()))
}

// handleTile serves /tiles/<name>, 404 for tiles not in the last frame.
func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	ts, ok := s.tracker.Snapshot().Tile(r.PathValue("name"))
	if !ok {
		http.Error(w, "unknown tile", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatTileJSON(ts))
}
