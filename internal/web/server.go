// Package web serves the form, battle and profile views and streams battles over a
// websocket.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/pefman/health-duel/internal/battle"
	"github.com/pefman/health-duel/internal/fallback"
	"github.com/pefman/health-duel/internal/form"
	"github.com/pefman/health-duel/internal/profile"
	"github.com/pefman/health-duel/internal/session"
	"github.com/pefman/health-duel/internal/stats"
)

//go:embed templates/*.html
var templateFS embed.FS

// Deps are the collaborators handed to the server at construction.
type Deps struct {
	Runner    *battle.Runner
	Matches   battle.Fetcher
	Collector *form.Collector
	Viewer    *profile.Viewer
	Sessions  session.Store
	Tally     *stats.Tally
	Fallback  fallback.Data
	Origin    string
	// Base bounds in-flight battles; cancelling it stops them. Defaults to
	// context.Background().
	Base context.Context
}

type Server struct {
	runner    *battle.Runner
	matches   battle.Fetcher
	collector *form.Collector
	viewer    *profile.Viewer
	sessions  session.Store
	tally     *stats.Tally
	fallback  fallback.Data
	origin    string
	base      context.Context

	tmpl     *template.Template
	upgrader websocket.Upgrader
}

func New(d Deps) (*Server, error) {
	if d.Runner == nil || d.Matches == nil || d.Collector == nil || d.Viewer == nil {
		return nil, errors.New("web: runner, matches, collector and viewer are required")
	}
	if d.Sessions == nil {
		d.Sessions = session.NewCookieStore("")
	}
	if d.Base == nil {
		d.Base = context.Background()
	}
	if d.Tally == nil {
		d.Tally = stats.NewTally()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		runner:    d.Runner,
		matches:   d.Matches,
		collector: d.Collector,
		viewer:    d.Viewer,
		sessions:  d.Sessions,
		tally:     d.Tally,
		fallback:  d.Fallback,
		origin:    d.Origin,
		base:      d.Base,
		tmpl:      tmpl,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
	}, nil
}

// Routes wires every endpoint on a gorilla/mux router.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/form", s.handleFormPage).Methods(http.MethodGet)
	r.HandleFunc("/form", s.handleFormSubmit).Methods(http.MethodPost)
	r.HandleFunc("/battle", s.handleBattlePage).Methods(http.MethodGet)
	r.HandleFunc("/battle/ws", s.handleBattleWS).Methods(http.MethodGet)
	r.HandleFunc("/profile/{id}", s.handleProfilePage).Methods(http.MethodGet)
	r.HandleFunc("/session/clear", s.handleSessionClear).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/form/progress", s.handleProgress).Methods(http.MethodGet)
	api.HandleFunc("/profile/{id}/invite", s.handleInvite).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	r.Use(logRequests)
	return r
}
