// Package web hosts the HTMX review UI around the scheduler, session
// planner and source management.
package web

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/studygenius/srs/internal/review"
	"github.com/studygenius/srs/internal/session"
	"github.com/studygenius/srs/internal/sm2"
	"github.com/studygenius/srs/internal/storage"
	srssync "github.com/studygenius/srs/internal/sync"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// Server holds the dependencies for the HTTP server.
type Server struct {
	db        *storage.DB
	reviews   *review.Service
	planner   session.Planner
	reposDir  string
	router    *http.ServeMux
	templates *template.Template
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, reviews *review.Service, planner session.Planner, reposDir string) *Server {
	tpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	s := &Server{
		db:        db,
		reviews:   reviews,
		planner:   planner,
		reposDir:  reposDir,
		router:    http.NewServeMux(),
		templates: tpl,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatalf("Failed to create sub-filesystem for static assets: %v", err)
	}
	fileServer := http.FileServer(http.FS(staticFS))

	s.router.Handle("/static/", http.StripPrefix("/static/", fileServer))
	s.router.Handle("/", fileServer)

	// HTMX-based review flow
	s.router.HandleFunc("/session", s.handleGetSession())
	s.router.HandleFunc("/review/next", s.handleGetNextCard())
	s.router.HandleFunc("/review/answer/", s.handleShowAnswer())
	s.router.HandleFunc("/review/", s.handlePostReview())

	// Source management
	s.router.HandleFunc("/sources", s.handleSources())
	s.router.HandleFunc("/sources/", s.handleDeleteSource())
	s.router.HandleFunc("/sync", s.handlePostSync())
}

// sessionView is the data behind the session summary panel.
type sessionView struct {
	DueCount int
	NewCount int
	HasCards bool
}

func (s *Server) sessionView(now time.Time) (sessionView, error) {
	due, fresh, err := s.db.CountDue(now)
	if err != nil {
		return sessionView{}, err
	}
	return sessionView{DueCount: due, NewCount: fresh, HasCards: due+fresh > 0}, nil
}

// handleGetSession renders the session summary: how many cards are waiting.
func (s *Server) handleGetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := s.sessionView(time.Now())
		if err != nil {
			slog.Error("session summary failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.templates.ExecuteTemplate(w, "session", view)
	}
}

// handleGetNextCard renders the front of the first card in the study queue.
func (s *Server) handleGetNextCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queue, err := s.planner.Build(s.db, time.Now())
		if err != nil {
			slog.Error("failed to build session", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if len(queue) == 0 {
			view, err := s.sessionView(time.Now())
			if err != nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			s.templates.ExecuteTemplate(w, "session", view)
			return
		}
		s.templates.ExecuteTemplate(w, "card_front", queue[0])
	}
}

// handleShowAnswer renders the back of a card with its grade buttons.
func (s *Server) handleShowAnswer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/review/answer/")
		card, err := s.db.GetCard(id)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		s.templates.ExecuteTemplate(w, "card_back", card)
	}
}

// handlePostReview grades a card and renders the next one in the queue.
func (s *Server) handlePostReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/review/")

		grade, err := sm2.ParseGrade(r.PostFormValue("grade"))
		if err != nil {
			http.Error(w, "Invalid grade", http.StatusBadRequest)
			return
		}

		_, err = s.reviews.Review(id, grade.Quality(), time.Now())
		switch {
		case err == nil:
		case errors.Is(err, storage.ErrNotFound):
			http.NotFound(w, r)
			return
		case errors.Is(err, storage.ErrConflict):
			http.Error(w, "Card was reviewed elsewhere, reload the session", http.StatusConflict)
			return
		default:
			slog.Error("review failed", "card", id, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		s.handleGetNextCard()(w, r)
	}
}

// handleSources handles both GET and POST for the sources page.
func (s *Server) handleSources() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.renderSourcesPage(w)
		case http.MethodPost:
			s.addSource(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) renderSourcesPage(w http.ResponseWriter) {
	sources, err := s.db.AllSources()
	if err != nil {
		slog.Error("failed to load sources", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.templates.ExecuteTemplate(w, "sources", map[string]interface{}{"Sources": sources})
}

func (s *Server) renderSourceList(w http.ResponseWriter) {
	sources, err := s.db.AllSources()
	if err != nil {
		slog.Error("failed to load sources", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.templates.ExecuteTemplate(w, "source_list", map[string]interface{}{"Sources": sources})
}

// addSource registers a new deck source and re-renders the source list.
func (s *Server) addSource(w http.ResponseWriter, r *http.Request) {
	path := r.PostFormValue("path")
	if path == "" {
		http.Error(w, "Path cannot be empty", http.StatusBadRequest)
		return
	}

	if _, err := s.db.InsertSource(path, srssync.DetectType(path)); err != nil {
		slog.Error("failed to add source", "path", path, "error", err)
		http.Error(w, "Failed to add source", http.StatusInternalServerError)
		return
	}
	s.renderSourceList(w)
}

// handleDeleteSource removes a source and re-renders the source list.
func (s *Server) handleDeleteSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		idStr := strings.TrimPrefix(r.URL.Path, "/sources/")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid source ID", http.StatusBadRequest)
			return
		}

		if err := s.db.DeleteSource(id); err != nil {
			slog.Error("failed to delete source", "id", id, "error", err)
			http.Error(w, "Failed to delete source", http.StatusInternalServerError)
			return
		}
		s.renderSourceList(w)
	}
}

// handlePostSync runs a foreground sync and re-renders the source list.
func (s *Server) handlePostSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		srssync.Run(s.db, s.reposDir, time.Now())

		s.templates.ExecuteTemplate(w, "sync_success", nil)
		s.renderSourceList(w)
	}
}
