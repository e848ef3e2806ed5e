// Package api provides the HTTP API server for FRANK.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/franklab/frank/internal/agenda"
	"github.com/franklab/frank/internal/assistant"
	"github.com/franklab/frank/internal/logging"
	"github.com/franklab/frank/internal/profile"
	"github.com/franklab/frank/internal/project"
)

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server

	assistant *assistant.Assistant
	profile   *profile.Store
	agenda    *agenda.Store
	projects  *project.Store
	wsHub     *WebSocketHub

	token string
	log   *logging.Logger
}

// Config for the server
type Config struct {
	Port      int
	Token     string
	Assistant *assistant.Assistant
	Profile   *profile.Store
	Agenda    *agenda.Store
	Projects  *project.Store
}

// New creates a new API server
func New(cfg Config) *Server {
	s := &Server{
		assistant: cfg.Assistant,
		profile:   cfg.Profile,
		agenda:    cfg.Agenda,
		projects:  cfg.Projects,
		wsHub:     NewWebSocketHub(),
		token:     cfg.Token,
		log:       logging.WithField("component", "api"),
	}

	s.setupRouter()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRouter configures all routes
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.requireToken).Post("/ask", s.handleAsk)

		// Read-only memory dashboard
		r.Get("/dashboard/profile", s.handleDashboardProfile)
		r.Get("/dashboard/emotions", s.handleDashboardEmotions)

		r.Get("/agenda", s.handleGetAgenda)
		r.Get("/projects", s.handleGetProjects)
	})

	// WebSocket
	r.Get("/ws", s.handleWebSocket)

	s.router = r
}

// requireToken gates mutating endpoints behind the shared token. An empty
// configured token disables the check (trusted local setup).
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		if auth != "Bearer "+s.token {
			s.respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	go s.wsHub.Run()

	s.log.Info("API server starting on http://localhost%s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// BroadcastState pushes a HUD state frame to all WebSocket clients.
func (s *Server) BroadcastState(mode string, intensity float64) {
	s.wsHub.Broadcast(WebSocketMessage{
		Type:      "state",
		Data:      map[string]interface{}{"mode": mode, "intensity": intensity},
		Timestamp: time.Now(),
	})
}

// --- Response helpers ---

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(input.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "Text required")
		return
	}

	if s.assistant.IsStopPhrase(input.Text) {
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"response": "À bientôt.",
			"stop":     true,
		})
		return
	}

	reply := s.assistant.HandleTurn(r.Context(), input.Text, s.BroadcastState)

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"response": reply,
	})
}

func (s *Server) handleGetAgenda(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.agenda.Events())
}

func (s *Server) handleGetProjects(w http.ResponseWriter, r *http.Request) {
	result := map[string]interface{}{
		"projects": s.projects.List(),
	}
	if current, ok := s.projects.Current(); ok {
		result["current"] = current.ID
	}
	s.respondJSON(w, http.StatusOK, result)
}
