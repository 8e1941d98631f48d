// Package httpserver wires the services into one HTTP API: middleware
// chain, routes and the storage backend.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mealvoice/server/internal/ai"
	"github.com/mealvoice/server/internal/auth"
	"github.com/mealvoice/server/internal/blob"
	"github.com/mealvoice/server/internal/config"
	"github.com/mealvoice/server/internal/estimate"
	"github.com/mealvoice/server/internal/meallog"
	"github.com/mealvoice/server/internal/profiles"
	"github.com/mealvoice/server/internal/reports"
	"github.com/mealvoice/server/internal/speech"
	"github.com/mealvoice/server/internal/storage"
	"github.com/mealvoice/server/internal/storage/memory"
	"github.com/mealvoice/server/internal/storage/postgres"
	"github.com/mealvoice/server/internal/transcribe"
)

// Server is the HTTP API server.
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        storage.Storage
	authMiddleware *auth.Middleware
	mealLog        *meallog.Service
}

// New builds the server: storage backend, providers, services, routes.
func New(cfg *config.Config) (*Server, error) {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	s.initStorage()

	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

// initStorage picks Postgres when DATABASE_URL resolves, falling back to
// the in-memory backend so local development works without a database.
func (s *Server) initStorage() {
	if s.config.DatabaseURL == "" {
		slog.Info("using in-memory storage")
		s.storage = memory.New()
		return
	}

	slog.Info("connecting to PostgreSQL")
	pgStorage, err := postgres.New(context.Background(), s.config.DatabaseURL)
	if err != nil {
		slog.Error("PostgreSQL connection failed, falling back to in-memory storage", "error", err)
		s.storage = memory.New()
		return
	}
	slog.Info("PostgreSQL connected")
	s.storage = pgStorage
}

func (s *Server) routes() error {
	// Health check (no auth required)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Prometheus metrics
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// Auth API
	authService := auth.NewService(s.config)
	authHandler := auth.NewHandler(s.config, authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)

	// POST /v1/auth/dev - local dev token
	s.mux.HandleFunc("POST /v1/auth/dev", authHandler.HandleDevAuth)

	// Profile API
	profileService := profiles.NewService(s.storage.GetUserProfilesStorage())
	profileHandler := profiles.NewHandler(profileService)
	s.mux.HandleFunc("GET /v1/profile", profileHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/profile", profileHandler.HandleUpsert)

	// Estimation provider (AI_MODE: mock | openai | gemini)
	aiProvider, err := ai.NewProvider(context.Background(), s.config)
	if err != nil {
		return fmt.Errorf("estimation provider init failed: %w", err)
	}

	// POST /v1/meals/estimate - free-text nutrition estimation
	estimateService := estimate.NewService(aiProvider)
	estimateHandler := estimate.NewHandler(estimateService)
	s.mux.HandleFunc("POST /v1/meals/estimate", estimateHandler.HandleEstimate)

	// Transcription (SPEECH_MODE: mock | openai), with optional clip archive
	transcriber := speech.NewTranscriber(s.config)
	audioArchive, _, err := blob.NewAudioArchive(s.config, log.Default())
	if err != nil {
		return fmt.Errorf("audio archive init failed: %w", err)
	}

	// POST /v1/transcribe - base64 audio to transcript
	transcribeService := transcribe.NewService(transcriber, audioArchive, s.config.MaxAudioBytes, slog.Default())
	transcribeHandler := transcribe.NewHandler(transcribeService)
	s.mux.HandleFunc("POST /v1/transcribe", transcribeHandler.HandleTranscribe)

	// Meal log API
	s.mealLog = meallog.NewService(
		s.storage.GetMealLogStorage(),
		estimateService,
		transcriber,
		profileService,
		slog.Default(),
	)
	mealHandler := meallog.NewHandler(s.mealLog)
	s.mux.HandleFunc("POST /v1/meals", mealHandler.HandleSubmit)
	s.mux.HandleFunc("GET /v1/meals/daily", mealHandler.HandleDaily)
	s.mux.HandleFunc("DELETE /v1/meals/{id}", mealHandler.HandleDelete)

	// Reports API
	reportsService := reports.NewService(
		s.storage.GetMealLogStorage(),
		profileService,
		s.config.ReportsMaxRangeDays,
	)
	reportsHandler := reports.NewHandler(reportsService)
	s.mux.HandleFunc("GET /v1/reports/daily", reportsHandler.HandleDaily)

	return nil
}

// Handler returns the full middleware chain around the router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = s.authMiddleware.RequireAuth(handler)
	handler = MetricsMiddleware(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// Start runs the server until the listener fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("HTTP server listening", "addr", addr)
	return httpServer.ListenAndServe()
}

// Close waits for in-flight meal pipelines and releases the storage
// backend.
func (s *Server) Close() error {
	if s.mealLog != nil {
		s.mealLog.Wait()
	}
	return s.storage.Close()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
