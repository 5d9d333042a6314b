package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/event-report/internal/config"
	"github.com/kozaktomas/event-report/internal/crop"
	"github.com/kozaktomas/event-report/internal/preview"
	"github.com/kozaktomas/event-report/internal/render"
	"github.com/kozaktomas/event-report/internal/report"
	"github.com/kozaktomas/event-report/internal/web/handlers"
	"github.com/kozaktomas/event-report/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config        *config.Config
	router        *chi.Mux
	httpServer    *http.Server
	store         *report.Store
	reportHandler *handlers.ReportHandler
}

// NewServer creates a new web server holding one report in memory.
func NewServer(cfg *config.Config) (*Server, error) {
	fonts, err := render.NewFonts()
	if err != nil {
		return nil, fmt.Errorf("loading fonts: %w", err)
	}

	r := chi.NewRouter()
	store := report.NewStore()

	s := &Server{
		config:        cfg,
		router:        r,
		store:         store,
		reportHandler: handlers.NewReportHandler(cfg, store, preview.NewDecoder(), crop.NewEditor(), fonts),
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  2 * time.Minute, // large uploads
		WriteTimeout: 5 * time.Minute, // export of long reports
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	err := s.httpServer.Shutdown(ctx)
	s.reportHandler.Close()
	if err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Store returns the report store.
func (s *Server) Store() *report.Store {
	return s.store
}
