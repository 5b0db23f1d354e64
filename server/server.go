// Package server provides HTTP server management and lifecycle handling
// for the interactions API. It includes server setup, middleware
// configuration, route management, and graceful shutdown capabilities
// with proper error handling and logging.
package server

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giygas/interactions-api/config"
	"github.com/giygas/interactions-api/handlers"
	"github.com/giygas/interactions-api/interactions"
	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/medfiles"
	"github.com/giygas/interactions-api/metrics"
	"github.com/giygas/interactions-api/verification"
)

// Services bundles the domain services the routes depend on
type Services struct {
	DataStore    interfaces.DataStore
	Resolver     *interactions.Resolver
	Verification *verification.Service
	MedFiles     *medfiles.Service
}

// Server represents the HTTP server
type Server struct {
	server   *http.Server
	router   chi.Router
	services Services
	config   *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, services Services) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:   router,
		services: services,
		config:   cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.DefaultLoggingService.Logger))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(RateLimitHandler)
	s.router.Use(metrics.Metrics)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/", handlers.Root())
	s.router.Get("/health", handlers.HealthCheck(s.services.DataStore))
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", handlers.Stats(s.services.DataStore,
			s.config.InteractionsFile, s.config.SynonymsFile))
		r.Post("/check-interactions", handlers.CheckInteractions(s.services.Resolver))
		r.Get("/search-drug/{name}", handlers.SearchDrug(s.services.DataStore))
		r.Post("/verify-prescription", handlers.VerifyPrescription(s.services.Verification))

		r.Post("/patients/register", handlers.RegisterPatient(s.services.MedFiles))
		r.Get("/patients", handlers.ListPatients(s.services.MedFiles))
		r.Get("/doctor/patients", handlers.DoctorDashboard(s.services.MedFiles))
		r.Get("/patients/{patientId}", handlers.GetPatientProfile(s.services.MedFiles))
		r.Post("/patients/{patientId}/profile", handlers.UpdatePatientProfile(s.services.MedFiles))
		r.Post("/patients/{patientId}/files/upload",
			handlers.UploadMedicalFile(s.services.MedFiles, s.config.MaxUploadSize))
		r.Get("/patients/{patientId}/files", handlers.ListMedicalFiles(s.services.MedFiles))
		r.Post("/patients/{patientId}/summary", handlers.SummarizeFiles(s.services.MedFiles))
		r.Post("/patients/{patientId}/chat", handlers.ChatAboutPatient(s.services.MedFiles))
		r.Delete("/files/{fileId}", handlers.DeleteMedicalFile(s.services.MedFiles))
	})
}

// Start starts the server
func (s *Server) Start() error {
	// Start profiling server if in development mode
	if s.config.Env == "dev" {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	// Wait a bit for any ongoing requests to complete
	logging.Info("Waiting for ongoing requests to complete...")
	time.Sleep(2 * time.Second)

	logging.Info("Server shutdown complete")
	return nil
}

// Router exposes the configured router, used by tests
func (s *Server) Router() chi.Router {
	return s.router
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		fmt.Println("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			fmt.Println("Profiling server failed: ", err)
		}
	}()
}
