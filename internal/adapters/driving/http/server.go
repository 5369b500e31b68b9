package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corpora-labs/corpora-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	authService      driving.AuthService
	userService      driving.UserService
	documentService  driving.DocumentService
	retrievalService driving.RetrievalService
	askService       driving.AskService

	// Infrastructure
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	userService driving.UserService,
	documentService driving.DocumentService,
	retrievalService driving.RetrievalService,
	askService driving.AskService,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:           http.NewServeMux(),
		version:          cfg.Version,
		authService:      authService,
		userService:      userService,
		documentService:  documentService,
		retrievalService: retrievalService,
		askService:       askService,
		db:               db,
		redisClient:      redisClient,
	}

	handler := NewLoggingMiddleware().Handler(
		NewRecoveryMiddleware().Handler(s.router))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // ask requests wait on the LLM
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/v1/auth/refresh", s.handleRefresh)

	// Setup endpoint (public, one-time use)
	s.router.HandleFunc("POST /api/v1/setup", s.handleSetup)

	// Auth endpoints (authenticated)
	s.router.Handle("POST /api/v1/auth/logout",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleLogout)))

	// User endpoints
	s.router.Handle("GET /api/v1/me",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetMe)))

	// Admin-only user management
	s.router.Handle("GET /api/v1/users",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleListUsers))))
	s.router.Handle("POST /api/v1/users",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleCreateUser))))
	s.router.Handle("DELETE /api/v1/users/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleDeleteUser))))

	// Document endpoints (admin-only for mutations)
	s.router.Handle("GET /api/v1/documents",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListDocuments)))
	s.router.Handle("POST /api/v1/documents",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleCreateDocument))))
	s.router.Handle("GET /api/v1/documents/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetDocument)))
	s.router.Handle("PUT /api/v1/documents/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleUpdateDocument))))
	s.router.Handle("DELETE /api/v1/documents/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleDeleteDocument))))

	// Retrieval endpoints (authenticated, role-filtered by the service)
	s.router.Handle("POST /api/v1/search",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSearch)))
	s.router.Handle("POST /api/v1/search/documents",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSearchDocuments)))
	s.router.Handle("POST /api/v1/ask",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleAsk)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
