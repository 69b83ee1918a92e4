// Package http provides the HTTP adapter over the application layer.
// This is a thin layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hsvida/incident-workflow/internal/application/port"
	"github.com/hsvida/incident-workflow/internal/application/service"
	"github.com/hsvida/incident-workflow/internal/report"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host          string
	Port          int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxUploadSize int64
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:          "0.0.0.0",
		Port:          8080,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,
		MaxUploadSize: 16 << 20,
	}
}

// Services groups the application services the adapter exposes.
type Services struct {
	Intake         service.IntakeService
	Classification service.ClassificationService
	Execution      service.ExecutionService
	Review         service.ReviewService
	Approval       service.ApprovalService
	Report         service.ReportService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	users      port.UserRepository
	exporter   *report.RegisterExporter
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	services Services,
	users port.UserRepository,
	exporter *report.RegisterExporter,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		services: services,
		users:    users,
		exporter: exporter,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.MaxMultipartMemory = s.config.MaxUploadSize
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.users, s.exporter, s.config.MaxUploadSize, s.logger)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		// Intake and reads
		api.POST("/notifications", handlers.CreateNotification)
		api.GET("/notifications", handlers.ListNotifications)
		api.GET("/notifications/:id", handlers.GetNotification)
		api.GET("/notifications/:id/history", handlers.GetHistory)
		api.GET("/notifications/:id/actions", handlers.GetActions)
		api.GET("/notifications/:id/attachments", handlers.GetAttachments)
		api.GET("/attachments/:unique_name", handlers.DownloadAttachment)

		// Workflow operations
		api.POST("/notifications/:id/classify", handlers.Classify)
		api.POST("/notifications/:id/reject", handlers.Reject)
		api.POST("/notifications/:id/actions", handlers.RecordAction)
		api.POST("/notifications/:id/executors", handlers.AddExecutor)
		api.POST("/notifications/:id/review/accept", handlers.AcceptExecution)
		api.POST("/notifications/:id/review/reject", handlers.RejectExecution)
		api.POST("/notifications/:id/approve", handlers.Approve)
		api.POST("/notifications/:id/reprove", handlers.Reprove)

		// Users (assignment pick lists)
		api.GET("/users", handlers.ListUsers)

		// Reports
		api.GET("/reports/dashboard", handlers.GetDashboard)
		api.GET("/reports/register", handlers.GetRegister)
		api.GET("/reports/register/export", handlers.ExportRegister)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
