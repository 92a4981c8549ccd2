package http

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aescanero/signup/internal/application/directory"
)

//go:embed static
var staticFiles embed.FS

// Server represents the HTTP API server
type Server struct {
	router    *gin.Engine
	server    *http.Server
	directory *directory.Service
	logger    *zap.Logger
}

// Config holds HTTP server configuration
type Config struct {
	Addr         string
	Directory    *directory.Service
	Logger       *zap.Logger
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StreamHandler serves the roster event stream of one activity
type StreamHandler interface {
	HandleActivityStream(c *gin.Context)
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(cfg.Logger))
	router.Use(corsMiddleware())

	s := &Server{
		router:    router,
		directory: cfg.Directory,
		logger:    cfg.Logger,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("embedded static files missing: %v", err))
	}
	s.router.StaticFS("/static", http.FS(static))
	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/static/")
	})

	activities := s.router.Group("/activities")
	{
		activities.GET("", noCache(), s.handleListActivities)
		activities.POST("/:name/signup", s.handleSignup)
		activities.DELETE("/:name/participants", s.handleRemoveParticipant)
	}
}

// SetupWebSocket adds the roster stream endpoint to the server
func (s *Server) SetupWebSocket(handler StreamHandler) {
	s.router.GET("/activities/:name/ws", handler.HandleActivityStream)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}
