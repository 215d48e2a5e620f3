// Package server serves the Employee Lifecycle portal: the login page, the
// session-gated dashboard and a development proxy to the backend API.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/employee-lifecycle/portal/internal/auth"
	"github.com/employee-lifecycle/portal/internal/client"
	"github.com/employee-lifecycle/portal/internal/config"
	"github.com/employee-lifecycle/portal/internal/models"
	"github.com/employee-lifecycle/portal/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Authenticator is the subset of the auth service the pages depend on
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.User, error)
	Logout(ctx context.Context) error
	GetMe(ctx context.Context) (*models.User, error)
}

// AuthFactory builds an Authenticator bound to one browser session's cookie jar
type AuthFactory func(jar http.CookieJar) (Authenticator, error)

// NewAuthFactory returns a factory calling the configured backend
func NewAuthFactory(cfg config.BackendConfig) AuthFactory {
	return func(jar http.CookieJar) (Authenticator, error) {
		c, err := client.New(cfg.APIBaseURL(),
			client.WithCookieJar(jar),
			client.WithTimeout(cfg.Timeout),
		)
		if err != nil {
			return nil, err
		}
		return auth.NewService(c), nil
	}
}

// Server represents the portal HTTP server
type Server struct {
	router   *gin.Engine
	config   *config.Config
	logger   zerolog.Logger
	sessions *session.Registry
	sweeper  *session.Sweeper
	newAuth  AuthFactory
	version  string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	registry := session.NewRegistry(cfg.Session.IdleTimeout, zlog)

	sweeper, err := session.NewSweeper(registry, cfg.Session.SweepSchedule, zlog)
	if err != nil {
		return nil, err
	}

	server := &Server{
		config:   cfg,
		logger:   zlog,
		sessions: registry,
		sweeper:  sweeper,
		newAuth:  NewAuthFactory(cfg.Backend),
		version:  version,
	}

	if err := server.setupRouter(); err != nil {
		return nil, err
	}

	return server, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() error {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	s.router.SetHTMLTemplate(tmpl)

	// Health check endpoint (no session required)
	s.router.GET("/health", s.healthCheck)

	// Development proxy so browser code can use the relative API root
	if s.config.Backend.ProxyEnabled {
		proxy, err := newAPIProxy(s.config.Backend, s.logger)
		if err != nil {
			return err
		}

		api := s.router.Group(s.config.Backend.BasePath)
		if len(s.config.HTTP.AllowedOrigins) > 0 {
			api.Use(cors.New(cors.Config{
				AllowOrigins:     s.config.HTTP.AllowedOrigins,
				AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
				AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", client.CSRFHeaderName},
				ExposeHeaders:    []string{"Content-Length"},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			}))
		}
		api.Any("/*path", gin.WrapH(proxy))
	}

	// Browser pages. Only the login form starts a portal session.
	pages := s.router.Group("/")
	pages.Use(noStoreMiddleware())
	{
		login := pages.Group("/")
		login.Use(s.sessionMiddleware(true))
		{
			login.GET(loginPath, s.loginPage)
			login.POST(loginPath, s.submitLogin)
		}

		pages.POST("/logout", s.sessionMiddleware(false), s.logout)

		protected := pages.Group("/")
		protected.Use(s.sessionMiddleware(false), s.RequireAuth(""))
		{
			protected.GET("/", func(c *gin.Context) {
				c.Redirect(http.StatusFound, landingPath)
			})
			protected.GET(landingPath, s.dashboardPage)
		}
	}

	// Anything else lands on the dashboard, which the guard protects
	s.router.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, landingPath)
	})

	return nil
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "lifecycle-portal",
		"version":   s.version,
		"sessions":  s.sessions.Len(),
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM
func (s *Server) Start() error {
	addr := s.config.HTTP.Addr

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
		// Login waits on the backend, bounded by the API timeout
		ReadTimeout:       s.config.Backend.Timeout + 15*time.Second,
		WriteTimeout:      s.config.Backend.Timeout + 15*time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.sweeper.Start()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Str("backend", s.config.Backend.URL).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-sigChan:
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	case err := <-errChan:
		s.logger.Error().Err(err).Msg("HTTP server error")
		s.sweeper.Stop(context.Background())
		return err
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.sweeper.Stop(shutdownCtx)
	s.logger.Info().Int("sessions", s.sessions.Len()).Msg("Server shutdown complete")

	return nil
}
