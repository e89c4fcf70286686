// Package api serves the workflow portfolio over HTTP with echo. Read
// endpoints are always available; catalog mutations require creator mode.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/valter-silva-au/flowfolio/internal/core"
)

// AssistantFactory starts a fresh assistant conversation.
type AssistantFactory func() core.AssistantSession

// Options configures the HTTP server.
type Options struct {
	// CreatorMode enables the endpoints that change the catalog.
	CreatorMode bool
	// NewAssistant is nil when no completion service is configured; chat
	// endpoints then answer 503.
	NewAssistant AssistantFactory
	Logger       hclog.Logger
	Version      string
	// Now is passed to the catalog editor for id minting and drives chat
	// session expiry. Defaults to time.Now.
	Now func() time.Time

	// SessionTTL drops chat sessions idle for longer. Defaults to
	// DefaultSessionTTL.
	SessionTTL time.Duration
	// MaxSessions caps the chat sessions held in memory; the least recently
	// used one is dropped first. Defaults to DefaultMaxSessions.
	MaxSessions int
	// MaxTurns caps a chat transcript. Defaults to DefaultMaxTurns.
	MaxTurns int
}

// Server holds the dependencies for the API server.
type Server struct {
	echo   *echo.Echo
	store  core.CatalogStore
	opts   Options
	logger hclog.Logger

	// sessions maps a chat session id to its *chatEntry.
	sessions *lru.Cache
}

// NewServer creates a Server and registers its routes.
func NewServer(store core.CatalogStore, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}

	s := &Server{
		echo:   echo.New(),
		store:  store,
		opts:   opts,
		logger: logger.Named("api"),
	}
	s.sessions = newSessionCache(opts.MaxSessions, s.logger)

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError

	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.HandleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/workflows", s.ListWorkflows)
	v1.GET("/workflows/:id", s.GetWorkflow)
	v1.GET("/categories", s.ListCategories)
	v1.GET("/export", s.ExportCatalog)

	v1.PUT("/workflows", s.PutWorkflow, s.requireCreatorMode)
	v1.PUT("/workflows/:id/image", s.PutWorkflowImage, s.requireCreatorMode)
	v1.DELETE("/workflows/:id", s.DeleteWorkflow, s.requireCreatorMode)

	v1.POST("/chat/sessions", s.CreateChatSession)
	v1.GET("/chat/sessions/:id", s.GetChatSession)
	v1.DELETE("/chat/sessions/:id", s.DeleteChatSession)
	v1.POST("/chat/sessions/:id/turns", s.PostChatTurn)
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
// Expired chat sessions are swept while the server runs.
func (s *Server) Start(ctx context.Context, addr string) error {
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweepLoop(sweepCtx)

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.echo,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	}
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Workflows int       `json:"workflows"`
}

// HandleHealth returns basic health status (always returns 200 OK)
// (GET /healthz)
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Service:   "folio",
		Version:   s.opts.Version,
		Workflows: s.store.Len(),
	})
}

func (s *Server) requireCreatorMode(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.opts.CreatorMode {
			return echo.NewHTTPError(http.StatusForbidden, "creator mode is disabled")
		}
		return next(c)
	}
}

// ProblemDetails represents an RFC 7807 Problem Details response.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// handleError renders every handler error as problem+json.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	detail := "internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		detail = fmt.Sprint(he.Message)
		if he.Internal != nil {
			s.logger.Error("request failed", "path", c.Path(), "status", status, "error", he.Internal)
		}
	} else {
		s.logger.Error("unhandled error", "path", c.Path(), "error", err)
	}

	problem := ProblemDetails{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	}
	body, mErr := json.Marshal(problem)
	if mErr != nil {
		s.logger.Error("encoding problem details", "error", mErr)
		c.Response().WriteHeader(http.StatusInternalServerError)
		return
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.Blob(status, "application/problem+json", body)
	}
	if err != nil {
		s.logger.Error("writing problem details", "error", err)
	}
}
