// Package server exposes the chat service over HTTP: the chat page, the
// conversational endpoint, session reset, the reservation ledger, health,
// and metrics.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bitebot/internal/agent"
	"bitebot/internal/agent/ports"
	"bitebot/internal/observability"
	"bitebot/internal/session"
	"bitebot/internal/utils"
)

// TurnRunner runs one conversational turn. Satisfied by *agent.Runner.
type TurnRunner interface {
	Run(ctx context.Context, in agent.TurnInput) (*agent.TurnResult, error)
}

// Config tunes the HTTP server.
type Config struct {
	Port  int
	Debug bool
	// Ready is false when the agent could not be initialized at startup;
	// chat requests are then refused with 500 while every other route
	// stays up.
	Ready bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP layer. One shared runner serves all sessions.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server

	runner  TurnRunner
	store   ports.SessionStore
	cookies *session.CookieCodec
	metrics *observability.MetricsCollector

	ready  bool
	logger *utils.Logger
}

// New assembles the server. runner may be nil when cfg.Ready is false.
func New(cfg Config, runner TurnRunner, store ports.SessionStore, cookies *session.CookieCodec, metrics *observability.MetricsCollector) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	engine.Use(cors.New(corsConfig))

	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		// a chat turn can spend minutes in the model and its tools
		cfg.WriteTimeout = 5 * time.Minute
	}

	s := &Server{
		engine:  engine,
		runner:  runner,
		store:   store,
		cookies: cookies,
		metrics: metrics,
		ready:   cfg.Ready,
		logger:  utils.NewComponentLogger("Server"),
	}
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.POST("/chat", s.handleChat)
	s.engine.POST("/reset", s.handleReset)
	s.engine.GET("/reservations", s.handleReservations)
	s.engine.GET("/health", s.handleHealth)
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info("Listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
