// Package server exposes the analysis agent and the risk manager over HTTP
// and streams new analyses to websocket subscribers.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/tradeagent/internal/analyze"
	"github.com/Alias1177/tradeagent/internal/database"
	"github.com/Alias1177/tradeagent/internal/trading/risk"
	"github.com/Alias1177/tradeagent/models"
)

const (
	Version        = "1.0.0"
	publishTimeout = 30 * time.Second
)

// SignalStore persists analyses for later review.
type SignalStore interface {
	SaveAnalysis(ctx context.Context, a *models.Analysis) error
	RecentSignals(ctx context.Context, symbol string, limit int) ([]database.StoredSignal, error)
	MarkExecuted(ctx context.Context, id string) error
}

// Notifier forwards analyses to an external channel.
type Notifier interface {
	Notify(ctx context.Context, a *models.Analysis) error
}

// Options configures the HTTP listener.
type Options struct {
	Addr         string
	GinMode      string
	AllowOrigins []string
}

// Server is the HTTP API.
type Server struct {
	agent    *analyze.Agent
	risk     *risk.Manager
	hub      *Hub
	store    SignalStore
	notifier Notifier

	opts       Options
	router     *gin.Engine
	httpServer *http.Server
	publishing sync.WaitGroup
	logger     zerolog.Logger
}

// New creates the server and registers its routes.
func New(agent *analyze.Agent, riskManager *risk.Manager, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}

	s := &Server{
		agent:  agent,
		risk:   riskManager,
		hub:    NewHub(),
		opts:   opts,
		logger: log.With().Str("component", "http_server").Logger(),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = opts.AllowOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	s.router = router
	s.setupRoutes()
	return s
}

// WithStore attaches the signal store. Call before Run.
func (s *Server) WithStore(store SignalStore) *Server {
	s.store = store
	return s
}

// WithNotifier attaches a notifier. Call before Run.
func (s *Server) WithNotifier(n Notifier) *Server {
	s.notifier = n
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router
	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)
	r.GET("/indicators", s.handleIndicators)

	r.POST("/analyze", s.handleAnalyze)
	r.POST("/analyze/timeframes", s.handleAnalyzeTimeframes)
	r.GET("/summary", s.handleSummary)
	r.GET("/history", s.handleHistory)

	r.GET("/signals", s.handleSignals)
	r.POST("/signals/:id/executed", s.handleMarkExecuted)

	riskGroup := r.Group("/risk")
	{
		riskGroup.GET("/state", s.handleRiskState)
		riskGroup.POST("/positions", s.handleOpenPosition)
		riskGroup.DELETE("/positions/:id", s.handleClosePosition)
		riskGroup.POST("/daily-reset", s.handleDailyReset)
	}

	r.GET("/ws/signals", func(c *gin.Context) {
		s.hub.serve(c.Writer, c.Request)
	})
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// pending publications.
func (s *Server) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.Run(hubCtx)

	s.httpServer = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.opts.Addr).Msg("Starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)
	s.publishing.Wait()
	return err
}

// publish streams the analysis to websocket clients, then stores and
// forwards it in the background.
func (s *Server) publish(a *models.Analysis) {
	s.hub.Broadcast(Event{
		Type:      EventNewAnalysis,
		Data:      a,
		Timestamp: time.Now().UTC(),
	})

	if s.store == nil && s.notifier == nil {
		return
	}
	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if s.store != nil {
			if err := s.store.SaveAnalysis(ctx, a); err != nil {
				s.logger.Error().Err(err).Str("analysis", a.ID).Msg("Failed to store analysis")
			}
		}
		if s.notifier != nil {
			if err := s.notifier.Notify(ctx, a); err != nil {
				s.logger.Warn().Err(err).Str("analysis", a.ID).Msg("Failed to notify")
			}
		}
	}()
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request handled")
	}
}
