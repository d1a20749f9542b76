// Package httpapi exposes reminder parsing and storage over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"remindbot/reminder"
	"remindbot/remindme"
)

const shutdownTimeout = 5 * time.Second

// Store is the persistence the API needs.
type Store interface {
	AddReminder(ctx context.Context, r *reminder.Reminder, users ...string) error
	ForUser(ctx context.Context, user string) ([]*reminder.Reminder, error)
	RemoveReminder(ctx context.Context, id uuid.UUID) error
	AddUser(ctx context.Context, id uuid.UUID, user string) error
}

// Config controls the HTTP listener.
type Config struct {
	Addr string
	// Mode is a gin mode: debug, release or test.
	Mode string
	// RateLimitPerMin is the per-client request budget. Zero disables limiting.
	RateLimitPerMin int
}

// Server serves the reminder API.
type Server struct {
	engine *gin.Engine
	store  Store
	parser *remindme.Parser
	config Config
	logger *zap.Logger
	now    func() time.Time
}

// New builds the API. A nil parser uses the default remindme.Parser.
func New(store Store, p *remindme.Parser, config Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if p == nil {
		p = remindme.New()
	}
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	s := &Server{
		engine: gin.New(),
		store:  store,
		parser: p,
		config: config,
		logger: logger,
		now:    time.Now,
	}

	s.engine.Use(gin.Recovery(), s.logRequests())
	if config.RateLimitPerMin > 0 {
		s.engine.Use(newRateLimiter(config.RateLimitPerMin).middleware())
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/parse", s.parse)

		reminders := v1.Group("/reminders")
		reminders.POST("", s.createReminder)
		reminders.GET("", s.listReminders)
		reminders.DELETE("/:id", s.deleteReminder)
		reminders.POST("/:id/subscribers", s.subscribe)
	}
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is cancelled, then shuts
// the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", zap.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("HTTP API stopped")
	return nil
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}
