// Package server exposes a running session over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
	"github.com/smokyabdulrahman/prayer-clock/internal/session"
)

// Session is the part of session.Session the server drives.
type Session interface {
	Snapshot() session.Snapshot
	SetMethod(ctx context.Context, method int) error
	ForceRefresh(ctx context.Context) error
	ResolveLocation(ctx context.Context) error
}

// Options configures the server.
type Options struct {
	Addr         string
	Session      Session
	Lang         string
	TimeFormat   string
	AllowOrigins []string
	// WriteLimit throttles the POST endpoints; zero means 1 req/s.
	WriteLimit rate.Limit
	WriteBurst int
}

// Server serves the session state.
type Server struct {
	router  *gin.Engine
	addr    string
	session Session
	lang    string
	layout  string
}

// New builds the router.
func New(opts Options) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	if len(opts.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		}))
	}

	limit := opts.WriteLimit
	if limit == 0 {
		limit = 1
	}
	burst := opts.WriteBurst
	if burst <= 0 {
		burst = 3
	}

	s := &Server{
		router:  router,
		addr:    opts.Addr,
		session: opts.Session,
		lang:    opts.Lang,
		layout:  prayer.LayoutFor(opts.TimeFormat),
	}
	s.setupRoutes(rate.NewLimiter(limit, burst))
	return s
}

func (s *Server) setupRoutes(writes *rate.Limiter) {
	s.router.GET("/healthz", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		api.GET("/state", s.getState)
		api.GET("/next", s.getNext)
		api.GET("/methods", s.getMethods)
	}

	write := api.Group("", rateLimit(writes))
	{
		write.POST("/method", s.setMethod)
		write.POST("/refresh", s.refresh)
		write.POST("/locate", s.locate)
	}
}

// Router returns the router for testing purposes.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("[server] listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("[server] stopped")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("[server] request")
	}
}

func rateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			log.Warn().Str("ip", c.ClientIP()).Str("path", c.Request.URL.Path).Msg("[server] rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, please try again later",
			})
			return
		}
		c.Next()
	}
}
