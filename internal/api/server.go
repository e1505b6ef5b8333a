// Package api serves invoice documents and activity rollups over a
// read-only HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/roach88/invoicer/internal/store"
)

// Store opens read transactions. *store.Store implements it.
type Store interface {
	Read(ctx context.Context, fn func(*store.Reader) error) error
}

// Server routes API requests to the aggregation builders. Every request
// runs its aggregation in its own read transaction.
type Server struct {
	store  Store
	router *gin.Engine
}

// New builds the router. Cross-origin requests are allowed from origins;
// an empty list disables CORS.
func New(st Store, origins []string) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	if len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  origins,
			AllowMethods:  []string{"GET", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Accept"},
			ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
			MaxAge:        12 * time.Hour,
		}))
	}

	s := &Server{store: st, router: r}

	api := r.Group("/api")
	api.GET("/invoices", s.listInvoices)
	api.GET("/invoices/:num", s.getInvoice)
	api.GET("/invoices/:num/timesheet.csv", s.getTimesheet)
	api.GET("/activities", s.listActivities)

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
