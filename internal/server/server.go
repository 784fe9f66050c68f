// Package server exposes the dashboard over HTTP: the rendered HTML page and
// JSON endpoints for the date index, filter options and aggregated series.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jgoulah/energyviz/internal/dateindex"
)

// Options configures a Server
type Options struct {
	Dates            dateindex.Index
	DefaultRange     dateindex.Range
	FilterByLocation bool
	CORSOrigins      []string
}

// Server serves one record cache
type Server struct {
	engine *gin.Engine
	cache  *RecordCache

	dates            dateindex.Index
	defaultRange     dateindex.Range
	filterByLocation bool
}

// New builds the router
func New(cache *RecordCache, o Options) *Server {
	s := &Server{
		cache:            cache,
		dates:            o.Dates,
		defaultRange:     o.Dates.Clamp(o.DefaultRange),
		filterByLocation: o.FilterByLocation,
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(ErrorHandler())
	router.Use(CORS(o.CORSOrigins))

	router.GET("/health", s.health)
	router.GET("/", s.dashboard)

	api := router.Group("/api/v1")
	{
		api.GET("/dates", s.listDates)
		api.GET("/filters", s.listFilters)
		api.GET("/series", s.series)
		api.POST("/refresh", s.refresh)
	}

	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", "Not found")
	})

	s.engine = router
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting dashboard server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}
