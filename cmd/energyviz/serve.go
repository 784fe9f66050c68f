package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jgoulah/energyviz/internal/server"
)

var (
	serveAddr    string
	serveOffline bool
	serveRelease bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTML dashboard and JSON series over HTTP",
	Long: `Starts an HTTP server with:
  GET  /                 HTML dashboard (accepts the same query as /api/v1/series)
  GET  /api/v1/dates     date index and default range
  GET  /api/v1/filters   known locations, sectors and sources
  GET  /api/v1/series    aggregated series (start, end, show, *_locations, sectors, sources)
  POST /api/v1/refresh   refetch both collections`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "Serve the local snapshot instead of the API")
	serveCmd.Flags().BoolVar(&serveRelease, "release", false, "Run gin in release mode")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dates, defaultRange, err := cfg.BuildDateIndex()
	if err != nil {
		return err
	}

	src, release, err := recordSource(cfg, serveOffline)
	if err != nil {
		return err
	}
	defer release()

	if serveRelease {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(server.NewRecordCache(src, cfg.GetCacheTTL()), server.Options{
		Dates:            dates,
		DefaultRange:     defaultRange,
		FilterByLocation: cfg.GetFilterByLocation(),
		CORSOrigins:      cfg.GetCORSOrigins(),
	})

	addr := serveAddr
	if addr == "" {
		addr = cfg.GetAddr()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, addr)
}
