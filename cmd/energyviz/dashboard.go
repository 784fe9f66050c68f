package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jgoulah/energyviz/internal/tui"
)

var dashboardOffline bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive terminal dashboard",
	Long: `Shows daily consumption and generation, sector and source totals,
and the current filters. Both collections are fetched on start and on 'r'.

Keys: c/g toggle series, ←/→ move the range start, [/] move the range end,
esc resets the range, a/A select all consumption/generation locations,
1-9 toggle a consumption location, q quits.`,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashboardOffline, "offline", false, "Read the local snapshot instead of the API")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	view, err := newView(cfg)
	if err != nil {
		return err
	}

	src, release, err := recordSource(cfg, dashboardOffline)
	if err != nil {
		return err
	}
	defer release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Log lines would corrupt the terminal; failures show in the status panel
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer slog.SetDefault(prev)

	return tui.New(view, src).Run(ctx)
}
