// Package tui is the interactive terminal dashboard built on termdash.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mum4k/termdash"
	"github.com/mum4k/termdash/cell"
	"github.com/mum4k/termdash/container"
	"github.com/mum4k/termdash/keyboard"
	"github.com/mum4k/termdash/linestyle"
	"github.com/mum4k/termdash/terminal/tcell"
	"github.com/mum4k/termdash/terminal/terminalapi"
	"github.com/mum4k/termdash/widgets/text"

	"github.com/jgoulah/energyviz/internal/dashboard"
	"github.com/jgoulah/energyviz/internal/fetcher"
)

const (
	lineID    = "line"
	sectorsID = "sectors"
	sourcesID = "sources"
	statusID  = "status"

	keyHelp = "c/g: series, ←→: start, [ ]: end, esc: reset, a/A/1-9: locations, r: refetch, q: quit"
)

// Dashboard wires a view to the terminal
type Dashboard struct {
	view     *dashboard.View
	src      fetcher.Source
	debounce time.Duration

	mu          sync.Mutex
	fetchStatus string

	drawMu    sync.Mutex
	container *container.Container
	status    *text.Text
	redraw    *Debouncer
}

// Option configures a Dashboard
type Option func(*Dashboard)

// WithDebounce sets how long redraws are coalesced
func WithDebounce(d time.Duration) Option {
	return func(db *Dashboard) {
		db.debounce = d
	}
}

// New creates a dashboard over view. src is read on start and on refetch.
func New(view *dashboard.View, src fetcher.Source, opts ...Option) *Dashboard {
	d := &Dashboard{view: view, src: src, debounce: 120 * time.Millisecond}
	for _, opt := range opts {
		opt(d)
	}
	d.redraw = NewDebouncer(d.debounce, func() {
		if err := d.Refresh(); err != nil {
			slog.Warn("redraw failed", "component", "tui", "error", err)
		}
	})
	view.SetOnChange(d.Changed)
	return d
}

// Run takes over the terminal until q is pressed or ctx is cancelled
func (d *Dashboard) Run(ctx context.Context) error {
	t, err := tcell.New()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	defer t.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer d.view.Close()

	status, err := CreateTextWidget()
	if err != nil {
		return fmt.Errorf("creating status widget: %w", err)
	}

	c, err := createLayout(t, status)
	if err != nil {
		return fmt.Errorf("creating layout: %w", err)
	}

	d.drawMu.Lock()
	d.container, d.status = c, status
	d.drawMu.Unlock()
	defer d.redraw.Stop()

	if err := d.Refresh(); err != nil {
		return err
	}
	go d.fetch(ctx)

	handler := func(k *terminalapi.Keyboard) {
		switch HandleKey(k.Key, d.view) {
		case ActionQuit:
			cancel()
		case ActionRefetch:
			go d.fetch(ctx)
		}
	}

	if err := termdash.Run(ctx, t, c,
		termdash.KeyboardSubscriber(handler),
		termdash.RedrawInterval(250*time.Millisecond),
	); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

// Changed schedules a redraw
func (d *Dashboard) Changed() {
	d.redraw.Trigger()
}

// Refresh re-aggregates and rebuilds every widget
func (d *Dashboard) Refresh() error {
	d.drawMu.Lock()
	defer d.drawMu.Unlock()
	if d.container == nil {
		return nil
	}

	data := d.view.Series()
	st := d.view.State()

	line, err := CreateLineChart(data)
	if err != nil {
		return err
	}
	sectors, err := CreateBarChart(data.Sectors, cell.ColorBlue)
	if err != nil {
		return err
	}
	sources, err := CreateBarChart(data.Sources, cell.ColorGreen)
	if err != nil {
		return err
	}

	if err := d.container.Update(lineID,
		container.BorderTitle(fmt.Sprintf("Energy Consumption vs Generation [%s to %s]", data.Start, data.End)),
		container.PlaceWidget(line),
	); err != nil {
		return fmt.Errorf("updating line chart: %w", err)
	}
	if err := d.container.Update(sectorsID, container.PlaceWidget(sectors)); err != nil {
		return fmt.Errorf("updating sector chart: %w", err)
	}
	if err := d.container.Update(sourcesID, container.PlaceWidget(sources)); err != nil {
		return fmt.Errorf("updating source chart: %w", err)
	}

	d.mu.Lock()
	status := d.fetchStatus
	d.mu.Unlock()
	return UpdateStatusText(d.status, BuildStatusLines(st, data, status))
}

// fetch is a no-op once the view is closed
func (d *Dashboard) fetch(ctx context.Context) {
	if d.view.Closed() {
		return
	}
	d.setStatus("Fetching...")
	results := fetcher.FetchAll(ctx, d.src, d.view)
	if d.view.Closed() {
		return
	}
	d.setStatus(FormatResults(results))
	d.Changed()
}

func (d *Dashboard) setStatus(s string) {
	d.mu.Lock()
	d.fetchStatus = s
	d.mu.Unlock()
	d.Changed()
}

// FormatResults summarizes a fetch for the status panel
func FormatResults(results []fetcher.Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			parts = append(parts, fmt.Sprintf("%s failed: %v", r.Collection, r.Err))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %d records", r.Collection, r.Count))
	}
	return strings.Join(parts, " | ")
}

func createLayout(t terminalapi.Terminal, status *text.Text) (*container.Container, error) {
	return container.New(
		t,
		container.Border(linestyle.Light),
		container.BorderTitle("Energy Dashboard - "+keyHelp),
		container.KeyFocusNext(keyboard.KeyTab),
		container.SplitHorizontal(
			container.Top(
				container.ID(lineID),
				container.Border(linestyle.Light),
				container.BorderTitle("Energy Consumption vs Generation"),
			),
			container.Bottom(
				container.SplitVertical(
					container.Left(
						container.SplitVertical(
							container.Left(
								container.ID(sectorsID),
								container.Border(linestyle.Light),
								container.BorderTitle("Consumption by Sector (kWh)"),
							),
							container.Right(
								container.ID(sourcesID),
								container.Border(linestyle.Light),
								container.BorderTitle("Generation by Source (kWh)"),
							),
						),
					),
					container.Right(
						container.ID(statusID),
						container.Border(linestyle.Light),
						container.BorderTitle("Filters - ↑↓ to scroll"),
						container.PlaceWidget(status),
					),
					container.SplitPercent(65),
				),
			),
			container.SplitPercent(55),
		),
	)
}
