// Package snapshot captures the rendered HTML dashboard with a headless
// browser and writes it out as PNG or PDF.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Format is an output format
type Format string

const (
	PNG Format = "png"
	PDF Format = "pdf"
)

// FormatFor picks the format from a file extension
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "png":
		return PNG, nil
	case "pdf":
		return PDF, nil
	default:
		return "", fmt.Errorf("unsupported snapshot format %q (available: png, pdf)", ext)
	}
}

// Options controls the browser capture
type Options struct {
	Width   int64
	Height  int64
	Settle  time.Duration // Wait for chart animations before capturing
	Quality int           // PNG screenshot quality
	Visible bool          // Show the browser window
}

// DefaultOptions returns a desktop-sized viewport
func DefaultOptions() Options {
	return Options{Width: 1400, Height: 1000, Settle: 1500 * time.Millisecond, Quality: 90}
}

// Capture loads html in a headless browser and returns the image or PDF bytes
func Capture(ctx context.Context, html []byte, format Format, o Options) ([]byte, error) {
	dir, err := os.MkdirTemp("", "energyviz-snapshot-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	pagePath := filepath.Join(dir, "dashboard.html")
	if err := os.WriteFile(pagePath, html, 0600); err != nil {
		return nil, fmt.Errorf("writing page: %w", err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(int(o.Width), int(o.Height)),
	)
	if o.Visible {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var out []byte
	actions := []chromedp.Action{
		chromedp.EmulateViewport(o.Width, o.Height),
		chromedp.Navigate("file://" + pagePath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(o.Settle),
	}

	switch format {
	case PNG:
		actions = append(actions, chromedp.FullScreenshot(&out, o.Quality))
	case PDF:
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithLandscape(true).
				Do(ctx)
			if err != nil {
				return err
			}
			out = data
			return nil
		}))
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, fmt.Errorf("capturing %s: %w", format, err)
	}
	return out, nil
}

// WriteFile captures html to path, picking the format from its extension
func WriteFile(ctx context.Context, path string, html []byte, o Options) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Capture(ctx, html, format, o)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
