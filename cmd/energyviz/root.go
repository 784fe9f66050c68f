package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/energyviz/internal/api"
	"github.com/jgoulah/energyviz/internal/config"
	"github.com/jgoulah/energyviz/internal/dashboard"
	"github.com/jgoulah/energyviz/internal/database"
	"github.com/jgoulah/energyviz/internal/fetcher"
	"github.com/jgoulah/energyviz/internal/filter"
	"github.com/jgoulah/energyviz/internal/session"
	"github.com/jgoulah/energyviz/pkg/models"
)

var (
	cfgFile string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "energyviz",
	Short: "Visualize energy consumption and generation data",
	Long: `energyviz logs in to an energy data API, fetches consumption and generation
records and shows them as a terminal dashboard, an HTML dashboard or
plain tables. The last fetch is kept in a local SQLite database.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default is ./data.db)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the database file path (local directory)
func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return "data.db"
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// saveConfig saves the configuration file
func saveConfig(cfg *config.Config) error {
	return config.Save(getConfigPath(), cfg)
}

// openDB opens the database connection
func openDB() (*database.DB, error) {
	path := getDBPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return database.New(path)
}

// newSessionStore opens the session file and loads any saved token
func newSessionStore(cfg *config.Config) (*session.Store, error) {
	store := session.NewStore(cfg.GetSessionFile())
	if _, err := store.Load(); err != nil && !errors.Is(err, session.ErrNoSession) {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return store, nil
}

// newAPIClient builds a client carrying the saved session
func newAPIClient(cfg *config.Config) (*api.Client, error) {
	store, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}
	return api.New(cfg.GetBaseURL(), cfg.GetTimeout(), store), nil
}

// newView mounts a dashboard view over the configured date index
func newView(cfg *config.Config) (*dashboard.View, error) {
	dates, defaultRange, err := cfg.BuildDateIndex()
	if err != nil {
		return nil, err
	}
	return dashboard.New(dates, defaultRange,
		dashboard.WithFilterByLocation(cfg.GetFilterByLocation()),
	), nil
}

// recordSource returns the API client, or the local snapshot when offline.
// The returned func releases whatever was opened.
func recordSource(cfg *config.Config, offline bool) (fetcher.Source, func(), error) {
	if offline {
		db, err := openDB()
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		for _, c := range models.Collections {
			if ok, err := db.HasData(c); err == nil && !ok {
				fmt.Printf("⚠ No local %s snapshot (run 'energyviz fetch' or 'energyviz seed')\n", c)
			}
		}
		return db, func() { db.Close() }, nil
	}

	client, err := newAPIClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	if !client.Session().Authenticated() {
		fmt.Println("⚠ Not logged in; requests are sent without a token (run 'energyviz login')")
	}
	return client, func() {}, nil
}

// reportResults prints one line per collection and returns an error only
// when every collection failed
func reportResults(results []fetcher.Result) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("⚠ %s: %v\n", r.Collection, r.Err)
			if api.IsAuthError(r.Err) {
				fmt.Println("  Hint: run 'energyviz login' to refresh your session")
			}
			continue
		}
		fmt.Printf("✓ %s: %d records (%s)\n", r.Collection, r.Count, r.Duration.Round(time.Millisecond))
	}
	if failed == len(results) && failed > 0 {
		return fmt.Errorf("all %d collections failed to load", failed)
	}
	return nil
}

// selectionFlags narrow a view's state from the command line
type selectionFlags struct {
	start string
	end   string
	show  string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "First day of the range (YYYY-MM-DD, default: configured window)")
	cmd.Flags().StringVar(&f.end, "end", "", "Last day of the range (YYYY-MM-DD, default: configured window)")
	cmd.Flags().StringVar(&f.show, "show", "", "Series to show: consumption,generation (default: both)")
}

// apply updates the view's range and visible series
func (f *selectionFlags) apply(v *dashboard.View) error {
	st := v.State()
	r := st.Range
	if f.start != "" {
		i := st.Dates.Find(f.start)
		if i < 0 {
			return fmt.Errorf("--start %s is outside the date index", f.start)
		}
		r.Start = i
	}
	if f.end != "" {
		i := st.Dates.Find(f.end)
		if i < 0 {
			return fmt.Errorf("--end %s is outside the date index", f.end)
		}
		r.End = i
	}
	if st.Dates.Len() > 0 && !st.Dates.Valid(r) {
		start, end := st.Dates.Bounds(r)
		return fmt.Errorf("range start %s is after end %s", start, end)
	}

	var show []models.Collection
	if f.show != "" {
		for _, name := range strings.Split(f.show, ",") {
			c, err := models.ParseCollection(name)
			if err != nil {
				return fmt.Errorf("--show: %w", err)
			}
			show = append(show, c)
		}
	}

	v.Update(func(s *filter.State) {
		s.SetRange(r)
		if show == nil {
			return
		}
		s.ShowConsumption, s.ShowGeneration = false, false
		for _, c := range show {
			if !s.Visible(c) {
				s.ToggleSeries(c)
			}
		}
	})
	return nil
}

// loadView mounts a view and fills it from the API or the snapshot
func loadView(ctx context.Context, cfg *config.Config, offline bool) (*dashboard.View, error) {
	v, err := newView(cfg)
	if err != nil {
		return nil, err
	}

	src, release, err := recordSource(cfg, offline)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := reportResults(fetcher.FetchAll(ctx, src, v)); err != nil {
		return nil, err
	}
	return v, nil
}

// parseDate parses a date string in either YYYY-MM-DD format or relative format (e.g., "7d")
func parseDate(dateStr string) (time.Time, error) {
	// Try absolute date format first
	t, err := time.Parse(models.DayLayout, dateStr)
	if err == nil {
		return t, nil
	}

	// Try relative format (e.g., "7d" for 7 days ago)
	if len(dateStr) > 1 && dateStr[len(dateStr)-1] == 'd' {
		daysStr := dateStr[:len(dateStr)-1]
		var days int
		if _, err := fmt.Sscanf(daysStr, "%d", &days); err == nil {
			return time.Now().AddDate(0, 0, -days), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD or Nd for N days ago)", dateStr)
}

// dayBounds converts optional --since/--until flags to inclusive day strings
func dayBounds(since, until string) (string, string, error) {
	var start, end string
	if since != "" {
		t, err := parseDate(since)
		if err != nil {
			return "", "", fmt.Errorf("parsing --since date: %w", err)
		}
		start = t.Format(models.DayLayout)
	}
	if until != "" {
		t, err := parseDate(until)
		if err != nil {
			return "", "", fmt.Errorf("parsing --until date: %w", err)
		}
		end = t.Format(models.DayLayout)
	}
	return start, end, nil
}

// collectionsFlag resolves an optional --collection flag
func collectionsFlag(name string) ([]models.Collection, error) {
	if name == "" {
		return models.Collections, nil
	}
	c, err := models.ParseCollection(name)
	if err != nil {
		return nil, err
	}
	return []models.Collection{c}, nil
}
