// Package cli implements the numberline command-line interface.
//
// This package provides commands for laying out and rendering labeled
// points on a number line, managing items in a repository, serving the
// HTTP rendering surface and browsing a layout in the terminal. The CLI is
// built using cobra and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Compute item positions for a dataset and print them
//   - render: Generate SVG, PNG, PDF or JSON output
//   - items: List, add, edit and delete items in a repository
//   - serve: Run the HTTP rendering surface
//   - view: Browse a layout interactively in the terminal
//   - cache: Manage the rendered-artifact cache
//
// # Configuration
//
// Defaults come from an optional TOML file (--config, or
// $XDG_CONFIG_HOME/numberline/config.toml). Flags override file values.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/matzehuels/numberline/pkg/buildinfo"
	"github.com/matzehuels/numberline/pkg/cache"
	"github.com/matzehuels/numberline/pkg/config"
	nlio "github.com/matzehuels/numberline/pkg/io"
	"github.com/matzehuels/numberline/pkg/pipeline"
	"github.com/matzehuels/numberline/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "numberline"

	// cachePrefix namespaces artifact keys in a shared Redis instance.
	cachePrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	// fs is the filesystem datasets are read from and written to.
	fs afero.Fs

	// stderr receives progress output such as spinners.
	stderr io.Writer

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		fs:     afero.NewOsFs(),
		stderr: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "numberline lays out labeled points on a number line",
		Long:          `numberline places labeled values on a horizontal number line and stacks labels that would overlap, then renders the result as SVG, PNG, PDF or JSON.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/numberline/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.itemsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// openRepo returns the repository commands operate on. A dataset argument
// is loaded into memory and never written back; otherwise dsn (or the
// configured store) is opened.
func (c *CLI) openRepo(ctx context.Context, args []string, dsn string) (store.Repository, error) {
	if len(args) > 0 {
		raws, err := nlio.Import(c.fs, args[0])
		if err != nil {
			return nil, err
		}
		repo := store.NewMemory()
		if err := store.Seed(ctx, repo, raws); err != nil {
			return nil, fmt.Errorf("load %s: %w", args[0], err)
		}
		c.Logger.Debug("loaded dataset", "path", args[0], "items", len(raws))
		return repo, nil
	}
	if dsn == "" {
		dsn = c.Config.Store.DSN
	}
	c.Logger.Debug("opening store", "dsn", redactDSN(dsn))
	if path, ok := strings.CutPrefix(dsn, store.SchemeFile); ok && path != "" {
		return store.OpenFile(c.fs, path)
	}
	return store.Open(ctx, dsn)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, repo store.Repository, noCache bool) (*pipeline.Runner, error) {
	cc, keyer, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("artifact cache", "backend", cache.Describe(cc))
	runner := pipeline.NewRunner(repo, cc, keyer, c.Logger)
	if ttl := time.Duration(c.Config.Cache.TTL); ttl > 0 {
		runner.TTL = ttl
	}
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, cache.Keyer, error) {
	cfg := c.Config.Cache
	if noCache {
		return cache.Disabled("--no-cache"), nil, nil
	}
	if cfg.Disabled {
		return cache.Disabled("disabled in config"), nil, nil
	}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewScopedKeyer(nil, cachePrefix), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.Disabled("no cache directory"), nil, nil
	}
	fc, err := cache.NewFileCache(c.fs, dir)
	if err != nil {
		return nil, nil, err
	}
	return fc, nil, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the user cache
// directory (~/.cache/numberline on Linux).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns pipeline options seeded from the configuration.
func (c *CLI) baseOptions() pipeline.Options {
	return pipeline.Options{
		Multiplier: c.Config.Scale,
		Strategy:   c.Config.Strategy,
		Layout:     c.Config.Layout,
		Logger:     c.Logger,
	}
}

// layoutFlags are shared by every command that runs a layout pass.
type layoutFlags struct {
	scale    int
	strategy string
	metrics  string
	store    string
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.scale, "scale", "s", 0, "scale multiplier: 1, 2, 5 or 10 (default from config)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "stacking strategy: cascade (default), shelf")
	cmd.Flags().StringVar(&f.metrics, "metrics", "", "text metrics: font (default), heuristic, cells")
	cmd.Flags().StringVar(&f.store, "store", "", "item store DSN, used when no dataset is given")
}

func (f *layoutFlags) apply(opts *pipeline.Options) {
	if f.scale != 0 {
		opts.Multiplier = f.scale
	}
	if f.strategy != "" {
		opts.Strategy = f.strategy
	}
	if f.metrics != "" {
		opts.Metrics = f.metrics
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// redactDSN hides credentials in DSNs before logging them.
func redactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return scheme + "://***@" + rest[at+1:]
	}
	return dsn
}
