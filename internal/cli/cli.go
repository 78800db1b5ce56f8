// Package cli implements the heatmap command-line interface.
//
// # Commands
//
//   - layout: compute a heatmap layout from a portfolio file
//   - render: render a portfolio or layout to SVG, PNG, PDF, JSON or XLSX
//   - squarify: lay out arbitrary JSON records
//   - view: browse a heatmap interactively in the terminal
//   - serve: run the HTTP API
//   - cache, config, completion: housekeeping
//
// All commands support --verbose (-v) for debug logging and --config for an
// explicit configuration file. Settings are read from flags, HEATMAP_*
// environment variables and the config file, in that order.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/heatmap/pkg/buildinfo"
	"github.com/matzehuels/heatmap/pkg/cache"
	"github.com/matzehuels/heatmap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "heatmap"

	// layoutSuffix marks files written by the layout command.
	layoutSuffix = ".layout.json"
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

	config     *viper.Viper
	configFile string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: newConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Heatmap draws portfolios as squarified treemaps",
		Long: `Heatmap lays out portfolio positions as a squarified treemap: each
position is a rectangle sized by market value and colored by gain or loss.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				enableHookLogging(c.Logger)
			}
			if cmd.Annotations[annotationSkipConfig] == "true" {
				return nil
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: "+defaultConfigHint()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.squarifyCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// newCache opens the backend selected by cache.backend. A missing home
// directory degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch backend := c.config.GetString(keyCacheBackend); backend {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheRedis:
		url := c.config.GetString(keyCacheRedisURL)
		if url == "" {
			return nil, fmt.Errorf("cache.backend is redis but cache.redis_url is not set")
		}
		return cache.NewRedisCache(ctx, url, appName+":")
	case cacheFile, "":
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be file, redis or none)", backend)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns cache.dir, or the XDG cache directory (~/.cache/heatmap/).
func (c *CLI) cacheDir() (string, error) {
	if dir := c.config.GetString(keyCacheDir); dir != "" {
		return dir, nil
	}
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// xdgDir resolves $env/heatmap, falling back to ~/fallback/heatmap.
func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// basePath derives the output path without extension. An empty output uses
// the input path; known format extensions are stripped from output.
func basePath(output, input string) string {
	if output == "" {
		input = strings.TrimSuffix(input, layoutSuffix)
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// absInput resolves a user-supplied input path before it reaches the
// pipeline's path validation.
func absInput(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}
