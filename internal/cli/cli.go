package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/seqtower/pkg/buildinfo"
	"github.com/matzehuels/seqtower/pkg/cache"
	"github.com/matzehuels/seqtower/pkg/config"
	"github.com/matzehuels/seqtower/pkg/session"
)

const appName = config.AppName

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

	configPath string
	verbose    bool
}

// New creates a new CLI instance with default settings.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
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
		Short: "Seqtower explores genome variation graphs",
		Long: `Seqtower ingests variation graphs in the GFA exchange format, caches their
sequences next to the graph file, and extracts layered neighbourhoods around
a segment with SNP bubbles folded into single nodes.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/seqtower/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.subgraphCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.locateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and attaches the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	level, _ := cfg.Level()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Sessions
// =============================================================================

// storeFlags are the flags of every command that loads a graph file.
type storeFlags struct {
	noCache  bool
	refresh  bool
	validate bool
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "keep sequences in memory instead of the on-disk store")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "discard the cached store and re-ingest the file")
	cmd.Flags().BoolVar(&f.validate, "validate", false, "check the whole graph for cycles after parsing")
}

// openSession loads path behind a spinner that shows line progress.
func (c *CLI) openSession(cmd *cobra.Command, path string, f storeFlags) (*session.Session, error) {
	ctx := cmd.Context()
	name := filepath.Base(path)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Loading %s...", name))
	spinner.Start()

	sess, err := session.Open(ctx, path, session.Options{
		Logger:   loggerFromContext(ctx),
		CacheDir: c.Config.CacheDir,
		NoCache:  f.noCache,
		Refresh:  f.refresh,
		Validate: flagOr(cmd, "validate", f.validate, c.Config.ValidateGraph),
		Progress: func(done, total int) {
			spinner.SetMessage(fmt.Sprintf("Loading %s... %d/%d lines", name, done, total))
		},
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		spinner.StopWithError(fmt.Sprintf("Failed to load %s", name))
	}
	spinner.Stop()
	return sess, err
}

// =============================================================================
// Render Cache
// =============================================================================

// newRenderCache opens the SVG render cache, or a null cache if disabled or
// unavailable.
func newRenderCache(ctx context.Context, disabled bool) cache.Cache {
	if disabled {
		return cache.NewNullCache()
	}
	dir, err := renderCacheDir()
	if err == nil {
		var fc *cache.FileCache
		if fc, err = cache.NewFileCache(dir); err == nil {
			return fc
		}
	}
	loggerFromContext(ctx).Debug("render cache disabled", "err", err)
	return cache.NewNullCache()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/seqtower/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

func renderCacheDir() (string, error) {
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "renders"), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// flagOr returns flag if the user set it on the command line, else fallback.
func flagOr[T any](cmd *cobra.Command, name string, flag, fallback T) T {
	if cmd.Flags().Changed(name) {
		return flag
	}
	return fallback
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for path, or stdout if path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// writeOutput writes data to path, or stdout if path is empty.
func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// basePath strips the extension of input.
func basePath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input))
}
