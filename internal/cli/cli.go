// Package cli implements the cloverquilt command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cloverquilt/pkg/buildinfo"
	"github.com/matzehuels/cloverquilt/pkg/cache"
	"github.com/matzehuels/cloverquilt/pkg/engine"
	"github.com/matzehuels/cloverquilt/pkg/patterns"
	"github.com/matzehuels/cloverquilt/pkg/prefs"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "cloverquilt"
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

	configPath string
	backend    string
	cfg        Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Cloverquilt fills the regions of line drawings with colors and fabric patterns",
		Long:         `Cloverquilt loads a quilt or coloring-page drawing, fills its regions with solid colors or tiled fabric patterns, and exports the result as SVG or PNG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			if c.backend != "" {
				cfg.Store = c.backend
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/cloverquilt/config.toml)")
	root.PersistentFlags().StringVar(&c.backend, "store", "", "preference store: file, memory, redis or mongo")

	// Register all subcommands
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.fillCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.paintCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.paletteCommand())
	root.AddCommand(c.patternsCommand())
	root.AddCommand(c.prefsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Stores and Caches
// =============================================================================

// openStore opens the preference store selected by the config.
func (c *CLI) openStore(ctx context.Context) (prefs.Store, error) {
	return prefs.Open(ctx, c.cfg.storeConfig())
}

// newCache returns the export cache, or a null cache when caching is off or
// the cache directory cannot be created.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.Nop()
	}
	dir := c.cfg.CacheDir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.Nop()
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("export cache disabled", "dir", dir, "err", err)
		return cache.Nop()
	}
	return fc
}

// =============================================================================
// Workspace
// =============================================================================

// workspace is a loaded drawing together with the preferences and pattern
// library it was loaded with.
type workspace struct {
	path    string
	store   prefs.Store
	state   prefs.State
	library *patterns.Library
	engine  *engine.Engine
}

// Close releases the preference store.
func (w *workspace) Close() error {
	return w.store.Close()
}

// openWorkspace loads persisted preferences, restores the pattern library
// and loads the drawing at path with the stored presentation applied.
// Problems with individual preferences are logged and never fail the load.
func (c *CLI) openWorkspace(ctx context.Context, path string) (*workspace, error) {
	store, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	ws, err := c.loadWorkspace(ctx, store, path)
	if err != nil {
		store.Close()
		return nil, err
	}
	return ws, nil
}

func (c *CLI) loadWorkspace(ctx context.Context, store prefs.Store, path string) (*workspace, error) {
	state, warnings := prefs.Load(ctx, store)
	for _, w := range warnings {
		c.Logger.Warn("ignoring stored preference", "err", w)
	}

	lib, err := c.loadLibrary(ctx, state, true)
	if err != nil {
		return nil, err
	}

	// Colors are applied only when stored, so a drawing that is already
	// colored keeps its own paint on a first run.
	pres := engine.Presentation{TileSize: state.TileSize()}
	if state.Stored(prefs.KeyStroke) {
		pres.StrokeColor = state.StrokeColor
	}
	if state.Stored(prefs.KeyCanvas) {
		pres.CanvasColor = state.CanvasColor
	}
	eng := engine.New(lib, engine.WithLogger(c.Logger), engine.WithPresentation(pres))
	if path != "" {
		if _, err := eng.Load(path); err != nil {
			return nil, err
		}
	}
	return &workspace{path: path, store: store, state: state, library: lib, engine: eng}, nil
}

// loadLibrary restores stored patterns. With defaults set and nothing
// stored, it loads the defaults from the configured patterns directory.
func (c *CLI) loadLibrary(ctx context.Context, state prefs.State, defaults bool) (*patterns.Library, error) {
	lib := patterns.NewLibrary(patterns.WithLogger(c.Logger))
	if _, errs := lib.Restore(state.Patterns); len(errs) > 0 {
		c.Logger.Warn("some stored patterns could not be restored", "skipped", len(errs))
	}
	if dir := c.cfg.PatternsDir; defaults && dir != "" && lib.Len() == 0 {
		n, errs := lib.LoadDefaults(ctx, os.DirFS(dir), patterns.DefaultAssetPaths)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.Logger.Debug("default patterns loaded", "dir", dir, "count", n, "skipped", len(errs))
	}
	return lib, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/cloverquilt/).
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

// configDir returns the config directory using XDG standard (~/.config/cloverquilt/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
