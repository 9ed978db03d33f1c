// Package cli implements the famtree command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/famtree/pkg/buildinfo"
	"github.com/matzehuels/famtree/pkg/config"
	"github.com/matzehuels/famtree/pkg/editor"
	"github.com/matzehuels/famtree/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
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

	// Config is loaded in the root command's pre-run.
	Config config.Config

	configPath string
	backend    string // --backend override
	store      string // --store override of the file/sqlite path

	// openStore is replaceable in tests.
	openStore func(ctx context.Context, opts storage.Options) (storage.Store, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		Config:    config.Default(),
		openStore: storage.Open,
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
		Short: "famtree records family members and their relationships",
		Long: `famtree keeps a family tree of members and typed relationships
(father, mother, spouse, son, daughter, brother, sister), persists it to a
storage backend after every change, and renders it as lists, an indented
hierarchy, JSON, or a Graphviz diagram.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", config.Path(), "config file")
	root.PersistentFlags().StringVar(&c.backend, "backend", "", "storage backend: file, memory, redis, mongo, sqlite")
	root.PersistentFlags().StringVar(&c.store, "store", "", "snapshot file (file backend) or database (sqlite backend)")

	// Register all subcommands
	root.AddCommand(c.memberCommand())
	root.AddCommand(c.relationCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.jsonCommand())
	root.AddCommand(c.saveCommand())
	root.AddCommand(c.loadCommand())
	root.AddCommand(c.refreshCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Editor Factory
// =============================================================================

// storageOptions applies the command-line overrides to the configured backend.
func (c *CLI) storageOptions() storage.Options {
	opts := c.Config.StorageOptions()
	if c.backend != "" {
		opts.Backend = c.backend
	}
	if c.store != "" {
		switch opts.Backend {
		case storage.BackendSQLite:
			opts.SQLitePath = c.store
		default:
			opts.Path = c.store
		}
	}
	return opts
}

// openEditor opens the configured store and loads the tree from it.
// The caller closes the editor.
func (c *CLI) openEditor(ctx context.Context) (*editor.Editor, error) {
	opts := c.storageOptions()
	c.Logger.Debug("opening store", "backend", opts.Backend)

	store, err := c.openStore(ctx, opts)
	if err != nil {
		return nil, err
	}
	ed, err := editor.Open(ctx, store, c.Logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return ed, nil
}

// withEditor runs fn against a freshly opened editor and closes it afterwards.
func (c *CLI) withEditor(ctx context.Context, fn func(*editor.Editor) error) error {
	ed, err := c.openEditor(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := ed.Close(); err != nil {
			c.Logger.Warn("close store", "error", err)
		}
	}()
	return fn(ed)
}

// =============================================================================
// Paths
// =============================================================================

// fileExists reports whether path names an existing file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
