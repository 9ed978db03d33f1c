package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/famtree/pkg/config"
)

// setup loads the config file and applies its log settings. The --verbose
// flag, when set, wins over the configured level.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	if cfg.Log.File != "" {
		c.Logger.SetOutput(rotatingWriter(cfg.Log))
	}
	if f := cmd.Flags().Lookup("verbose"); f == nil || !f.Changed {
		if cfg.Log.Level != "" {
			level, err := log.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			c.SetLogLevel(level)
		}
	}

	c.Logger.Debug("config loaded", "path", c.configPath, "backend", cfg.Storage.Backend)
	return nil
}
