package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/famtree/pkg/config"
	"github.com/matzehuels/famtree/pkg/storage"
)

// configCommand groups config file helpers.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())
	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.configPath)
			return nil
		},
	}
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective storage settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.storageOptions()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config   %s\n", c.configPath)
			fmt.Fprintf(out, "backend  %s\n", opts.Backend)
			fmt.Fprintf(out, "key      %s\n", opts.Key)
			switch opts.Backend {
			case "", storage.BackendFile:
				fmt.Fprintf(out, "path     %s\n", opts.Path)
			case storage.BackendSQLite:
				fmt.Fprintf(out, "database %s\n", opts.SQLitePath)
			case storage.BackendRedis:
				fmt.Fprintf(out, "url      %s\n", opts.RedisURL)
			case storage.BackendMongo:
				fmt.Fprintf(out, "database %s\n", opts.MongoDatabase)
			}
			return nil
		},
	}
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileExists(c.configPath) && !force {
				printWarning("%s already exists (use --force to overwrite)", c.configPath)
				return nil
			}
			if err := config.Write(c.configPath, config.Default()); err != nil {
				return err
			}
			printSuccess("Wrote default config")
			printFile(c.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
