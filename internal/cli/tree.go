package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/famtree/pkg/editor"
)

// treeCommand prints the indented hierarchy.
func (c *CLI) treeCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the family hierarchy",
		Long: `Print every member below the members that have no father or mother recorded,
indenting children under their parents. Spouses are shown inline with 💍.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				var (
					out string
					err error
				)
				if root != "" {
					out, err = ed.HierarchyFrom(root)
				} else {
					out, err = ed.Hierarchy()
				}
				if err != nil {
					return warnOrFail(err)
				}
				if out == "" {
					printInfo("No members yet")
					printDetail("add one with: %s member add NAME --gender GENDER", appName)
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "only print the subtree below this member id")
	_ = cmd.RegisterFlagCompletionFunc("root", c.completeMemberIDs(0))
	return cmd
}

// jsonCommand prints the snapshot.
func (c *CLI) jsonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "json",
		Short: "Print the tree as snapshot JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				out, err := ed.JSON()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

// saveCommand writes a timestamped backup file.
func (c *CLI) saveCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Write a timestamped backup of the tree",
		Long:  `Write the tree to family_tree_YYYY-MM-DD_HH-MM-SS.json in the given directory.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				path, err := ed.SaveFile(dir, time.Now())
				if err != nil {
					return warnOrFail(err)
				}
				printSuccess("Saved %d members", ed.Len())
				printFile(path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory for the backup file")
	return cmd
}

// loadCommand replaces the stored tree with a snapshot file.
func (c *CLI) loadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load FILE",
		Short: "Replace the tree with a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				if err := ed.LoadFile(cmd.Context(), args[0]); err != nil {
					return warnOrFail(err)
				}
				printSuccess("Loaded %d members from %s", ed.Len(), args[0])
				return nil
			})
		},
	}
}

// refreshCommand reloads from storage and reports what it found.
func (c *CLI) refreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload the tree from storage and report its size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				if err := ed.Refresh(cmd.Context()); err != nil {
					return warnOrFail(err)
				}
				printSuccess("%d members, %d relationships", ed.Len(), len(ed.Relationships()))
				printDetail("backend: %s", ed.Backend())
				return nil
			})
		},
	}
}
