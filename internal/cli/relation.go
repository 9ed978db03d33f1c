package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/editor"
	"github.com/matzehuels/famtree/pkg/family"
)

// relationCommand creates the relation command group.
func (c *CLI) relationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "relation",
		Aliases: []string{"rel", "r"},
		Short:   "Add, remove, and list relationships",
		Long: `Relationships are directed: "famtree relation add p3 mother p1" records that
p1 is the mother of p3. Spouse relationships are recorded in both directions.`,
	}
	cmd.AddCommand(c.relationAddCommand())
	cmd.AddCommand(c.relationRemoveCommand())
	cmd.AddCommand(c.relationListCommand())
	return cmd
}

// parseLinkArgs reads "FROM TYPE TO".
func parseLinkArgs(args []string) (from string, kind family.Kind, to string, err error) {
	kind, ok := family.ParseKind(args[1])
	if !ok {
		return "", "", "", apperrors.Wrap(apperrors.ErrCodeInvalidInput, family.ErrUnknownKind,
			"unknown relationship %q (want one of %v)", args[1], family.Kinds)
	}
	return args[0], kind, args[2], nil
}

func (c *CLI) relationAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add FROM TYPE TO",
		Short: "Add a relationship",
		Example: `  famtree relation add p3 mother p1
  famtree relation add p1 spouse p2`,
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: c.completeLinkArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, kind, to, err := parseLinkArgs(args)
			if err != nil {
				return warnOrFail(err)
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				if err := ed.AddRelation(cmd.Context(), from, to, kind); err != nil {
					return warnOrFail(err)
				}
				printSuccess("%s %s %s", linkLabel(ed, from), StyleDim.Render(string(kind)+" "+iconArrow), linkLabel(ed, to))
				if kind.IsSymmetric() {
					printDetail("recorded in both directions")
				}
				return nil
			})
		},
	}
}

func (c *CLI) relationRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm FROM TYPE TO",
		Aliases:           []string{"remove", "delete"},
		Short:             "Remove a relationship",
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: c.completeLinkArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, kind, to, err := parseLinkArgs(args)
			if err != nil {
				return warnOrFail(err)
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				if err := ed.DeleteRelation(cmd.Context(), from, kind, to); err != nil {
					return err
				}
				printSuccess("Removed %s %s %s", from, kind, to)
				return nil
			})
		},
	}
}

func (c *CLI) relationListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List relationships grouped by member",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				fmt.Fprint(cmd.OutOrStdout(), ed.RelationshipList())
				return nil
			})
		},
	}
}

func linkLabel(ed *editor.Editor, id string) string {
	if m, ok := ed.Member(id); ok {
		return StyleHighlight.Render(m.Label())
	}
	return id
}

// completeLinkArgs completes member ids for FROM and TO and kinds for TYPE.
func (c *CLI) completeLinkArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0, 2:
		return c.completeMemberIDs(3)(cmd, args, toComplete)
	case 1:
		kinds := make([]string, len(family.Kinds))
		for i, k := range family.Kinds {
			kinds[i] = string(k)
		}
		return kinds, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
