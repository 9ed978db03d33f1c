package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/famtree/pkg/editor"
	"github.com/matzehuels/famtree/pkg/family"
)

// memberCommand creates the member command group.
func (c *CLI) memberCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "member",
		Aliases: []string{"m"},
		Short:   "Add, remove, and list family members",
	}
	cmd.AddCommand(c.memberAddCommand())
	cmd.AddCommand(c.memberRemoveCommand())
	cmd.AddCommand(c.memberListCommand())
	return cmd
}

func (c *CLI) memberAddCommand() *cobra.Command {
	var gender string

	cmd := &cobra.Command{
		Use:     "add NAME...",
		Short:   "Add a member",
		Long:    `Add a member. The name is every argument joined by spaces; ids are assigned as p1, p2, ...`,
		Example: `  famtree member add Alice Smith --gender female
  famtree member add "Bob" -g male`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				m, err := ed.AddMember(cmd.Context(), strings.Join(args, " "), gender)
				if err != nil {
					return warnOrFail(err)
				}
				printSuccess("Added %s", StyleHighlight.Render(m.Label()))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&gender, "gender", "g", "", "male, female, or other")
	_ = cmd.MarkFlagRequired("gender")
	_ = cmd.RegisterFlagCompletionFunc("gender", completeGenders)
	return cmd
}

func (c *CLI) memberRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm ID",
		Aliases:           []string{"remove", "delete"},
		Short:             "Remove a member and every relationship pointing at it",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMemberIDs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				m, _ := ed.Member(args[0])
				if err := ed.DeleteMember(cmd.Context(), args[0]); err != nil {
					return warnOrFail(err)
				}
				printSuccess("Removed %s", StyleHighlight.Render(m.Label()))
				return nil
			})
		},
	}
}

func (c *CLI) memberListCommand() *cobra.Command {
	var asTable bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List members sorted by name",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				out := cmd.OutOrStdout()
				if asTable && ed.Len() > 0 {
					fmt.Fprintln(out, memberTable(ed.Members()))
					return nil
				}
				fmt.Fprint(out, ed.MemberList())
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&asTable, "table", "t", false, "render as a table")
	return cmd
}

// =============================================================================
// Completion
// =============================================================================

func completeGenders(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(family.Genders))
	for i, g := range family.Genders {
		out[i] = string(g)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeMemberIDs completes the first n positional arguments with member
// ids, described by name.
func (c *CLI) completeMemberIDs(n int) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= n {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var ids []string
		err := c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
			for _, m := range ed.Members() {
				ids = append(ids, m.ID+"\t"+m.Name)
			}
			return nil
		})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}
