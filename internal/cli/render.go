package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/editor"
	"github.com/matzehuels/famtree/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	format   string // "dot" or "svg"
	output   string // output file; stdout when empty
	detailed bool   // add id and gender to node labels
}

// renderCommand draws the family as a Graphviz diagram.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatDOT}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the family as a Graphviz diagram",
		Example: `  famtree render > family.dot
  famtree render --format svg -o family.svg --detailed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				return c.runRender(cmd, ed, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show member id and gender in nodes")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{formatDOT, formatSVG}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, ed *editor.Editor, opts renderOpts) error {
	prog := newProgress(c.Logger)
	dot := ed.DOT(nodelink.Options{Detailed: opts.detailed})

	var data []byte
	switch opts.format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		err := spin(cmd.Context(), "Rendering SVG", func() error {
			var err error
			data, err = nodelink.RenderSVG(cmd.Context(), dot)
			return err
		})
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
	default:
		return warnOrFail(apperrors.New(apperrors.ErrCodeInvalidInput, "unknown format %q (want dot or svg)", opts.format))
	}

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	prog.done(fmt.Sprintf("Rendered %d members", ed.Len()))
	printFile(opts.output)
	return nil
}
