package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/famtree/internal/server"
	apperrors "github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/editor"
	"github.com/matzehuels/famtree/pkg/storage"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tree over HTTP",
		Long: `Serve the tree as a JSON API until interrupted.

With --watch and the file backend, edits made to the snapshot file by other
processes (for example another famtree command) are picked up automatically.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				return c.runServe(cmd.Context(), ed, addr, watch)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the snapshot file changes on disk")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, ed *editor.Editor, addr string, watch bool) error {
	g, ctx := errgroup.WithContext(ctx)

	if watch {
		opts := c.storageOptions()
		if ed.Backend() != storage.BackendFile {
			return apperrors.New(apperrors.ErrCodeUnsupported, "--watch needs the file backend, not %s", ed.Backend())
		}
		g.Go(func() error {
			c.Logger.Info("watching snapshot", "path", opts.Path)
			return storage.Watch(ctx, opts.Path,
				func() {
					if err := ed.Refresh(ctx); err != nil {
						c.Logger.Warn("reload after change", "error", err)
					}
				},
				func(err error) { c.Logger.Warn("watcher", "error", err) },
			)
		})
	}

	printInfo("Serving on %s", StyleHighlight.Render(addr))
	g.Go(func() error {
		return server.New(ed, c.Logger).ListenAndServe(ctx, addr)
	})
	return g.Wait()
}
