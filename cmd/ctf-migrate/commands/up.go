package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/script"
	"github.com/satishbabariya/ctf-migrate/internal/service"
	"github.com/satishbabariya/ctf-migrate/internal/ui"
	"github.com/satishbabariya/ctf-migrate/internal/utils/container"
	"github.com/satishbabariya/ctf-migrate/internal/watch"
)

// NewUpCommand creates the up command.
func NewUpCommand(p *Provider) *cobra.Command {
	var watchDir bool

	cmd := &cobra.Command{
		Use:   "up [file]",
		Short: "Apply pending migrations",
		Long:  "Apply pending migrations in order, stopping after [file] when it is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := p.remote()
			if err != nil {
				return err
			}
			in := service.RunInput{
				Credentials: c.Credentials(),
				DryRun:      p.DryRun(),
			}
			if len(args) > 0 {
				in.Target = args[0]
			}
			if !watchDir {
				return c.MigrationService().Up(cmd.Context(), in)
			}
			return runUpWatch(cmd.Context(), c, in)
		},
	}

	cmd.Flags().BoolVarP(&watchDir, "watch", "w", false, "Apply new migrations whenever the migrations directory changes")

	return cmd
}

func runUpWatch(ctx context.Context, c *container.Container, in service.RunInput) error {
	svc := c.MigrationService()
	w, err := watch.NewWatcher(svc.Dir(), func() error {
		return svc.Up(ctx, in)
	},
		watch.WithFilter(script.IsScriptFile),
		watch.WithErrorHandler(PrintError),
	)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		return err
	}
	ui.PrintInfo("Watching %s for new migrations, press Ctrl+C to stop", svc.Dir())
	<-ctx.Done()
	return nil
}
