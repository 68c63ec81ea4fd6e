package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/ctf-migrate/internal/service"
)

// NewDownCommand creates the down command.
func NewDownCommand(p *Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "down [file]",
		Short: "Revert applied migrations",
		Long:  "Revert the last applied migration, or every migration back to and including [file]",
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
			return c.MigrationService().Down(cmd.Context(), in)
		},
	}
}
