package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/ctf-migrate/internal/service"
)

// NewInitCommand creates the init command.
func NewInitCommand(p *Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the content type that stores migration state",
		Long:  "Create the 'migration' content type in the environment. Running it again does nothing.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := p.remote()
			if err != nil {
				return err
			}
			return c.MigrationService().Init(cmd.Context(), service.RunInput{
				Credentials: c.Credentials(),
				DryRun:      p.DryRun(),
			})
		},
	}
}
