package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/ctf-migrate/internal/service"
)

// NewDownloadCommand creates the download command.
func NewDownloadCommand(p *Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Download the current content model",
		Long:  "Write the content types, editor interfaces and locales of the environment to current-schema.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := p.remote()
			if err != nil {
				return err
			}
			_, err = c.SchemaService().Download(cmd.Context(), service.RunInput{
				Credentials: c.Credentials(),
			})
			return err
		},
	}
}
