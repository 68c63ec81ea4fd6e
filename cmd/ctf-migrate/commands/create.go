package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewCreateCommand creates the create command.
func NewCreateCommand(p *Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty migration script",
		Long:  "Create <timestamp>-<name>.yaml in the migrations directory with empty up and down sections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := p.Container()
			if err != nil {
				return err
			}
			_, err = c.MigrationService().Create(cmd.Context(), strings.Join(args, " "))
			return err
		},
	}
}
