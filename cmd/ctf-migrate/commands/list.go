package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/ctf-migrate/internal/service"
	"github.com/satishbabariya/ctf-migrate/internal/ui"
)

// NewListCommand creates the list command.
func NewListCommand(p *Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List migrations and when they were applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := p.remote()
			if err != nil {
				return err
			}
			migrations, err := c.MigrationService().List(cmd.Context(), service.RunInput{
				Credentials: c.Credentials(),
			})
			if err != nil {
				return err
			}
			if len(migrations) == 0 {
				ui.PrintInfo("No migrations found in %s", c.MigrationService().Dir())
				return nil
			}

			entries := make([]ui.ListEntry, 0, len(migrations))
			for _, m := range migrations {
				var applied time.Time
				if m.Timestamp != nil {
					applied = *m.Timestamp
				}
				entries = append(entries, ui.ListEntry{
					Title:       m.Title,
					Description: m.Description,
					Timestamp:   applied,
				})
			}
			ui.PrintList(entries)
			return nil
		},
	}
}
