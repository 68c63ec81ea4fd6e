package commands

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/ctf-migrate/internal/service"
	"github.com/satishbabariya/ctf-migrate/internal/ui"
)

// NewBootstrapCommand creates the bootstrap command.
func NewBootstrapCommand(p *Provider) *cobra.Command {
	var writeState bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Generate migration scripts from the current content model",
		Long: `Delete the migrations directory and write one script per content type that
recreates it. You are asked whether every generated script should be
recorded as applied. With --yes the answer comes from --write-state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := p.remote()
			if err != nil {
				return err
			}

			in := service.BootstrapInput{
				Credentials: c.Credentials(),
				WriteState:  writeState,
				Concurrency: c.Config().Concurrency,
			}
			if !yes {
				in.WriteState = true
				in.Confirm = surveyConfirm
			}
			files, err := c.BootstrapService().Bootstrap(cmd.Context(), in)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(files))
			for _, f := range files {
				rows = append(rows, []string{f.ContentTypeID, f.FileName})
			}
			return ui.PrintTable([]string{"Content type", "Script"}, rows)
		},
	}

	cmd.Flags().BoolVar(&writeState, "write-state", false, "Record the generated scripts as applied (used with --yes)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the state confirmation prompts")

	return cmd
}

func surveyConfirm(question string) (bool, error) {
	ok := false
	prompt := &survey.Confirm{
		Message: question,
		Default: false,
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}
	return ok, nil
}
