// Package commands implements CLI commands.
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/satishbabariya/ctf-migrate/internal/config"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/debug"
	"github.com/satishbabariya/ctf-migrate/internal/ui"
	"github.com/satishbabariya/ctf-migrate/internal/utils/container"
	"github.com/satishbabariya/ctf-migrate/internal/version"
)

// Provider builds the container once flags are parsed.
type Provider struct {
	v    *viper.Viper
	opts []container.Option
	c    *container.Container
}

// NewProvider creates a provider; opts are passed to every container it builds.
func NewProvider(v *viper.Viper, opts ...container.Option) *Provider {
	return &Provider{v: v, opts: opts}
}

// Container returns the container, building it on first use.
func (p *Provider) Container() (*container.Container, error) {
	if p.c != nil {
		return p.c, nil
	}
	cfg, err := config.Load(p.v)
	if err != nil {
		return nil, err
	}
	c, err := container.NewContainer(cfg, p.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	p.c = c
	return c, nil
}

// remote returns the container after checking the credentials are present.
func (p *Provider) remote() (*container.Container, error) {
	c, err := p.Container()
	if err != nil {
		return nil, err
	}
	if err := c.Config().Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DryRun reports whether --dry-run is set.
func (p *Provider) DryRun() bool {
	return p.v.GetBool("dry_run")
}

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand(v *viper.Viper, opts ...container.Option) *cobra.Command {
	p := NewProvider(v, opts...)

	rootCmd := &cobra.Command{
		Use:           "ctf-migrate",
		Short:         "Migration tooling for content models",
		Long:          "ctf-migrate applies, reverts and bootstraps versioned content model migrations",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug.Init(v.GetBool("debug") || debug.EnabledFromEnv())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("access-token", "t", "", "Management API access token")
	flags.StringP("space-id", "s", "", "Space id")
	flags.StringP("environment-id", "e", "", "Environment id (default \"master\")")
	flags.StringP("migrations-dir", "m", "", "Directory holding the migration scripts (default \"./migrations\")")
	flags.BoolP("dry-run", "d", false, "Print the plan without changing anything")
	flags.Bool("debug", false, "Enable debug logging")

	for key, name := range map[string]string{
		"access_token":   "access-token",
		"space_id":       "space-id",
		"environment_id": "environment-id",
		"migrations_dir": "migrations-dir",
		"dry_run":        "dry-run",
		"debug":          "debug",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	rootCmd.AddCommand(NewInitCommand(p))
	rootCmd.AddCommand(NewCreateCommand(p))
	rootCmd.AddCommand(NewListCommand(p))
	rootCmd.AddCommand(NewUpCommand(p))
	rootCmd.AddCommand(NewDownCommand(p))
	rootCmd.AddCommand(NewBootstrapCommand(p))
	rootCmd.AddCommand(NewDownloadCommand(p))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// PrintError prints err, adding hints for the errors users can act on.
func PrintError(err error) {
	ui.PrintError("%v", err)

	switch {
	case errors.Is(err, domain.ErrInvalidCredential):
		ui.PrintInfo("Personal access tokens start with CFPAT-")
	case errors.Is(err, domain.ErrContentTypeMissing):
		ui.PrintInfo("Run 'ctf-migrate init' to create it")
	}
}
