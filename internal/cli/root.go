// Package cli holds the marketplace command tree.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/homeservices/marketplace/internal/infrastructure/config"
	"github.com/homeservices/marketplace/pkg/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Backend string
	Pretty  bool

	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand creates the root command. Configuration is read from the
// environment once, before any subcommand runs.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "marketplace",
		Short:         "Home-services marketplace",
		Long:          "Homeowners post service requests, experts send offers, homeowners accept one.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if opts.Backend != "" {
				cfg.Store.Backend = opts.Backend
			}
			opts.cfg = cfg
			opts.log = logger.Init(logger.Options{
				Level:   cfg.LogLevel,
				Pretty:  opts.Pretty || !cfg.IsProduction(),
				Service: "marketplace",
			})
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "record store backend (file|memory|redis|mongo), overrides STORE_BACKEND")
	cmd.PersistentFlags().BoolVar(&opts.Pretty, "pretty", false, "human-readable console logs")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))

	return cmd
}
