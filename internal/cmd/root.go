// Package cmd wires the codelint CLI: cobra commands over the
// registry/executor/analyzer packages, plus the ambient logging and
// config concerns a standalone binary needs that the library packages
// deliberately stay silent about.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codelintio/codelint/internal/config"
	"github.com/codelintio/codelint/internal/observability"
)

// Root builds the top-level codelint command.
func Root() *cobra.Command {
	var (
		configPath string
		verbose    bool
		jsonLogs   bool

		cfg *config.Config
		log *zap.Logger
	)

	root := &cobra.Command{
		Use:           "codelint",
		Short:         "run static analyzers over a project and report normalized issues",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath, c.Flags())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = loaded

			l, err := observability.CLILogger(verbose, jsonLogs)
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			log = l
			return nil
		},
		PersistentPostRunE: func(c *cobra.Command, args []string) error {
			if log != nil {
				return log.Sync()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a codelint.yaml config file")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")
	root.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON instead of console format")

	root.AddCommand(newRunCommand(&cfg, &log))
	root.AddCommand(newAnalyzersCommand(&cfg))

	return root
}
