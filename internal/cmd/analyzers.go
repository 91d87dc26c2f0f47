package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelintio/codelint/internal/config"
)

func newAnalyzersCommand(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "analyzers",
		Short: "list the analyzer drivers available to run",
		RunE: func(c *cobra.Command, args []string) error {
			set := buildDriverSet(*cfg, nil)
			for _, name := range set.Names() {
				fmt.Fprintln(c.OutOrStdout(), name)
			}
			return nil
		},
	}
}
