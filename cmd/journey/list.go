package main

import (
	"fmt"

	"journey-harness/internal/di"
	"journey-harness/internal/infrastructure/env"

	"github.com/spf13/cobra"
)

func init() {
	listCmd.Flags().StringVar(&flagJourneysDir, "journeys", "", "directory of *.yaml journeys replacing the bundled ones")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the journeys in suite order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFromEnv(env.NewEnvService())
		if flagJourneysDir != "" {
			cfg.JourneysDir = flagJourneysDir
		}

		container, err := di.NewContainer(cfg)
		if err != nil {
			return err
		}
		defer container.Close()

		out := cmd.OutOrStdout()
		for _, sc := range container.Catalog.All() {
			fmt.Fprintf(out, "%-20s %3d steps  %s\n", sc.ID, len(sc.Steps), sc.Description)
		}
		return nil
	},
}
