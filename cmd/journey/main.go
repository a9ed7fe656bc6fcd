package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var errScenariosFailed = errors.New("scenarios failed")

var rootCmd = &cobra.Command{
	Use:           "journey",
	Short:         "Run browser acceptance journeys against the hotel reservation site",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errScenariosFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
