package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"journey-harness/internal/infrastructure/hotelsite"

	"github.com/spf13/cobra"
)

var flagServeAddr string

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "127.0.0.1:8080", "address to listen on")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bundled hotel site until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := hotelsite.Start(flagServeAddr, hotelsite.Options{AccessLog: os.Stderr})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s/ja/\n", srv.URL())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case <-ctx.Done():
			shutdown(srv)
			return nil
		case err := <-srv.Done():
			return err
		}
	},
}
