package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	coremon "github.com/kilianp07/crewplan/core/monitoring"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the projection API and metrics",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	defer coremon.Recover()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, _, closeSvc, err := newService(cmd)
	if err != nil {
		return err
	}
	defer closeSvc()
	return svc.Run(ctx)
}
