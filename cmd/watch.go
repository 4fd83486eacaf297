package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/app"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
)

func newWatchCommand(i *do.Injector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Validate the service periodically until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := do.Invoke[*app.App](i)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer func() {
				if err := a.Shutdown(); err != nil {
					logger.Warn().Err(err).Msg("failed to shut down cleanly")
				}
			}()

			return a.Watch(ctx)
		},
	}
	addValidationFlags(cmd.Flags())
	cmd.Flags().Duration("watch.every", config.DefaultConfig().Watch.Every, "Delay between validation runs.")

	return cmd
}
