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
)

func newValidateCommand(i *do.Injector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the service once and exit non-zero if it is unhealthy",
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

			r, err := a.Validate(ctx)
			if err != nil {
				return err
			}
			if !r.Passed() {
				return fmt.Errorf("%w: %s", errUnhealthy, r.Reason)
			}
			return nil
		},
	}
	addValidationFlags(cmd.Flags())

	return cmd
}
