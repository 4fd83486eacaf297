package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/app"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/logging"
)

var (
	configPath string
	logger     zerolog.Logger
)

// errUnhealthy is returned by commands whose validation produced a failed
// verdict. The verdict has already been reported, so it only sets the exit
// code.
var errUnhealthy = errors.New("service is unhealthy")

func newRootCmd(i *do.Injector) *cobra.Command {
	return &cobra.Command{
		Use:           "hpdctl",
		Short:         "Validate the health of the HPD pricing service",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			// Source order determines precedence. The last source loaded will
			// override any previous values.
			var sources []*config.Source
			if configPath != "" {
				sources = append(sources, config.NewFileSource(configPath))
			}
			sources = append(sources,
				config.NewEnvVarSource(),
				config.NewPFlagSource(cmd.Flags()),
			)

			cfg, err := config.LoadSources(sources...)
			if err != nil {
				return fmt.Errorf("failed to load configs: %w", err)
			}

			config.Provide(i, cfg)
			logging.Provide(i)
			app.Provide(i)

			logger, err = do.Invoke[zerolog.Logger](i)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			return nil
		},
	}
}

// addValidationFlags registers the flags shared by every command that runs a
// validation. Flag names match config keys.
func addValidationFlags(flags *pflag.FlagSet) {
	def := config.DefaultConfig()

	flags.String("service.unit", def.Service.Unit, "The systemd unit to validate.")
	flags.String("service.unit_file", def.Service.UnitFile, "Path to the unit file, read for failure diagnostics.")
	flags.String("health.url", def.Health.URL, "The health endpoint URL.")
	flags.Duration("health.request_timeout", def.Health.RequestTimeout, "Timeout for a single health request.")
	flags.String("health.readiness_key", def.Health.ReadinessKey, "JSON path of the readiness field in the health response.")
	flags.String("health.readiness_value", def.Health.ReadinessValue, "Value of the readiness field that means ready.")
	flags.Int("retry.max_attempts", def.Retry.MaxAttempts, "Maximum number of health requests.")
	flags.Duration("retry.interval", def.Retry.Interval, "Delay between health requests.")
	flags.String("probe.method", string(def.Probe.Method), "Service status probe: auto, dbus, systemctl or none.")
	flags.String("fetcher.method", string(def.Fetcher.Method), "Health fetcher: auto, http, curl, wget or command.")
	flags.Bool("logs.enabled", def.Logs.Enabled, "Collect recent service logs on failure.")
	flags.Int("logs.lines", def.Logs.Lines, "Number of log lines to collect on failure.")
	flags.Bool("diagnostics.host", def.Diagnostics.Host, "Include a host resource snapshot on failure.")
	flags.StringP("output.format", "o", string(def.Output.Format), "Report format: text, json or yaml.")
	flags.String("output.result_file", def.Output.ResultFile, "Also write the report to this file.")
	flags.Bool("mqtt.enabled", def.MQTT.Enabled, "Publish reports to an MQTT broker.")
	flags.String("mqtt.broker_url", def.MQTT.BrokerURL, "MQTT broker URL, e.g. 'tcp://localhost:1883'.")
	flags.String("mqtt.topic", def.MQTT.Topic, "MQTT topic for reports.")
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

func Execute() {
	i := do.New()
	rootCmd := newRootCmd(i)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config-path", "c", "", "Path to a JSON or YAML config file.")
	rootCmd.PersistentFlags().StringP("logging.level", "l", "", "The logging level, e.g. 'debug', 'info', 'error', etc.")
	rootCmd.PersistentFlags().BoolP("logging.pretty", "p", false, "Use pretty logging instead of JSON logging.")

	rootCmd.AddCommand(newValidateCommand(i))
	rootCmd.AddCommand(newWatchCommand(i))
	rootCmd.AddCommand(newVersionCommand())

	err := rootCmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, errUnhealthy):
	case logger.GetLevel() == zerolog.NoLevel:
		// NoLevel indicates that the logger is uninitialized. In this case
		// we'll use our fallback logger.
		logging.Fatal(err, "command failed")
	default:
		logger.Error().
			Err(err).
			Msg("command failed")
	}
	os.Exit(exitCode(err))
}
