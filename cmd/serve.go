package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethpandaops/aerosense/pkg/engine"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API and frontend",
	Long: `Serve the dashboard API and the embedded frontend. When the warmer is
enabled in the config it runs in the same process.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	config, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	return runEngine(cmd, config)
}

// runEngine starts the engine and blocks until SIGINT or SIGTERM
func runEngine(cmd *cobra.Command, config *engine.Config) error {
	if err := applyConfigLogLevel(cmd, config.Logging); err != nil {
		return err
	}

	logger.Info("Configuration loaded")

	app, err := engine.NewService(logger, config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		_ = app.Stop()
		return err
	}

	<-ctx.Done()

	// Graceful shutdown
	return app.Stop()
}
