package cmd

import (
	"github.com/ethpandaops/aerosense/pkg/cache"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var warmerCmd = &cobra.Command{
	Use:   "warmer",
	Short: "Run only the cache warmer",
	Long: `Run the cache warmer without the API. Installation and node lists are
refreshed on the configured schedule into the shared Redis cache so
dashboard processes find them warm.`,
	RunE: runWarmer,
}

func init() {
	rootCmd.AddCommand(warmerCmd)
}

func runWarmer(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	config, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	config.API.Enabled = false
	config.Warmer.Enabled = true
	config.Cache.Backend = cache.BackendRedis

	return runEngine(cmd, config)
}
