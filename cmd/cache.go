package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethpandaops/aerosense/pkg/cache"
	"github.com/spf13/cobra"
)

// ErrPurgeNeedsSharedCache is returned when purging a process-local cache from the CLI
var ErrPurgeNeedsSharedCache = errors.New("only the redis cache backend can be purged from the CLI")

// cacheCmd represents the cache command group
//
//nolint:gochecknoglobals // Cobra commands are typically global
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the shared result cache",
}

//nolint:gochecknoglobals // Cobra commands are typically global
var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop every cached plot and option list from Redis",
	RunE:  runCachePurge,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(purgeCmd)
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	config, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	if config.Cache.Backend != cache.BackendRedis {
		return ErrPurgeNeedsSharedCache
	}

	if err := applyConfigLogLevel(cmd, config.Logging); err != nil {
		return err
	}

	app, release, err := newOfflineEngine(config)
	if err != nil {
		return err
	}
	defer release()

	if err := app.Dashboard().Purge(context.Background()); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cache purged")

	return nil
}
