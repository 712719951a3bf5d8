package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ethpandaops/aerosense/pkg/engine"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// optionsCmd represents the options command group
//
//nolint:gochecknoglobals // Cobra commands are typically global
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List selector options read from ClickHouse",
	Long:  `Commands for listing the installations, nodes and sensor types offered by the dashboard selectors.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Keep output readable unless a level was asked for
		if !cmd.Flags().Changed("log-level") {
			logger.SetLevel(logrus.ErrorLevel)
		}
		return nil
	},
}

//nolint:gochecknoglobals // Cobra commands are typically global
var installationsCmd = &cobra.Command{
	Use:   "installations",
	Short: "List installations",
	RunE:  runListInstallations,
}

//nolint:gochecknoglobals // Cobra commands are typically global
var nodesCmd = &cobra.Command{
	Use:   "nodes <installation>",
	Short: "List the nodes of an installation",
	Args:  cobra.ExactArgs(1),
	RunE:  runListNodes,
}

//nolint:gochecknoglobals // Cobra commands are typically global
var sensorTypesCmd = &cobra.Command{
	Use:   "sensor-types",
	Short: "List sensor types with their plotted variables",
	RunE:  runListSensorTypes,
}

func init() {
	rootCmd.AddCommand(optionsCmd)
	optionsCmd.AddCommand(installationsCmd)
	optionsCmd.AddCommand(nodesCmd)
	optionsCmd.AddCommand(sensorTypesCmd)
}

// newOfflineEngine builds the engine without starting servers or the warmer
func newOfflineEngine(config *engine.Config) (*engine.Service, func(), error) {
	config.API.Enabled = true
	config.Warmer.Enabled = false
	config.MetricsAddr = ""

	app, err := engine.NewService(logger, config)
	if err != nil {
		return nil, nil, err
	}

	release := func() {
		if stopErr := app.Stop(); stopErr != nil {
			logger.WithError(stopErr).Error("Failed to release engine")
		}
	}

	return app, release, nil
}

func loadOfflineEngine() (*engine.Service, func(), error) {
	config, err := loadConfig(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	return newOfflineEngine(config)
}

func runListInstallations(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	app, release, err := loadOfflineEngine()
	if err != nil {
		return err
	}
	defer release()

	installations, err := app.Dashboard().Installations(context.Background(), 0)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REFERENCE\tTURBINE\tLABEL")
	for _, i := range installations {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", i.Reference, i.TurbineID, i.Label())
	}

	return w.Flush()
}

func runListNodes(cmd *cobra.Command, args []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	app, release, err := loadOfflineEngine()
	if err != nil {
		return err
	}
	defer release()

	nodes, err := app.Dashboard().Nodes(context.Background(), args[0])
	if err != nil {
		return err
	}

	for _, node := range nodes {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), node)
	}

	return nil
}

func runListSensorTypes(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	app, release, err := loadOfflineEngine()
	if err != nil {
		return err
	}
	defer release()

	sensorTypes, err := app.Dashboard().SensorTypes(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tDISPLAY NAME\tVARIABLES")
	for _, st := range sensorTypes {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", st.Name, st.DisplayName, strings.Join(st.Variables, ", "))
	}

	return w.Flush()
}
