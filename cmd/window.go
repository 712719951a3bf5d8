package cmd

import (
	"fmt"
	"time"

	"github.com/ethpandaops/aerosense/pkg/timerange"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var (
	windowRange string
	windowStart string
	windowEnd   string
	windowNow   string
)

// windowCmd represents the window command
//
//nolint:gochecknoglobals // Cobra commands are typically global
var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Print the query window a time range resolves to",
	Long: `Resolve a time range selection into the half-open [start, finish)
window used for sensor queries.

Examples:
  # Window of the last hour
  aerosense window --range "Last hour"

  # Custom whole-day range
  aerosense window --range Custom --start 2024-03-01 --end 2024-03-03`,
	RunE: runWindow,
}

func init() {
	rootCmd.AddCommand(windowCmd)

	windowCmd.Flags().StringVar(&windowRange, "range", string(timerange.LastDay), "time range tag")
	windowCmd.Flags().StringVar(&windowStart, "start", "", "custom range start date (YYYY-MM-DD)")
	windowCmd.Flags().StringVar(&windowEnd, "end", "", "custom range end date (YYYY-MM-DD)")
	windowCmd.Flags().StringVar(&windowNow, "now", "", "reference time in RFC 3339 (default is the current time)")
}

func runWindow(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	now := time.Now().UTC()
	if windowNow != "" {
		parsed, err := time.Parse(time.RFC3339, windowNow)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}

		now = parsed.UTC()
	}

	start, err := timerange.ParseDate(windowStart)
	if err != nil {
		return err
	}

	end, err := timerange.ParseDate(windowEnd)
	if err != nil {
		return err
	}

	window, err := timerange.Resolve(timerange.Tag(windowRange), start, end, now)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Start:    %s\n", window.Start.Format(time.RFC3339Nano))
	_, _ = fmt.Fprintf(out, "Finish:   %s\n", window.Finish.Format(time.RFC3339Nano))
	_, _ = fmt.Fprintf(out, "Duration: %s\n", window.Duration())

	return nil
}
