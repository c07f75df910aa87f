// Package cli is the cobra command surface. It loads configuration, probes
// for the cluster commands, and hands the terminal over to the dashboard.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"slurmvision/internal/config"
	"slurmvision/internal/logging"
	"slurmvision/internal/slurm"
	"slurmvision/internal/tui"
)

// Version is stamped by the release build.
var Version = "dev"

func newRootCmd() *cobra.Command {
	var (
		configPath   string
		pollInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "slurmvision",
		Short: "Terminal dashboard for Slurm jobs and partitions",
		Long: `slurmvision polls squeue and sinfo on an interval and renders the
results as a navigable terminal dashboard with multi-select job
cancellation, detail inspection, and live filtering.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, warnings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("poll-interval") {
				cfg.PollInterval = config.Duration(pollInterval)
				warnings = cfg.Validate()
			}

			log, closeLog := logging.New("slurmvision")
			defer closeLog()
			log.Info("starting", "version", Version, "poll_interval", cfg.PollInterval.Std())

			runner := slurm.NewRunner(cfg.CommandTimeout.Std(), log)
			client := slurm.NewClient(
				runner,
				cfg.Jobs.Query(),
				cfg.Nodes.Query(),
				cfg.Detail.Query(),
				cfg.CancelCommand,
			)
			if err := client.Check(); err != nil {
				return fmt.Errorf("cluster commands unavailable: %w", err)
			}

			return tui.Run(cfg, client, log, warnings)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().DurationVarP(&pollInterval, "poll-interval", "i", 0, "override the poll interval")

	return cmd
}

// Execute runs the root command and maps failure to the process exit code.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "slurmvision:", err)
		os.Exit(1)
	}
}
