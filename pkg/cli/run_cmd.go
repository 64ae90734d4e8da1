package cli

import (
	"github.com/spf13/cobra"

	"github.com/vingov/hudi/internal/config"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		schedule   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sync every table from a config file, once or on a schedule",
		Long: "run syncs all tables listed in a YAML config file. Tables are synced\n" +
			"concurrently with each other; each table's run is internally sequential.\n" +
			"With a schedule (cron syntax, @every included) the process keeps running\n" +
			"and re-syncs until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}

			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			if schedule != "" {
				cfg.Schedule = schedule
			}
			cfg.ApplyEnv()
			cfg.ApplyDefaults()
			if err := cfg.Validate(); err != nil {
				return err
			}

			cmd.SilenceUsage = true
			logger := newLogger(cfg)
			if cfg.Schedule == "" {
				return syncAll(cmd.Context(), cfg, logger)
			}
			return runScheduled(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file (required)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule, overrides the config file")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
