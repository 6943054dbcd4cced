package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/dropwatch/internal/logger"
	"github.com/jmylchreest/dropwatch/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run monitor on a cron schedule",
	Long: `Start a long-running process that performs a full monitoring run every
time the cron expression fires. The expression has six fields, seconds
first. A run that is still going when the next one is due is skipped.

Examples:
  # Every day at 17:00:00 local time
  dropwatch schedule --cron "0 0 17 * * *"

  # Every 30 minutes, publishing each snapshot
  dropwatch schedule --cron "@every 30m" --publish-bucket drops`,
	PreRun: func(cmd *cobra.Command, args []string) {
		bindFlags(cmd.Flags(), runFlagKeys)
	},
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	flags := scheduleCmd.Flags()
	flags.String("cron", "", "cron expression with seconds field (required)")
	addRunFlags(flags)

	_ = scheduleCmd.MarkFlagRequired("cron")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	initLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	spec, _ := cmd.Flags().GetString("cron")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	quiet := viper.GetBool("quiet")
	runner := schedule.New(ctx)
	if _, err := runner.Add(spec, func(ctx context.Context) {
		res, err := runMonitor(ctx, cfg, os.Stdout, quiet)
		if err != nil {
			logger.Error("scheduled run failed", "run_id", res.RunID, "error", err)
		}
	}); err != nil {
		logError("%v", err)
		return err
	}

	runner.Start()
	for _, e := range runner.Entries() {
		logger.Info("next run scheduled", "at", e.Next)
	}

	<-ctx.Done()
	logger.Info("shutting down, waiting for the current run to save")
	runner.Stop()
	return nil
}
