package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/dropwatch/internal/auction"
	"github.com/jmylchreest/dropwatch/internal/browser"
	"github.com/jmylchreest/dropwatch/internal/config"
	"github.com/jmylchreest/dropwatch/internal/extract"
	"github.com/jmylchreest/dropwatch/internal/logger"
	"github.com/jmylchreest/dropwatch/internal/monitor"
	"github.com/jmylchreest/dropwatch/internal/output"
	"github.com/jmylchreest/dropwatch/internal/page"
	"github.com/jmylchreest/dropwatch/internal/publish"
	s3publish "github.com/jmylchreest/dropwatch/internal/publish/s3"
	"github.com/jmylchreest/dropwatch/internal/report"
)

const publishTimeout = 2 * time.Minute

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the results page until every auction has ended",
	Long: `Open the auction results page, apply the filters and page size, then poll
it until every visible auction has ended or --max-duration elapses.

The snapshot file is rewritten after every poll cycle and once more on exit,
so it always holds the full set of domains seen during the run.

Examples:
  dropwatch monitor
  dropwatch monitor --max-duration 45m --stuck-threshold 6
  dropwatch monitor --fetch-mode static -u http://localhost:8080/results.html`,
	PreRun: func(cmd *cobra.Command, args []string) {
		bindFlags(cmd.Flags(), runFlagKeys)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogger()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		_, err = runMonitor(ctx, cfg, os.Stdout, viper.GetBool("quiet"))
		return err
	},
}

// runFlagKeys maps flags shared by monitor and schedule to config keys.
var runFlagKeys = map[string]string{
	"url":             "url",
	"output":          "output",
	"format":          "format",
	"fetch-mode":      "fetch_mode",
	"filter":          "filters",
	"page-size":       "page_size",
	"poll-interval":   "poll_interval",
	"max-duration":    "max_duration",
	"stuck-threshold": "stuck_threshold",
	"confirm-ended":   "confirm_ended",
	"headless":        "browser.headless",
	"stealth":         "browser.stealth",
	"chrome-path":     "browser.chrome_path",
	"publish-bucket":  "publish.bucket",
	"publish-prefix":  "publish.prefix",
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	addRunFlags(monitorCmd.Flags())
}

func addRunFlags(flags *pflag.FlagSet) {
	d := config.Defaults()

	// Page settings
	flags.StringP("url", "u", d.URL, "auction results page URL")
	flags.String("fetch-mode", d.FetchMode, "page source: dynamic (headless Chrome), static (plain HTTP)")
	flags.StringSlice("filter", d.Filters, "filter checkbox names to tick (can be repeated)")
	flags.Int("page-size", d.PageSize, "results per page (0 keeps the site default)")

	// Output settings
	flags.StringP("output", "o", d.Output, "snapshot file")
	flags.String("format", d.Format, "snapshot format: csv, json, yaml")

	// Timing and heuristics
	flags.Duration("poll-interval", d.PollInterval, "pause between poll cycles")
	flags.Duration("max-duration", d.MaxDuration, "stop and finalize everything after this long")
	flags.Int("stuck-threshold", d.StuckThreshold, "unchanged reads before a countdown counts as frozen")
	flags.Bool("confirm-ended", d.ConfirmEnded, "re-read rows whose countdown is missing before finalizing them")

	// Browser settings
	flags.Bool("headless", d.Browser.Headless, "run Chrome headless")
	flags.Bool("stealth", d.Browser.Stealth, "enable anti-bot detection evasion")
	flags.String("chrome-path", d.Browser.ChromePath, "Chrome binary (default: search PATH)")

	// Publishing
	flags.String("publish-bucket", d.Publish.Bucket, "upload the final snapshot to this S3 bucket")
	flags.String("publish-prefix", d.Publish.Prefix, "object key prefix for published snapshots")
}

// runMonitor performs one complete monitoring run, publishes the snapshot
// when configured and prints the summary table unless quiet.
func runMonitor(ctx context.Context, cfg config.Config, out io.Writer, quiet bool) (monitor.Result, error) {
	snap, err := output.NewSnapshotFile(cfg.Output, output.Format(cfg.Format))
	if err != nil {
		return monitor.Result{}, err
	}

	src := newSource(cfg)
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn("closing page source", "error", err)
		}
	}()

	m := monitor.New(
		src,
		extract.New(cfg.Selectors),
		auction.Policy{StuckThreshold: cfg.StuckThreshold},
		snap,
		monitor.Options{
			PollInterval:    cfg.PollInterval,
			EmptyRetryDelay: cfg.EmptyRetryDelay,
			MaxDuration:     cfg.MaxDuration,
			ConfirmEnded:    cfg.ConfirmEnded,
			ConfirmDelay:    cfg.ConfirmDelay,
		},
	)

	res, runErr := m.Run(ctx)
	if runErr != nil {
		logger.Error("monitoring failed", "run_id", res.RunID, "error", runErr)
	}

	var pubErr error
	if cfg.Publish.Enabled() && res.Ledger != nil && res.Ledger.Len() > 0 {
		pubErr = publishSnapshot(ctx, cfg, snap)
		if pubErr != nil {
			logger.Error("snapshot publish failed", "error", pubErr)
		}
	}

	if !quiet && res.Ledger != nil {
		title := fmt.Sprintf("run %s: %s after %d cycles", res.RunID, res.Reason, res.Cycles)
		report.Render(out, title, output.FromRecords(res.Ledger.Records()))
	}

	return res, errors.Join(runErr, pubErr)
}

func newSource(cfg config.Config) page.Source {
	if cfg.FetchMode == "static" {
		return page.NewStatic(page.StaticConfig{
			URL:       cfg.URL,
			UserAgent: cfg.Browser.UserAgent,
			Timeout:   cfg.Browser.Timeout,
		})
	}
	return browser.NewSession(browser.Config{
		URL:          cfg.URL,
		Filters:      cfg.Filters,
		PageSize:     cfg.PageSize,
		UserAgent:    cfg.Browser.UserAgent,
		ChromePath:   cfg.Browser.ChromePath,
		Headless:     cfg.Browser.Headless,
		Stealth:      cfg.Browser.Stealth,
		Timeout:      cfg.Browser.Timeout,
		SetupTimeout: cfg.SetupTimeout,
		ScrollSettle: cfg.ScrollSettle,
	})
}

// publishSnapshot uploads the written snapshot. It runs even after ctx is
// cancelled so an interrupted run still publishes what it saved.
func publishSnapshot(ctx context.Context, cfg config.Config, snap *output.SnapshotFile) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	client, err := s3publish.New(ctx, s3publish.Config{
		Bucket:         cfg.Publish.Bucket,
		Region:         cfg.Publish.Region,
		Endpoint:       cfg.Publish.Endpoint,
		AccessKey:      cfg.Publish.AccessKey,
		SecretKey:      cfg.Publish.SecretKey,
		ForcePathStyle: cfg.Publish.ForcePathStyle,
	})
	if err != nil {
		return err
	}

	_, err = publish.New(client, cfg.Publish.Prefix).Publish(ctx, snap.Path(), snap.Format())
	return err
}
