package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"JournalCrawler/internal/app"
	"JournalCrawler/internal/config"
	"JournalCrawler/internal/logging"
	"JournalCrawler/internal/usecase"
)

type rootOptions struct {
	configPath string
	journal    string
	toFile     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "journalcrawler",
		Short:         "Crawl an IEEE Xplore journal and reconcile its articles into Postgres",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (default $JOURNAL_CRAWLER_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.journal, "journal", "", "journal publication number (overrides config)")
	cmd.PersistentFlags().BoolVar(&opts.toFile, "to-file", false, "write a plain-text report per crawl")

	cmd.AddCommand(
		newModeCmd(opts, "current", "Reconcile every article of the most recent issue", usecase.ModeCurrentIssue),
		newModeCmd(opts, "early-access", "Reconcile every article of the early access issue", usecase.ModeEarlyAccess),
		newModeCmd(opts, "new", "Reconcile listed articles missing from the store", usecase.ModeNewArticles),
		newWatchCmd(opts),
	)
	return cmd
}

func newModeCmd(opts *rootOptions, use, short string, mode usecase.Mode) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), opts, func(a *app.Application, logger *slog.Logger) error {
				articles, err := a.RunOnce(cmd.Context(), mode, opts.toFile)
				if err != nil {
					return err
				}
				logger.Info("crawl complete", "mode", string(mode), "articles", len(articles))
				return nil
			})
		},
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Crawl for new articles now and then on every scheduler interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), opts, func(a *app.Application, _ *slog.Logger) error {
				return a.Watch(cmd.Context(), opts.toFile)
			})
		},
	}
}

func loadConfig(opts *rootOptions) config.Config {
	cfg := config.Load(opts.configPath)
	if opts.journal != "" {
		cfg.Journal = opts.journal
	}
	return cfg
}

func withApplication(ctx context.Context, opts *rootOptions, run func(*app.Application, *slog.Logger) error) error {
	cfg := loadConfig(opts)
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init application: %w", err)
	}
	defer application.Close()

	return run(application, logger)
}
