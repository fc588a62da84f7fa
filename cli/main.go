// Package main provides the vidhunt CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"vidhunt/collector"
	"vidhunt/config"
	"vidhunt/drive"
	"vidhunt/export"
	"vidhunt/metrics"
	"vidhunt/scheduler"
	"vidhunt/youtube"
)

var version = "0.1.0"

var defaultFields = []string{
	youtube.FieldTitle,
	youtube.FieldSubscriberCount,
	youtube.FieldViewCount,
	youtube.FieldVideoCount,
	youtube.FieldPublishedAt,
}

var defaultMetrics = []string{
	metrics.AverageViewsPerVideo,
	metrics.SubsGainedPerDay,
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "vidhunt",
		Short:   "Discover and track YouTube channels",
		Long:    "Vidhunt discovers channels matching filters, measures them on a cadence, and persists versioned channel documents to Drive.",
		Version: version,
	}
	rootCmd.SetVersionTemplate("vidhunt version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newDiscoverCmd(&verbose))
	rootCmd.AddCommand(newCollectCmd(&verbose))
	rootCmd.AddCommand(newUpdateCmd(&verbose))
	rootCmd.AddCommand(newExportCmd(&verbose))

	return rootCmd
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger.Sugar(), nil
}

// newCatalog builds the Data API client from config.
func newCatalog(ctx context.Context, cfg *config.Config) (*youtube.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing API key: set VIDHUNT_API_KEY or apiKey in vidhunt.json")
	}
	client, err := youtube.NewClient(ctx, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	client.SetRequestRate(cfg.RequestRate)
	client.RetryConfig.MaxRetries = cfg.MaxRetries
	return client, nil
}

// newRepository builds the Drive-backed repository from config.
func newRepository(ctx context.Context, cfg *config.Config) (*drive.Repository, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("missing access token: set VIDHUNT_ACCESS_TOKEN or accessToken in vidhunt.json")
	}
	if cfg.StorageRoot == "" {
		return nil, fmt.Errorf("missing storage root: set VIDHUNT_STORAGE_ROOT or storageRoot in vidhunt.json")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	service, err := gdrive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return drive.NewRepository(drive.NewStore(service), cfg.StorageRoot, cfg.Retention), nil
}

func parseFields(s string) youtube.FieldSet {
	if s == "" {
		return youtube.NewFieldSet(defaultFields...)
	}
	return youtube.NewFieldSet(splitList(s)...)
}

func parseMetrics(s string) (metrics.FieldSet, error) {
	names := defaultMetrics
	if s != "" {
		names = splitList(s)
	}
	for _, n := range names {
		if !metrics.IsMetric(n) {
			return nil, fmt.Errorf("unknown metric %q", n)
		}
	}
	return metrics.NewFieldSet(names...), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// runCollection paces the worklist through a collector and archives the run
// manifest.
func runCollection(ctx context.Context, cfg *config.Config, catalog *youtube.Client, repo *drive.Repository,
	ids []string, fields youtube.FieldSet, mset metrics.FieldSet, run collector.RunInfo, log *zap.SugaredLogger) error {

	coll := collector.New(catalog, repo, fields, mset, run, log)
	sched := scheduler.New(coll, cfg.Interval, log)
	sched.Start(ids)
	if err := sched.Run(ctx); err != nil {
		return err
	}

	_, total, failed := sched.Progress()
	log.Infow("collection finished", "channels", total, "failed", failed,
		"quotaRemaining", catalog.EstimatedQuota())

	if err := repo.SaveManifest(ctx, coll.Manifest(time.Now().UTC())); err != nil {
		log.Warnw("manifest write failed", "error", err)
	}
	return nil
}

func newDiscoverCmd(verbose *bool) *cobra.Command {
	var (
		keyword    string
		count      int
		maxSubs    int64
		sortOrder  string
		category   string
		fieldList  string
		metricList string
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find new channels and collect them",
		Long:  "Search for channels matching the keyword and filters, skip ones already stored, then collect and persist each survivor.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(*verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			catalog, err := newCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			repo, err := newRepository(ctx, cfg)
			if err != nil {
				return err
			}

			fields := parseFields(fieldList)
			mset, err := parseMetrics(metricList)
			if err != nil {
				return err
			}

			existing, err := repo.ExistingChannelIDs(ctx)
			if err != nil {
				return err
			}
			exclude := make(map[string]bool, len(existing))
			for _, id := range existing {
				exclude[id] = true
			}

			log.Infow("discovery started", "keyword", keyword, "count", count,
				"maxSubscribers", maxSubs, "excluded", len(exclude))
			ids, err := catalog.FindChannels(ctx, youtube.FindRequest{
				MaxSubscribers: maxSubs,
				Sort:           youtube.Sort(sortOrder),
				Count:          count,
				CategoryID:     category,
				Keyword:        keyword,
				Exclude:        exclude,
			})
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				log.Infow("no new channels found")
				return nil
			}
			log.Infow("discovery finished", "found", len(ids))

			run := collector.RunInfo{
				ExportID: uuid.NewString(),
				Filters: drive.Filters{
					MaxSubscribers: maxSubs,
					SortOrder:      sortOrder,
					Category:       category,
				},
				UpdateMode: "discover",
			}
			return runCollection(ctx, cfg, catalog, repo, ids, fields, mset, run, log)
		},
	}

	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "search keyword (required)")
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of new channels to find")
	cmd.Flags().Int64Var(&maxSubs, "max-subscribers", 100000, "subscriber-count ceiling")
	cmd.Flags().StringVar(&sortOrder, "sort", string(youtube.SortByViewCount), "candidate order: viewCount or videoCount_asc")
	cmd.Flags().StringVar(&category, "category", "", "video category ID filter")
	cmd.Flags().StringVar(&fieldList, "fields", "", "comma-separated channel fields to collect")
	cmd.Flags().StringVar(&metricList, "metrics", "", "comma-separated derived metrics to compute")
	cmd.MarkFlagRequired("keyword")

	return cmd
}

func newCollectCmd(verbose *bool) *cobra.Command {
	var (
		fieldList  string
		metricList string
	)

	cmd := &cobra.Command{
		Use:   "collect <channel-id-or-@handle>...",
		Short: "Collect specific channels",
		Long:  "Collect and persist the given channels. Handles starting with @ are resolved to channel IDs first.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(*verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			catalog, err := newCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			repo, err := newRepository(ctx, cfg)
			if err != nil {
				return err
			}

			fields := parseFields(fieldList)
			mset, err := parseMetrics(metricList)
			if err != nil {
				return err
			}

			var ids []string
			for _, arg := range args {
				if strings.HasPrefix(arg, "@") {
					id, err := catalog.ResolveHandle(ctx, arg)
					if err != nil {
						return fmt.Errorf("resolve %s: %w", arg, err)
					}
					log.Infow("handle resolved", "handle", arg, "channel", id)
					ids = append(ids, id)
					continue
				}
				ids = append(ids, arg)
			}

			run := collector.RunInfo{
				ExportID:   uuid.NewString(),
				UpdateMode: "collect",
			}
			return runCollection(ctx, cfg, catalog, repo, ids, fields, mset, run, log)
		},
	}

	cmd.Flags().StringVar(&fieldList, "fields", "", "comma-separated channel fields to collect")
	cmd.Flags().StringVar(&metricList, "metrics", "", "comma-separated derived metrics to compute")

	return cmd
}

func newUpdateCmd(verbose *bool) *cobra.Command {
	var (
		fieldList  string
		metricList string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Re-measure every stored channel",
		Long:  "Walk the channel index and collect a fresh snapshot for every known channel.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(*verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			catalog, err := newCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			repo, err := newRepository(ctx, cfg)
			if err != nil {
				return err
			}

			fields := parseFields(fieldList)
			mset, err := parseMetrics(metricList)
			if err != nil {
				return err
			}

			ids, err := repo.ExistingChannelIDs(ctx)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				log.Infow("no channels stored yet")
				return nil
			}
			log.Infow("update started", "channels", len(ids))

			run := collector.RunInfo{
				ExportID:   uuid.NewString(),
				UpdateMode: "update",
			}
			return runCollection(ctx, cfg, catalog, repo, ids, fields, mset, run, log)
		},
	}

	cmd.Flags().StringVar(&fieldList, "fields", "", "comma-separated channel fields to collect")
	cmd.Flags().StringVar(&metricList, "metrics", "", "comma-separated derived metrics to compute")

	return cmd
}

func newExportCmd(verbose *bool) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Flatten stored channels into a ranked dataset",
		Long:  "Read every channel document, take each channel's latest snapshot, rank by subscriber count, and write one JSON dataset.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(*verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			repo, err := newRepository(ctx, cfg)
			if err != nil {
				return err
			}

			records, skipped, err := repo.LoadChannelRecords(ctx)
			if err != nil {
				return err
			}
			for _, name := range skipped {
				log.Warnw("document skipped", "name", name)
			}

			dataset := export.Build(records, time.Now())
			if err := export.Write(dataset, out); err != nil {
				return err
			}
			log.Infow("dataset written", "path", out, "channels", dataset.TotalChannels, "skipped", len(skipped))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "kv-data.json", "output file path")

	return cmd
}
