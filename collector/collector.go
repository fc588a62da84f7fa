// Package collector runs the per-channel collection cycle:
// fetch -> classify -> derive -> persist.
package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vidhunt/drive"
	"vidhunt/metrics"
	"vidhunt/youtube"
)

// Catalog is the upstream surface a cycle reads from.
type Catalog interface {
	FetchChannel(ctx context.Context, channelID string, fields youtube.FieldSet) (*youtube.StaticProfile, *youtube.Stats, error)
	ClassifyUploads(ctx context.Context, uploadsPlaylistID string) (*youtube.Classification, error)
}

// Repository is the persistence surface a cycle writes to.
type Repository interface {
	UpsertChannel(ctx context.Context, channelID string, profile youtube.StaticProfile, snap drive.Snapshot) (*drive.ChannelRecord, bool, error)
	UpdateIndex(ctx context.Context, entry drive.IndexEntry) error
}

// RunInfo stamps every snapshot a run produces.
type RunInfo struct {
	ExportID   string
	Filters    drive.Filters
	UpdateMode string
}

// Collector executes collection cycles for individual channels. It is the
// scheduler's per-item processor.
type Collector struct {
	catalog Catalog
	repo    Repository
	log     *zap.SugaredLogger

	basicFields  youtube.FieldSet
	metricFields metrics.FieldSet
	run          RunInfo

	now func() time.Time

	results []drive.ManifestEntry
}

// New creates a collector. basicFields selects the channel data to fetch;
// metricFields selects the derived metrics to compute. The fetch selection
// is widened automatically with every primary field the requested metrics
// depend on.
func New(catalog Catalog, repo Repository, basicFields youtube.FieldSet, metricFields metrics.FieldSet, run RunInfo, log *zap.SugaredLogger) *Collector {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Collector{
		catalog:      catalog,
		repo:         repo,
		basicFields:  basicFields,
		metricFields: metricFields,
		run:          run,
		log:          log,
		now:          time.Now,
	}
}

// fetchFields is the union of the requested basic fields and the primary
// fields the requested metrics require.
func (c *Collector) fetchFields() youtube.FieldSet {
	fields := c.basicFields.Clone()
	fields.Add(metrics.RequiredFields(c.metricFields)...)
	return fields
}

// Process runs one channel's collection cycle. A classification failure
// degrades to "classification absent"; a fetch or persistence failure fails
// the item. An index update failure after a successful document write is
// logged as a warning only.
func (c *Collector) Process(ctx context.Context, channelID string) error {
	fields := c.fetchFields()

	profile, stats, err := c.catalog.FetchChannel(ctx, channelID, fields)
	if err != nil {
		c.record(channelID, "", false)
		return fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	c.log.Infow("channel data collected", "channel", channelID, "title", profile.Title)

	var cls *youtube.Classification
	if metrics.NeedsClassification(c.metricFields) {
		cls, err = c.catalog.ClassifyUploads(ctx, profile.UploadsPlaylistID)
		if err != nil {
			// Classification is best-effort: the cycle continues with the
			// content metrics absent.
			c.log.Warnw("classification failed", "channel", channelID, "error", err)
			cls = nil
		} else {
			c.log.Infow("uploads classified",
				"channel", channelID,
				"shorts", cls.ShortsCount,
				"analyzed", cls.TotalAnalyzed)
		}
	}

	snap := c.buildSnapshot(profile, stats, cls)

	record, created, err := c.repo.UpsertChannel(ctx, channelID, *profile, snap)
	if err != nil {
		c.record(channelID, profile.Title, false)
		return fmt.Errorf("persist channel %s: %w", channelID, err)
	}

	entry := drive.IndexEntry{
		ChannelID:      channelID,
		Title:          profile.Title,
		LastUpdated:    snap.Timestamp,
		TotalSnapshots: record.Metadata.TotalCollections,
	}
	if created {
		first := snap.Timestamp
		entry.FirstCollected = &first
	}
	if err := c.repo.UpdateIndex(ctx, entry); err != nil {
		// The per-channel document is authoritative; the index may lag.
		c.log.Warnw("index update failed", "channel", channelID, "error", err)
	}

	c.record(channelID, profile.Title, true)
	c.log.Infow("channel persisted", "channel", channelID, "created", created)
	return nil
}

// buildSnapshot merges the primary counters with the derived metrics.
func (c *Collector) buildSnapshot(profile *youtube.StaticProfile, stats *youtube.Stats, cls *youtube.Classification) drive.Snapshot {
	var publishedAt *time.Time
	if profile.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339, profile.PublishedAt); err == nil {
			publishedAt = &t
		}
	}

	var mcls *metrics.Classification
	if cls != nil {
		mcls = &metrics.Classification{
			ShortsCount:     cls.ShortsCount,
			TotalAnalyzed:   cls.TotalAnalyzed,
			ShortsViewTotal: cls.ShortsViewTotal,
		}
	}

	derived := metrics.Derive(metrics.Inputs{
		SubscriberCount: stats.SubscriberCount,
		ViewCount:       stats.ViewCount,
		VideoCount:      stats.VideoCount,
	}, publishedAt, mcls, c.metricFields, c.now())

	return drive.Snapshot{
		Timestamp:             stats.Timestamp,
		SubscriberCount:       stats.SubscriberCount,
		ViewCount:             stats.ViewCount,
		VideoCount:            stats.VideoCount,
		HiddenSubscriberCount: stats.HiddenSubscriberCount,
		Derived:               derived,
		CollectionInfo: &drive.CollectionInfo{
			ExportID:       c.run.ExportID,
			Filters:        c.run.Filters,
			SelectedFields: c.basicFields.Names(),
		},
	}
}

func (c *Collector) record(channelID, title string, processed bool) {
	if title == "" {
		title = "Unknown"
	}
	c.results = append(c.results, drive.ManifestEntry{
		ChannelID: channelID,
		Title:     title,
		Processed: processed,
	})
}

// Results returns one manifest entry per channel processed so far, in
// processing order.
func (c *Collector) Results() []drive.ManifestEntry {
	return c.results
}

// Manifest summarizes the run for the collections/ archive.
func (c *Collector) Manifest(finished time.Time) *drive.CollectionManifest {
	processed := 0
	for _, e := range c.results {
		if e.Processed {
			processed++
		}
	}
	return &drive.CollectionManifest{
		CollectionInfo: drive.ManifestInfo{
			ExportID:       c.run.ExportID,
			Filters:        c.run.Filters,
			SelectedFields: c.basicFields.Names(),
			Timestamp:      finished,
			TotalChannels:  processed,
			UpdateMode:     c.run.UpdateMode,
		},
		Channels: c.results,
	}
}
