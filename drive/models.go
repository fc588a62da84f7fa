package drive

import (
	"time"

	"vidhunt/metrics"
	"vidhunt/youtube"
)

// Snapshot is one collection cycle's observation of a channel: the primary
// counters plus whatever metrics were derived from them. Derived metric
// fields are inlined alongside the counters in the persisted document.
type Snapshot struct {
	Timestamp             time.Time `json:"timestamp"`
	SubscriberCount       *int64    `json:"subscriberCount,omitempty"`
	ViewCount             *int64    `json:"viewCount,omitempty"`
	VideoCount            *int64    `json:"videoCount,omitempty"`
	HiddenSubscriberCount *bool     `json:"hiddenSubscriberCount,omitempty"`

	metrics.Derived

	CollectionInfo *CollectionInfo `json:"collectionInfo,omitempty"`
}

// CollectionInfo records the run that produced a snapshot.
type CollectionInfo struct {
	ExportID       string   `json:"exportId"`
	Filters        Filters  `json:"filters"`
	SelectedFields []string `json:"selectedFields,omitempty"`
}

// Filters are the discovery parameters of a run.
type Filters struct {
	MaxSubscribers int64  `json:"maxSubscribers"`
	SortOrder      string `json:"sortOrder"`
	Category       string `json:"category"`
}

// RecordMetadata summarizes a channel document's collection history.
type RecordMetadata struct {
	FirstCollected   time.Time `json:"firstCollected"`
	LastUpdated      time.Time `json:"lastUpdated"`
	TotalCollections int       `json:"totalCollections"`
}

// ChannelRecord is the per-channel document. The static profile is
// overwritten on every collection; snapshots accumulate according to the
// retention policy. Records are never deleted by the pipeline.
type ChannelRecord struct {
	ChannelID  string                `json:"channelId"`
	StaticData youtube.StaticProfile `json:"staticData"`
	Snapshots  []Snapshot            `json:"snapshots"`

	// SubscriberHistory keeps a month-keyed ("2006-01") subscriber trail
	// under the latest-only retention policy.
	SubscriberHistory map[string]int64 `json:"subscriberHistory,omitempty"`

	Metadata RecordMetadata `json:"metadata"`
}

// IndexEntry is one channel's line in the directory index.
type IndexEntry struct {
	ChannelID      string     `json:"channelId"`
	Title          string     `json:"title"`
	FirstCollected *time.Time `json:"firstCollected,omitempty"`
	LastUpdated    time.Time  `json:"lastUpdated"`
	TotalSnapshots int        `json:"totalSnapshots"`
}

// ChannelIndex is the denormalized directory of known channels. It enables
// dedup and existence checks without opening every channel document. It is
// best-effort: a failed index update after a successful document write only
// makes the index lag, the per-channel documents stay authoritative.
type ChannelIndex struct {
	LastUpdated   time.Time    `json:"lastUpdated"`
	TotalChannels int          `json:"totalChannels"`
	Channels      []IndexEntry `json:"channels"`
}

// CollectionManifest is the per-run summary written under collections/.
type CollectionManifest struct {
	CollectionInfo ManifestInfo    `json:"collectionInfo"`
	Channels       []ManifestEntry `json:"channels"`
}

// ManifestInfo describes the run itself.
type ManifestInfo struct {
	ExportID       string    `json:"exportId"`
	Filters        Filters   `json:"filters"`
	SelectedFields []string  `json:"selectedFields,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	TotalChannels  int       `json:"totalChannels"`
	UpdateMode     string    `json:"updateMode"`
}

// ManifestEntry is one channel's outcome within a run.
type ManifestEntry struct {
	ChannelID string `json:"channelId"`
	Title     string `json:"title"`
	Processed bool   `json:"processed"`
}

// RetentionPolicy selects how snapshots accumulate in a channel record.
type RetentionPolicy string

const (
	// RetentionAppendAll appends every snapshot indefinitely.
	RetentionAppendAll RetentionPolicy = "append-all"
	// RetentionLatestOnly keeps only the newest snapshot plus the
	// month-keyed subscriber history.
	RetentionLatestOnly RetentionPolicy = "latest-only+history"
)

// Valid reports whether p names a known retention policy.
func (p RetentionPolicy) Valid() bool {
	return p == RetentionAppendAll || p == RetentionLatestOnly
}
