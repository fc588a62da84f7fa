// Package export flattens the channel document tree into a single ranked
// dataset for downstream consumers.
package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"vidhunt/drive"
	"vidhunt/metrics"
)

// Entry is one channel's latest observation, flattened for serving.
type Entry struct {
	ChannelID       string     `json:"channelId"`
	Title           string     `json:"title"`
	Thumbnail       string     `json:"thumbnail,omitempty"`
	CustomURL       string     `json:"customUrl,omitempty"`
	Country         string     `json:"country,omitempty"`
	SubscriberCount *int64     `json:"subscriberCount,omitempty"`
	ViewCount       *int64     `json:"viewCount,omitempty"`
	VideoCount      *int64     `json:"videoCount,omitempty"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`

	metrics.Derived
}

// Dataset is the export payload.
type Dataset struct {
	GeneratedAt   time.Time `json:"generatedAt"`
	TotalChannels int       `json:"totalChannels"`
	Channels      []Entry   `json:"channels"`
}

// Build flattens the records into a dataset ranked by subscriber count,
// largest first. Each channel contributes its newest snapshot; records with
// no snapshots are carried with static data only. Channels without a
// subscriber count sort last.
func Build(records []*drive.ChannelRecord, now time.Time) *Dataset {
	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		entry := Entry{
			ChannelID: record.ChannelID,
			Title:     record.StaticData.Title,
			Thumbnail: record.StaticData.ThumbnailURL,
			CustomURL: record.StaticData.CustomURL,
			Country:   record.StaticData.Country,
		}
		if n := len(record.Snapshots); n > 0 {
			latest := record.Snapshots[n-1]
			ts := latest.Timestamp
			entry.Timestamp = &ts
			entry.SubscriberCount = latest.SubscriberCount
			entry.ViewCount = latest.ViewCount
			entry.VideoCount = latest.VideoCount
			entry.Derived = latest.Derived
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].SubscriberCount, entries[j].SubscriberCount
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})

	return &Dataset{
		GeneratedAt:   now.UTC(),
		TotalChannels: len(entries),
		Channels:      entries,
	}
}

// Write serializes the dataset to path atomically.
func Write(dataset *Dataset, path string) error {
	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return writeFileAtomic(path, data)
}
