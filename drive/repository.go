package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vidhunt/youtube"
)

const (
	indexFileName         = "_channel_index.json"
	channelsFolderName    = "channels"
	collectionsFolderName = "collections"
)

// Repository owns the document layout inside one storage root: a channels/
// container with one <channelId>.json per channel, a _channel_index.json
// directory at the root, and a collections/ container with one manifest per
// run.
type Repository struct {
	store  ObjectStore
	rootID string
	policy RetentionPolicy

	channelsID    string
	collectionsID string
}

// NewRepository creates a repository rooted at the given container.
func NewRepository(store ObjectStore, rootID string, policy RetentionPolicy) *Repository {
	if !policy.Valid() {
		policy = RetentionAppendAll
	}
	return &Repository{store: store, rootID: rootID, policy: policy}
}

// ChannelsFolderID returns the channels container, creating it on first use.
func (r *Repository) ChannelsFolderID(ctx context.Context) (string, error) {
	if r.channelsID != "" {
		return r.channelsID, nil
	}
	id, err := r.ensureContainer(ctx, channelsFolderName)
	if err != nil {
		return "", err
	}
	r.channelsID = id
	return id, nil
}

func (r *Repository) collectionsFolderID(ctx context.Context) (string, error) {
	if r.collectionsID != "" {
		return r.collectionsID, nil
	}
	id, err := r.ensureContainer(ctx, collectionsFolderName)
	if err != nil {
		return "", err
	}
	r.collectionsID = id
	return id, nil
}

func (r *Repository) ensureContainer(ctx context.Context, name string) (string, error) {
	doc, err := r.store.FindDocument(ctx, name, r.rootID)
	if err != nil {
		return "", err
	}
	if doc != nil {
		return doc.ID, nil
	}
	c, err := r.store.CreateContainer(ctx, name, r.rootID)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// UpsertChannel writes one collection cycle's result into the channel's
// document: the static profile is overwritten, the snapshot accumulates
// according to the retention policy, and the collection metadata advances.
// It returns the stored record and whether the document was newly created.
func (r *Repository) UpsertChannel(ctx context.Context, channelID string, profile youtube.StaticProfile, snap Snapshot) (*ChannelRecord, bool, error) {
	folderID, err := r.ChannelsFolderID(ctx)
	if err != nil {
		return nil, false, err
	}

	fileName := channelID + ".json"
	doc, err := r.store.FindDocument(ctx, fileName, folderID)
	if err != nil {
		return nil, false, err
	}

	if doc == nil {
		record := &ChannelRecord{
			ChannelID:  channelID,
			StaticData: profile,
			Snapshots:  []Snapshot{snap},
			Metadata: RecordMetadata{
				FirstCollected:   snap.Timestamp,
				LastUpdated:      snap.Timestamp,
				TotalCollections: 1,
			},
		}
		if r.policy == RetentionLatestOnly {
			record.SubscriberHistory = historyWith(nil, snap)
		}
		content, err := marshalRecord(record)
		if err != nil {
			return nil, false, err
		}
		if _, err := r.store.CreateDocument(ctx, fileName, folderID, content); err != nil {
			return nil, false, err
		}
		return record, true, nil
	}

	raw, err := r.store.ReadContent(ctx, doc.ID)
	if err != nil {
		return nil, false, err
	}
	record := &ChannelRecord{}
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, false, &StorageError{Op: "read", Name: fileName, Err: ErrCorrupt}
	}

	record.ChannelID = channelID
	record.StaticData = profile
	switch r.policy {
	case RetentionLatestOnly:
		record.SubscriberHistory = historyWith(record.SubscriberHistory, snap)
		record.Snapshots = []Snapshot{snap}
	default:
		record.Snapshots = append(record.Snapshots, snap)
	}
	if record.Metadata.FirstCollected.IsZero() {
		record.Metadata.FirstCollected = snap.Timestamp
	}
	record.Metadata.LastUpdated = snap.Timestamp
	record.Metadata.TotalCollections++

	content, err := marshalRecord(record)
	if err != nil {
		return nil, false, err
	}
	if _, err := r.store.UpdateDocument(ctx, doc.ID, content); err != nil {
		return nil, false, err
	}
	return record, false, nil
}

// historyWith records the snapshot's subscriber count under its month key.
func historyWith(history map[string]int64, snap Snapshot) map[string]int64 {
	if snap.SubscriberCount == nil {
		return history
	}
	if history == nil {
		history = make(map[string]int64)
	}
	history[snap.Timestamp.Format("2006-01")] = *snap.SubscriberCount
	return history
}

func marshalRecord(v any) ([]byte, error) {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return content, nil
}

// GetOrCreateIndex loads the directory index at the storage root, creating
// an empty one on first access.
func (r *Repository) GetOrCreateIndex(ctx context.Context) (*ChannelIndex, error) {
	doc, err := r.store.FindDocument(ctx, indexFileName, r.rootID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		index := &ChannelIndex{LastUpdated: time.Now().UTC()}
		content, err := marshalRecord(index)
		if err != nil {
			return nil, err
		}
		if _, err := r.store.CreateDocument(ctx, indexFileName, r.rootID, content); err != nil {
			return nil, err
		}
		return index, nil
	}

	raw, err := r.store.ReadContent(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	index := &ChannelIndex{}
	if err := json.Unmarshal(raw, index); err != nil {
		return nil, &StorageError{Op: "read", Name: indexFileName, Err: ErrCorrupt}
	}
	return index, nil
}

// UpdateIndex merges one channel's entry into the directory index. The
// index is secondary to the per-channel documents; callers treat a failure
// here as a consistency warning, not a processing failure.
func (r *Repository) UpdateIndex(ctx context.Context, entry IndexEntry) error {
	if _, err := r.GetOrCreateIndex(ctx); err != nil {
		return err
	}
	doc, err := r.store.FindDocument(ctx, indexFileName, r.rootID)
	if err != nil {
		return err
	}
	if doc == nil {
		return &StorageError{Op: "update", Name: indexFileName, Err: ErrNotFound}
	}

	raw, err := r.store.ReadContent(ctx, doc.ID)
	if err != nil {
		return err
	}
	index := &ChannelIndex{}
	if err := json.Unmarshal(raw, index); err != nil {
		return &StorageError{Op: "update", Name: indexFileName, Err: ErrCorrupt}
	}

	found := false
	for i := range index.Channels {
		if index.Channels[i].ChannelID == entry.ChannelID {
			index.Channels[i].Title = entry.Title
			index.Channels[i].LastUpdated = entry.LastUpdated
			index.Channels[i].TotalSnapshots = entry.TotalSnapshots
			found = true
			break
		}
	}
	if !found {
		index.Channels = append(index.Channels, entry)
	}
	index.TotalChannels = len(index.Channels)
	index.LastUpdated = time.Now().UTC()

	content, err := marshalRecord(index)
	if err != nil {
		return err
	}
	_, err = r.store.UpdateDocument(ctx, doc.ID, content)
	return err
}

// ExistingChannelIDs returns the IDs of every channel the index knows,
// for worklist construction and discovery exclusion.
func (r *Repository) ExistingChannelIDs(ctx context.Context) ([]string, error) {
	index, err := r.GetOrCreateIndex(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(index.Channels))
	for _, ch := range index.Channels {
		ids = append(ids, ch.ChannelID)
	}
	return ids, nil
}

// LoadChannelRecords reads every document in the channels/ container.
// Documents that cannot be read or decoded are skipped; their names are
// returned so callers can report them.
func (r *Repository) LoadChannelRecords(ctx context.Context) ([]*ChannelRecord, []string, error) {
	folderID, err := r.ChannelsFolderID(ctx)
	if err != nil {
		return nil, nil, err
	}
	docs, err := r.store.ListDocuments(ctx, folderID)
	if err != nil {
		return nil, nil, err
	}

	var records []*ChannelRecord
	var skipped []string
	for _, doc := range docs {
		raw, err := r.store.ReadContent(ctx, doc.ID)
		if err != nil {
			skipped = append(skipped, doc.Name)
			continue
		}
		record := &ChannelRecord{}
		if err := json.Unmarshal(raw, record); err != nil {
			skipped = append(skipped, doc.Name)
			continue
		}
		records = append(records, record)
	}
	return records, skipped, nil
}

// SaveManifest writes a run manifest under the collections/ container,
// named by the run's timestamp.
func (r *Repository) SaveManifest(ctx context.Context, manifest *CollectionManifest) error {
	folderID, err := r.collectionsFolderID(ctx)
	if err != nil {
		return err
	}
	name := manifest.CollectionInfo.Timestamp.UTC().Format("2006-01-02T15-04-05") + ".json"
	content, err := marshalRecord(manifest)
	if err != nil {
		return err
	}
	_, err = r.store.CreateDocument(ctx, name, folderID, content)
	return err
}
