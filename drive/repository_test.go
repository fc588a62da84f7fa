package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"vidhunt/youtube"
)

// memStore is an in-memory ObjectStore for repository tests.
type memStore struct {
	nextID  int
	objects map[string]*memObject // by ID

	failFind   bool
	failUpdate bool
}

type memObject struct {
	doc     Document
	parent  string
	folder  bool
	content []byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string]*memObject)}
}

func (m *memStore) newID() string {
	m.nextID++
	return fmt.Sprintf("id-%d", m.nextID)
}

func (m *memStore) FindDocument(ctx context.Context, name, containerID string) (*Document, error) {
	if m.failFind {
		return nil, &StorageError{Op: "find", Name: name, Err: errors.New("unavailable")}
	}
	for _, obj := range m.objects {
		if obj.doc.Name == name && obj.parent == containerID {
			doc := obj.doc
			return &doc, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateDocument(ctx context.Context, name, containerID string, content []byte) (*Document, error) {
	id := m.newID()
	obj := &memObject{
		doc:     Document{ID: id, Name: name, MimeType: "application/json"},
		parent:  containerID,
		content: append([]byte(nil), content...),
	}
	m.objects[id] = obj
	doc := obj.doc
	return &doc, nil
}

func (m *memStore) UpdateDocument(ctx context.Context, id string, content []byte) (*Document, error) {
	if m.failUpdate {
		return nil, &StorageError{Op: "update", Name: id, Err: errors.New("unavailable")}
	}
	obj, ok := m.objects[id]
	if !ok {
		return nil, &StorageError{Op: "update", Name: id, Err: ErrNotFound}
	}
	obj.content = append([]byte(nil), content...)
	doc := obj.doc
	return &doc, nil
}

func (m *memStore) ReadContent(ctx context.Context, id string) ([]byte, error) {
	obj, ok := m.objects[id]
	if !ok {
		return nil, &StorageError{Op: "read", Name: id, Err: ErrNotFound}
	}
	return append([]byte(nil), obj.content...), nil
}

func (m *memStore) ListContainers(ctx context.Context) ([]Container, error) {
	var out []Container
	for _, obj := range m.objects {
		if obj.folder {
			out = append(out, Container{ID: obj.doc.ID, Name: obj.doc.Name})
		}
	}
	return out, nil
}

func (m *memStore) CreateContainer(ctx context.Context, name, parentID string) (*Container, error) {
	id := m.newID()
	m.objects[id] = &memObject{
		doc:    Document{ID: id, Name: name, MimeType: folderMimeType},
		parent: parentID,
		folder: true,
	}
	return &Container{ID: id, Name: name}, nil
}

func (m *memStore) ListDocuments(ctx context.Context, containerID string) ([]Document, error) {
	var out []Document
	for _, obj := range m.objects {
		if obj.parent == containerID && !obj.folder {
			out = append(out, obj.doc)
		}
	}
	return out, nil
}

func testSnapshot(ts time.Time, subs int64) Snapshot {
	return Snapshot{
		Timestamp:       ts,
		SubscriberCount: &subs,
	}
}

var testProfile = youtube.StaticProfile{Title: "Workshop Channel"}

func TestUpsertChannel_CreatesDocument(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, "root", RetentionAppendAll)
	ctx := context.Background()

	ts := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	record, created, err := repo.UpsertChannel(ctx, "UC123", testProfile, testSnapshot(ts, 5000))
	if err != nil {
		t.Fatalf("UpsertChannel() error = %v", err)
	}
	if !created {
		t.Error("UpsertChannel() created = false, want true")
	}
	if record.Metadata.TotalCollections != 1 {
		t.Errorf("TotalCollections = %d, want 1", record.Metadata.TotalCollections)
	}
	if !record.Metadata.FirstCollected.Equal(ts) || !record.Metadata.LastUpdated.Equal(ts) {
		t.Errorf("metadata times = %v/%v, want %v", record.Metadata.FirstCollected, record.Metadata.LastUpdated, ts)
	}

	// The document lands inside the channels/ container.
	folderID, err := repo.ChannelsFolderID(ctx)
	if err != nil {
		t.Fatalf("ChannelsFolderID() error = %v", err)
	}
	doc, err := store.FindDocument(ctx, "UC123.json", folderID)
	if err != nil || doc == nil {
		t.Fatalf("channel document not found: doc=%v err=%v", doc, err)
	}
}

func TestUpsertChannel_AppendsSnapshots(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, "root", RetentionAppendAll)
	ctx := context.Background()

	first := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	if _, _, err := repo.UpsertChannel(ctx, "UC123", testProfile, testSnapshot(first, 5000)); err != nil {
		t.Fatalf("first UpsertChannel() error = %v", err)
	}

	updated := testProfile
	updated.Title = "Workshop Channel Renamed"
	record, created, err := repo.UpsertChannel(ctx, "UC123", updated, testSnapshot(second, 5100))
	if err != nil {
		t.Fatalf("second UpsertChannel() error = %v", err)
	}
	if created {
		t.Error("second UpsertChannel() created = true, want false")
	}
	if len(record.Snapshots) != 2 {
		t.Fatalf("len(Snapshots) = %d, want 2", len(record.Snapshots))
	}
	if *record.Snapshots[0].SubscriberCount != 5000 || *record.Snapshots[1].SubscriberCount != 5100 {
		t.Error("snapshots not appended in order")
	}
	if record.StaticData.Title != "Workshop Channel Renamed" {
		t.Errorf("StaticData.Title = %q, want overwritten title", record.StaticData.Title)
	}
	if !record.Metadata.FirstCollected.Equal(first) {
		t.Errorf("FirstCollected = %v, want preserved %v", record.Metadata.FirstCollected, first)
	}
	if record.Metadata.TotalCollections != 2 {
		t.Errorf("TotalCollections = %d, want 2", record.Metadata.TotalCollections)
	}
}

func TestUpsertChannel_LatestOnlyRetention(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, "root", RetentionLatestOnly)
	ctx := context.Background()

	jan := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	if _, _, err := repo.UpsertChannel(ctx, "UC123", testProfile, testSnapshot(jan, 5000)); err != nil {
		t.Fatalf("first UpsertChannel() error = %v", err)
	}
	record, _, err := repo.UpsertChannel(ctx, "UC123", testProfile, testSnapshot(feb, 6000))
	if err != nil {
		t.Fatalf("second UpsertChannel() error = %v", err)
	}

	if len(record.Snapshots) != 1 {
		t.Fatalf("len(Snapshots) = %d, want 1", len(record.Snapshots))
	}
	if *record.Snapshots[0].SubscriberCount != 6000 {
		t.Errorf("kept snapshot subscriberCount = %d, want latest 6000", *record.Snapshots[0].SubscriberCount)
	}
	want := map[string]int64{"2026-01": 5000, "2026-02": 6000}
	if len(record.SubscriberHistory) != len(want) {
		t.Fatalf("SubscriberHistory = %v, want %v", record.SubscriberHistory, want)
	}
	for k, v := range want {
		if record.SubscriberHistory[k] != v {
			t.Errorf("SubscriberHistory[%q] = %d, want %d", k, record.SubscriberHistory[k], v)
		}
	}
	if record.Metadata.TotalCollections != 2 {
		t.Errorf("TotalCollections = %d, want 2", record.Metadata.TotalCollections)
	}
}

func TestUpsertChannel_CorruptDocument(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, "root", RetentionAppendAll)
	ctx := context.Background()

	folderID, err := repo.ChannelsFolderID(ctx)
	if err != nil {
		t.Fatalf("ChannelsFolderID() error = %v", err)
	}
	if _, err := store.CreateDocument(ctx, "UC123.json", folderID, []byte("{not json")); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	ts := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	_, _, err = repo.UpsertChannel(ctx, "UC123", testProfile, testSnapshot(ts, 5000))
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("UpsertChannel() error = %v, want ErrCorrupt", err)
	}
}

func TestUpdateIndex_MergesEntries(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, "root", RetentionAppendAll)
	ctx := context.Background()

	ts := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	if err := repo.UpdateIndex(ctx, IndexEntry{ChannelID: "UC1", Title: "One", LastUpdated: ts, TotalSnapshots: 1}); err != nil {
		t.Fatalf("UpdateIndex() error = %v", err)
	}
	if err := repo.UpdateIndex(ctx, IndexEntry{ChannelID: "UC2", Title: "Two", LastUpdated: ts, TotalSnapshots: 1}); err != nil {
		t.Fatalf("UpdateIndex() error = %v", err)
	}
	// Re-collecting an existing channel updates its entry in place.
	if err := repo.UpdateIndex(ctx, IndexEntry{ChannelID: "UC1", Title: "One Renamed", LastUpdated: ts.Add(time.Hour), TotalSnapshots: 2}); err != nil {
		t.Fatalf("UpdateIndex() error = %v", err)
	}

	index, err := repo.GetOrCreateIndex(ctx)
	if err != nil {
		t.Fatalf("GetOrCreateIndex() error = %v", err)
	}
	if index.TotalChannels != 2 || len(index.Channels) != 2 {
		t.Fatalf("TotalChannels = %d, len = %d, want 2/2", index.TotalChannels, len(index.Channels))
	}
	if index.Channels[0].ChannelID != "UC1" || index.Channels[0].Title != "One Renamed" {
		t.Errorf("Channels[0] = %+v, want updated UC1", index.Channels[0])
	}
	if index.Channels[0].TotalSnapshots != 2 {
		t.Errorf("Channels[0].TotalSnapshots = %d, want 2", index.Channels[0].TotalSnapshots)
	}
}

func TestExistingChannelIDs(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, "root", RetentionAppendAll)
	ctx := context.Background()

	ids, err := repo.ExistingChannelIDs(ctx)
	if err != nil {
		t.Fatalf("ExistingChannelIDs() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ExistingChannelIDs() = %v, want empty", ids)
	}

	ts := time.Now().UTC()
	for _, id := range []string{"UC1", "UC2", "UC3"} {
		if err := repo.UpdateIndex(ctx, IndexEntry{ChannelID: id, LastUpdated: ts}); err != nil {
			t.Fatalf("UpdateIndex(%s) error = %v", id, err)
		}
	}

	ids, err = repo.ExistingChannelIDs(ctx)
	if err != nil {
		t.Fatalf("ExistingChannelIDs() error = %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("len(ids) = %d, want 3", len(ids))
	}
}

func TestSaveManifest(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, "root", RetentionAppendAll)
	ctx := context.Background()

	ts := time.Date(2026, 1, 10, 12, 30, 45, 0, time.UTC)
	manifest := &CollectionManifest{
		CollectionInfo: ManifestInfo{ExportID: "run-1", Timestamp: ts, TotalChannels: 1, UpdateMode: "discover"},
		Channels:       []ManifestEntry{{ChannelID: "UC1", Title: "One", Processed: true}},
	}
	if err := repo.SaveManifest(ctx, manifest); err != nil {
		t.Fatalf("SaveManifest() error = %v", err)
	}

	folderID, err := repo.collectionsFolderID(ctx)
	if err != nil {
		t.Fatalf("collectionsFolderID() error = %v", err)
	}
	doc, err := store.FindDocument(ctx, "2026-01-10T12-30-45.json", folderID)
	if err != nil || doc == nil {
		t.Fatalf("manifest document not found: doc=%v err=%v", doc, err)
	}

	raw, err := store.ReadContent(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ReadContent() error = %v", err)
	}
	var got CollectionManifest
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("manifest not valid JSON: %v", err)
	}
	if got.CollectionInfo.ExportID != "run-1" || len(got.Channels) != 1 {
		t.Errorf("round-tripped manifest = %+v", got)
	}
}

func TestLoadChannelRecords_SkipsUnreadable(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, "root", RetentionAppendAll)
	ctx := context.Background()

	ts := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	if _, _, err := repo.UpsertChannel(ctx, "UC1", testProfile, testSnapshot(ts, 5000)); err != nil {
		t.Fatalf("UpsertChannel() error = %v", err)
	}

	folderID, err := repo.ChannelsFolderID(ctx)
	if err != nil {
		t.Fatalf("ChannelsFolderID() error = %v", err)
	}
	if _, err := store.CreateDocument(ctx, "UC2.json", folderID, []byte("{broken")); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	records, skipped, err := repo.LoadChannelRecords(ctx)
	if err != nil {
		t.Fatalf("LoadChannelRecords() error = %v", err)
	}
	if len(records) != 1 || records[0].ChannelID != "UC1" {
		t.Errorf("records = %+v, want only UC1", records)
	}
	if len(skipped) != 1 || skipped[0] != "UC2.json" {
		t.Errorf("skipped = %v, want [UC2.json]", skipped)
	}
}

func TestUpsertChannel_StoreFailures(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	store := newMemStore()
	repo := NewRepository(store, "root", RetentionAppendAll)
	store.failFind = true
	if _, _, err := repo.UpsertChannel(ctx, "UC1", testProfile, testSnapshot(ts, 5000)); err == nil {
		t.Error("UpsertChannel() with failing lookups returned nil error")
	}

	store = newMemStore()
	repo = NewRepository(store, "root", RetentionAppendAll)
	if _, _, err := repo.UpsertChannel(ctx, "UC1", testProfile, testSnapshot(ts, 5000)); err != nil {
		t.Fatalf("UpsertChannel() error = %v", err)
	}
	store.failUpdate = true
	if _, _, err := repo.UpsertChannel(ctx, "UC1", testProfile, testSnapshot(ts.Add(time.Hour), 5100)); err == nil {
		t.Error("UpsertChannel() with failing writes returned nil error")
	}
}

func TestNewRepository_InvalidPolicyFallsBack(t *testing.T) {
	repo := NewRepository(newMemStore(), "root", RetentionPolicy("bogus"))
	if repo.policy != RetentionAppendAll {
		t.Errorf("policy = %q, want %q", repo.policy, RetentionAppendAll)
	}
}
