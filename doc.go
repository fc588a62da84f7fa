// Package vidhunt discovers, deduplicates, and periodically re-measures
// public YouTube channels, persisting each channel as a versioned JSON
// document in Google Drive.
//
// Overview
//
// The pipeline is assembled from sub-packages:
//
//   - youtube: channel discovery, profile collection, and upload
//     classification against the Data API v3
//   - metrics: derived metric formulas and their field dependency table
//   - drive: the channel document repository on Drive
//   - collector: the per-channel fetch/classify/derive/persist cycle
//   - scheduler: paced worklist processing with pause/resume/stop
//   - export: flattening stored channels into one ranked dataset
//
// Quick Start
//
// Discover channels and collect them:
//
//	ctx := context.Background()
//	catalog, err := youtube.NewClient(ctx, apiKey)
//	if err != nil {
//		log.Fatal(err)
//	}
//	ids, err := catalog.FindChannels(ctx, youtube.FindRequest{
//		Keyword:        "woodworking",
//		MaxSubscribers: 100000,
//		Count:          10,
//	})
//
// Collect one channel into a repository:
//
//	repo := drive.NewRepository(drive.NewStore(service), rootFolderID, drive.RetentionAppendAll)
//	coll := collector.New(catalog, repo, fields, metricSet, run, logger)
//	err = coll.Process(ctx, "UCxxxxx")
//
// Configuration
//
// Settings load from multiple sources, in ascending priority:
//
//   1. Default values (lowest priority)
//   2. Config file (vidhunt.json or ~/.config/vidhunt/vidhunt.json)
//   3. Environment variables (highest priority)
//
// Environment variables:
//
//   - VIDHUNT_API_KEY: Data API key
//   - VIDHUNT_ACCESS_TOKEN: Drive access token
//   - VIDHUNT_STORAGE_ROOT: Drive folder ID the repository lives under
//   - VIDHUNT_INTERVAL_SECONDS: Pacing between collection cycles
//   - VIDHUNT_REQUEST_RATE: API requests per second
//   - VIDHUNT_RETENTION: Snapshot retention policy
//   - VIDHUNT_MAX_RETRIES: Maximum retry attempts per API request
//
// Error Handling
//
// All operations return errors that implement standard Go error handling:
//
//	if errors.Is(err, vidhunt.ErrChannelNotFound) {
//		fmt.Println("Channel not found")
//	}
//
//	var discErr *vidhunt.DiscoveryError
//	if errors.As(err, &discErr) {
//		fmt.Printf("Discovery %s failed: %v\n", discErr.Op, discErr.Err)
//	}
package vidhunt
