package vidhunt

import (
	"vidhunt/drive"
	"vidhunt/retry"
	"vidhunt/youtube"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, youtube.ErrChannelNotFound) {
//		fmt.Println("Channel not found")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var discErr *youtube.DiscoveryError
//	if errors.As(err, &discErr) {
//		fmt.Printf("Discovery %s failed: %v\n", discErr.Op, discErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// DiscoveryError wraps errors during channel search.
	DiscoveryError = youtube.DiscoveryError
	// ClassificationError wraps errors during upload classification.
	ClassificationError = youtube.ClassificationError
	// ParseError reports a malformed duration string.
	ParseError = youtube.ParseError
	// RetryableError wraps errors that occurred after retries were exhausted.
	RetryableError = retry.RetryableError
	// StorageError wraps errors during storage operations.
	StorageError = drive.StorageError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrChannelNotFound indicates the channel does not exist or is not visible.
	ErrChannelNotFound = youtube.ErrChannelNotFound
	// ErrQuotaExceeded indicates the daily API quota has been spent.
	ErrQuotaExceeded = youtube.ErrQuotaExceeded
	// ErrMissingUploadsPlaylist indicates the channel exposes no uploads playlist.
	ErrMissingUploadsPlaylist = youtube.ErrMissingUploadsPlaylist

	// Storage errors
	// ErrNotFound indicates a document or container was not found in storage.
	ErrNotFound = drive.ErrNotFound
	// ErrCorrupt indicates a persisted document could not be decoded.
	ErrCorrupt = drive.ErrCorrupt
)

// IsRetryable determines if an error should be retried.
// It returns false for permanent errors like context cancellation.
func IsRetryable(err error) bool {
	return retry.IsRetryable(err)
}
