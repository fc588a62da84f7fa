package youtube

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the catalog surface.
var (
	// ErrChannelNotFound indicates the channel does not exist or is not visible.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrQuotaExceeded indicates the daily API quota has been spent.
	ErrQuotaExceeded = errors.New("api quota exceeded")
	// ErrMissingUploadsPlaylist indicates the channel exposes no uploads playlist.
	ErrMissingUploadsPlaylist = errors.New("uploads playlist unavailable")
)

// DiscoveryError wraps failures from the channel search surface. Discovery
// calls are atomic: survivors accumulated before the failure are discarded.
type DiscoveryError struct {
	Op  string // "search", "stats"
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery %s: %v", e.Op, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// ClassificationError wraps failures while scanning a channel's uploads.
// Callers treat it as "classification absent" rather than aborting the
// channel's whole collection cycle.
type ClassificationError struct {
	PlaylistID string
	Err        error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classify uploads %s: %v", e.PlaylistID, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// ParseError reports a malformed duration string.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid duration %q", e.Input)
}
