package youtube

import (
	"context"
	"strings"

	"vidhunt/retry"
)

const (
	// maxAnalyzedUploads bounds the classification scan so a channel with
	// tens of thousands of uploads cannot dominate a run's API usage.
	maxAnalyzedUploads = 1000
	// classifyPageSize is the upstream page/batch limit.
	classifyPageSize = 50
	// shortFormMaxSeconds is the duration at or below which an upload
	// counts as short-form.
	shortFormMaxSeconds = 60
)

// Classification partitions a channel's analyzed uploads into short-form
// and long-form items.
//
// Invariant: 0 <= ShortsCount <= TotalAnalyzed <= 1000.
type Classification struct {
	// ShortsCount is the number of analyzed uploads running 60 seconds or
	// less.
	ShortsCount int `json:"shortsCount"`
	// TotalAnalyzed is the number of uploads enumerated, i.e.
	// min(channel video count, 1000).
	TotalAnalyzed int `json:"totalAnalyzed"`
	// ShortsViewTotal is the summed view count of the short-form items.
	ShortsViewTotal int64 `json:"shortsViewTotal"`
}

// ClassifyUploads scans a channel's uploads playlist, newest first, and
// classifies each item by duration. At most 1000 items are analyzed. An
// upload whose duration cannot be parsed counts as long-form.
func (c *Client) ClassifyUploads(ctx context.Context, uploadsPlaylistID string) (*Classification, error) {
	if uploadsPlaylistID == "" {
		return nil, &ClassificationError{PlaylistID: uploadsPlaylistID, Err: ErrMissingUploadsPlaylist}
	}

	videoIDs, err := c.enumerateUploads(ctx, uploadsPlaylistID)
	if err != nil {
		return nil, &ClassificationError{PlaylistID: uploadsPlaylistID, Err: err}
	}

	result := &Classification{TotalAnalyzed: len(videoIDs)}

	for start := 0; start < len(videoIDs); start += classifyPageSize {
		end := start + classifyPageSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		if err := c.classifyBatch(ctx, videoIDs[start:end], result); err != nil {
			return nil, &ClassificationError{PlaylistID: uploadsPlaylistID, Err: err}
		}
	}
	return result, nil
}

// enumerateUploads pages through the playlist and collects video IDs up to
// the analysis cap.
func (c *Client) enumerateUploads(ctx context.Context, playlistID string) ([]string, error) {
	var ids []string

	pageToken := ""
	for len(ids) < maxAnalyzedUploads {
		var pageIDs []string
		var nextToken string

		err := retry.Do(ctx, c.RetryConfig, apiErrorClassifier, func(ctx context.Context) error {
			if err := c.wait(ctx); err != nil {
				return err
			}
			resp, err := c.service.PlaylistItems.List([]string{"contentDetails"}).
				PlaylistId(playlistID).
				MaxResults(classifyPageSize).
				PageToken(pageToken).
				Context(ctx).
				Do()
			c.charge(quotaList)
			if err != nil {
				return classifyAPIError(err)
			}

			pageIDs = pageIDs[:0]
			for _, item := range resp.Items {
				if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
					pageIDs = append(pageIDs, item.ContentDetails.VideoId)
				}
			}
			nextToken = resp.NextPageToken
			return nil
		})
		if err != nil {
			return nil, err
		}

		ids = append(ids, pageIDs...)
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	if len(ids) > maxAnalyzedUploads {
		ids = ids[:maxAnalyzedUploads]
	}
	return ids, nil
}

// classifyBatch fetches duration and view count for one batch of videos and
// folds them into the running result.
func (c *Client) classifyBatch(ctx context.Context, videoIDs []string, result *Classification) error {
	return retry.Do(ctx, c.RetryConfig, apiErrorClassifier, func(ctx context.Context) error {
		if err := c.wait(ctx); err != nil {
			return err
		}
		resp, err := c.service.Videos.List([]string{"contentDetails", "statistics"}).
			Id(strings.Join(videoIDs, ",")).
			MaxResults(int64(len(videoIDs))).
			Context(ctx).
			Do()
		c.charge(quotaList)
		if err != nil {
			return classifyAPIError(err)
		}

		for _, v := range resp.Items {
			if v.ContentDetails == nil {
				continue
			}
			seconds, err := ParseDuration(v.ContentDetails.Duration)
			if err != nil {
				// Unknown duration: conservatively long-form.
				continue
			}
			if seconds <= shortFormMaxSeconds {
				result.ShortsCount++
				if v.Statistics != nil {
					result.ShortsViewTotal += int64(v.Statistics.ViewCount)
				}
			}
		}
		return nil
	})
}
