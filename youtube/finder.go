package youtube

import (
	"context"
	"strings"

	"vidhunt/retry"
)

// Sort orders the candidates a discovery pass considers. It affects only
// the order of consideration, never which channels survive filtering.
type Sort string

const (
	// SortByViewCount considers the most-viewed candidates first.
	SortByViewCount Sort = "viewCount"
	// SortByVideoCountAsc considers channels with the fewest uploads first.
	SortByVideoCountAsc Sort = "videoCount_asc"
)

// apiOrder maps a Sort onto the search endpoint's order parameter.
func (s Sort) apiOrder() string {
	switch s {
	case SortByVideoCountAsc:
		return "videoCount"
	default:
		return "viewCount"
	}
}

const searchPageSize = 50

// FindRequest describes one discovery pass.
type FindRequest struct {
	// MaxSubscribers is the subscriber-count ceiling; channels above it are
	// filtered out.
	MaxSubscribers int64
	// Sort selects the candidate consideration order.
	Sort Sort
	// Count is the desired number of new channels. The result may be
	// shorter when the filtered universe is smaller; that is not an error.
	Count int
	// CategoryID restricts the search to one video category. Empty means
	// all categories.
	CategoryID string
	// Keyword is the search term.
	Keyword string
	// Exclude holds channel IDs that are already known and must not be
	// returned again.
	Exclude map[string]bool
}

// FindChannels searches the catalog page by page, fetches statistics for
// each page of candidates, and accumulates the IDs that pass the subscriber
// ceiling and the exclusion set, until req.Count survivors are collected or
// the result set is exhausted.
//
// The call is atomic: on any upstream failure the survivors accumulated so
// far are discarded and a *DiscoveryError is returned.
func (c *Client) FindChannels(ctx context.Context, req FindRequest) ([]string, error) {
	if req.Count <= 0 {
		return nil, nil
	}

	seen := make(map[string]bool)
	var survivors []string

	pageToken := ""
	for {
		candidates, nextToken, err := c.searchPage(ctx, req, pageToken)
		if err != nil {
			return nil, &DiscoveryError{Op: "search", Err: err}
		}

		var fresh []string
		for _, id := range candidates {
			if id == "" || seen[id] || req.Exclude[id] {
				continue
			}
			seen[id] = true
			fresh = append(fresh, id)
		}

		if len(fresh) > 0 {
			passed, err := c.filterBySubscribers(ctx, fresh, req.MaxSubscribers)
			if err != nil {
				return nil, &DiscoveryError{Op: "stats", Err: err}
			}
			survivors = append(survivors, passed...)
			if len(survivors) >= req.Count {
				return survivors[:req.Count], nil
			}
		}

		if nextToken == "" {
			return survivors, nil
		}
		pageToken = nextToken
	}
}

// searchPage fetches one page of candidate channel IDs. A category filter
// forces a video search (the search endpoint only honors category filters
// for videos), from which the distinct uploader channels are taken.
func (c *Client) searchPage(ctx context.Context, req FindRequest, pageToken string) ([]string, string, error) {
	var ids []string
	var nextToken string

	err := retry.Do(ctx, c.RetryConfig, apiErrorClassifier, func(ctx context.Context) error {
		if err := c.wait(ctx); err != nil {
			return err
		}

		call := c.service.Search.List([]string{"snippet"}).
			Q(req.Keyword).
			Order(req.Sort.apiOrder()).
			MaxResults(searchPageSize).
			PageToken(pageToken).
			Context(ctx)
		if req.CategoryID != "" {
			call = call.Type("video").VideoCategoryId(req.CategoryID)
		} else {
			call = call.Type("channel")
		}

		resp, err := call.Do()
		c.charge(quotaSearch)
		if err != nil {
			return classifyAPIError(err)
		}

		ids = ids[:0]
		for _, item := range resp.Items {
			switch {
			case item.Id != nil && item.Id.ChannelId != "":
				ids = append(ids, item.Id.ChannelId)
			case item.Snippet != nil && item.Snippet.ChannelId != "":
				ids = append(ids, item.Snippet.ChannelId)
			}
		}
		nextToken = resp.NextPageToken
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return ids, nextToken, nil
}

// filterBySubscribers fetches statistics for the candidate batch and keeps
// the IDs whose subscriber count does not exceed the ceiling. The input
// order is preserved.
func (c *Client) filterBySubscribers(ctx context.Context, ids []string, ceiling int64) ([]string, error) {
	var passed []string

	for start := 0; start < len(ids); start += searchPageSize {
		end := start + searchPageSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		err := retry.Do(ctx, c.RetryConfig, apiErrorClassifier, func(ctx context.Context) error {
			if err := c.wait(ctx); err != nil {
				return err
			}
			resp, err := c.service.Channels.List([]string{"statistics"}).
				Id(strings.Join(batch, ",")).
				MaxResults(int64(len(batch))).
				Context(ctx).
				Do()
			c.charge(quotaList)
			if err != nil {
				return classifyAPIError(err)
			}

			subs := make(map[string]int64, len(resp.Items))
			for _, ch := range resp.Items {
				if ch.Statistics != nil {
					subs[ch.Id] = int64(ch.Statistics.SubscriberCount)
				}
			}
			for _, id := range batch {
				if n, ok := subs[id]; ok && n <= ceiling {
					passed = append(passed, id)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return passed, nil
}
