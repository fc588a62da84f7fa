// Package youtube implements channel discovery, profile collection, and
// upload classification against the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"golang.org/x/time/rate"

	"vidhunt/retry"
)

// Quota units charged per call class, per the Data API pricing table.
const (
	quotaSearch = 100
	quotaList   = 1
)

// dailyQuota is the default per-project daily allowance.
const dailyQuota = 10000

// defaultRPS keeps request bursts comfortably under the per-second limits.
const defaultRPS = 4.0

// Client wraps the Data API service with request pacing, retry, and
// estimated quota accounting.
type Client struct {
	service     *yt.Service
	RetryConfig retry.Config

	limiter *rate.Limiter

	mu             sync.Mutex
	estimatedQuota int
	lastQuotaReset time.Time
}

// NewClient creates a Data API client authenticated by API key. Additional
// options (endpoint overrides and the like) are passed through to the
// underlying service.
func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Client{
		service:        service,
		RetryConfig:    retry.DefaultConfig(),
		limiter:        rate.NewLimiter(rate.Limit(defaultRPS), 1),
		estimatedQuota: dailyQuota,
		lastQuotaReset: time.Now(),
	}, nil
}

// SetRequestRate adjusts the request pacing in requests per second.
func (c *Client) SetRequestRate(rps float64) {
	if rps > 0 {
		c.limiter.SetLimit(rate.Limit(rps))
	}
}

// EstimatedQuota returns the estimated remaining daily quota units.
func (c *Client) EstimatedQuota() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.estimatedQuota
}

// wait blocks until the pacing limiter admits another request.
func (c *Client) wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

// charge deducts units from the estimated quota, resetting once a day.
func (c *Client) charge(units int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.lastQuotaReset) > 24*time.Hour {
		c.estimatedQuota = dailyQuota
		c.lastQuotaReset = time.Now()
		log.Printf("youtube: quota reset (new day)")
	}

	c.estimatedQuota -= units
	if c.estimatedQuota < 0 {
		log.Printf("youtube: estimated quota exhausted (%d units overdrawn)", -c.estimatedQuota)
	}
}

// ResolveHandle translates a channel handle ("@name" or bare) to a channel ID.
func (c *Client) ResolveHandle(ctx context.Context, handle string) (string, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return "", ErrChannelNotFound
	}

	var channelID string
	err := retry.Do(ctx, c.RetryConfig, apiErrorClassifier, func(ctx context.Context) error {
		if err := c.wait(ctx); err != nil {
			return err
		}
		resp, err := c.service.Search.List([]string{"id"}).
			Q(handle).
			Type("channel").
			MaxResults(1).
			Context(ctx).
			Do()
		c.charge(quotaSearch)
		if err != nil {
			return classifyAPIError(err)
		}
		if len(resp.Items) == 0 || resp.Items[0].Id == nil {
			return ErrChannelNotFound
		}
		channelID = resp.Items[0].Id.ChannelId
		return nil
	})
	if err != nil {
		return "", err
	}
	return channelID, nil
}

// classifyAPIError maps upstream error text onto package sentinels where a
// sentinel applies, and returns the error untouched otherwise.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "quotaExceeded") || strings.Contains(msg, "dailyLimitExceeded") {
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, msg)
	}
	return err
}

// apiErrorClassifier decides whether a Data API error is worth retrying.
// Quota and auth failures are permanent: the daily allowance will not
// recover within a retry window, and re-sending a bad key never helps.
func apiErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrChannelNotFound) || errors.Is(err, ErrQuotaExceeded) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "keyInvalid") || strings.Contains(msg, "forbidden") {
		return false
	}
	if strings.Contains(msg, "rateLimitExceeded") {
		return true
	}
	return true
}
