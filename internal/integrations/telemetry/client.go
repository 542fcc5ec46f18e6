package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/foodchainx/api/internal/platform/config"
)

// ErrChannelNotConfigured indicates the telemetry channel is missing from configuration.
var ErrChannelNotConfigured = errors.New("telemetry: channel id not configured")

// ErrFeedUnavailable indicates the upstream feed could not be reached or parsed.
var ErrFeedUnavailable = errors.New("telemetry: feed unavailable")

// onlineWindow is how recent the latest feed entry must be for the device to
// count as online.
const onlineWindow = 30 * time.Second

// Reading is the latest sensor sample reported by a storage unit.
type Reading struct {
	ChannelID   string    `json:"channelId"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Online      bool      `json:"online"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// Client fetches device telemetry from a ThingSpeak-compatible feed, caching
// the latest reading for a configurable TTL to keep dashboard polling off the
// upstream service.
type Client struct {
	rest       *resty.Client
	channelID  string
	readAPIKey string
	cacheTTL   time.Duration
	now        func() time.Time

	mu       sync.Mutex
	cached   Reading
	cachedAt time.Time
	hasCache bool
}

// Option customises Client behaviour.
type Option func(*Client)

// WithClock injects a custom clock, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client, primarily for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.rest = resty.NewWithClient(httpClient).SetBaseURL(c.rest.BaseURL)
		}
	}
}

// NewClient constructs a telemetry client from configuration.
func NewClient(cfg config.TelemetryConfig, opts ...Option) *Client {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)

	client := &Client{
		rest:       rest,
		channelID:  strings.TrimSpace(cfg.ChannelID),
		readAPIKey: strings.TrimSpace(cfg.ReadAPIKey),
		cacheTTL:   cfg.CacheTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

type feedEnvelope struct {
	Channel struct {
		ID int64 `json:"id"`
	} `json:"channel"`
	Feeds []feedEntry `json:"feeds"`
}

type feedEntry struct {
	CreatedAt time.Time `json:"created_at"`
	Field1    string    `json:"field1"`
	Field2    string    `json:"field2"`
}

// Latest returns the most recent reading, serving from cache while fresh.
// When the upstream feed fails the last good reading is served stale; with no
// cache at all an explicit offline reading is returned instead of an error, so
// dashboards keep rendering through upstream outages.
func (c *Client) Latest(ctx context.Context) (Reading, error) {
	if c == nil || c.channelID == "" {
		return Reading{}, ErrChannelNotConfigured
	}

	now := c.now()

	c.mu.Lock()
	if c.hasCache && now.Sub(c.cachedAt) < c.cacheTTL {
		cached := c.cached
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	reading, err := c.fetch(ctx, now)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.hasCache {
			return c.cached, nil
		}
		return Reading{ChannelID: c.channelID, Online: false, RecordedAt: now}, nil
	}

	c.mu.Lock()
	c.cached = reading
	c.cachedAt = now
	c.hasCache = true
	c.mu.Unlock()

	return reading, nil
}

func (c *Client) fetch(ctx context.Context, now time.Time) (Reading, error) {
	var envelope feedEnvelope
	req := c.rest.R().
		SetContext(ctx).
		SetQueryParam("results", "1").
		SetResult(&envelope)
	if c.readAPIKey != "" {
		req = req.SetQueryParam("api_key", c.readAPIKey)
	}

	resp, err := req.Get(fmt.Sprintf("/channels/%s/feeds.json", c.channelID))
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Reading{}, fmt.Errorf("%w: upstream status %d", ErrFeedUnavailable, resp.StatusCode())
	}
	if len(envelope.Feeds) == 0 {
		return Reading{}, fmt.Errorf("%w: feed has no entries", ErrFeedUnavailable)
	}

	entry := envelope.Feeds[len(envelope.Feeds)-1]
	reading := Reading{
		ChannelID:  c.channelID,
		Online:     now.Sub(entry.CreatedAt) < onlineWindow,
		RecordedAt: entry.CreatedAt,
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(entry.Field1), 64); err == nil {
		reading.Temperature = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(entry.Field2), 64); err == nil {
		reading.Humidity = v
	}
	return reading, nil
}
