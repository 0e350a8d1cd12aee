package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/yegors/rwy-watch/pkg/logger"
)

// FeedEntry is one broadcast in the upstream feed. Split airports
// publish two entries per poll, one per operation.
type FeedEntry struct {
	Airport string `json:"airport"`
	Type    string `json:"type"`
	DATIS   string `json:"datis"`
}

// Feed fetches the current set of broadcasts.
type Feed interface {
	FetchAll(ctx context.Context) ([]FeedEntry, error)
}

// Client fetches broadcasts from the public feed endpoint.
type Client struct {
	feedURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new feed client
func NewClient(feedURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		feedURL: feedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.Named("feed-client"),
	}
}

// FetchAll retrieves every current broadcast from the feed.
func (c *Client) FetchAll(ctx context.Context) ([]FeedEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch broadcast feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var entries []FeedEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}

	c.logger.Debug("fetched broadcast feed", logger.Int("entries", len(entries)))
	return entries, nil
}
