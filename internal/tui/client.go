package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aoi-dev/vendormail/internal/domain"
	"github.com/aoi-dev/vendormail/internal/store"
)

// Client talks to the read side of the vendormail API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchComparison loads the latest aggregate for the user key. A 404 maps to
// store.ErrNotFound so callers can tell "no data yet" from a real failure.
func (c *Client) FetchComparison(ctx context.Context, userKey string) (*domain.VendorComparison, error) {
	endpoint := c.baseURL + "/api/vendor-comparisons/" + url.PathEscape(userKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reaching vendormail server: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, store.ErrNotFound
	default:
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}

	var agg domain.VendorComparison
	if err := json.NewDecoder(resp.Body).Decode(&agg); err != nil {
		return nil, fmt.Errorf("decoding comparison: %w", err)
	}
	return &agg, nil
}
