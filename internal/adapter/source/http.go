// Package source provides the sighting sources a session can be loaded from.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/couchcryptid/sightings-map-service/internal/domain"
)

// maxBodyBytes caps how much of a remote response is read.
const maxBodyBytes = 16 << 20

// HTTP fetches the sightings collection from a remote /api endpoint.
type HTTP struct {
	url    string
	client *retryablehttp.Client
}

// NewHTTP creates an HTTP source for url. Transient failures (connection
// errors and 5xx responses) are retried up to retries times.
func NewHTTP(url string, timeout time.Duration, retries int, logger *slog.Logger) *HTTP {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = logger
	return &HTTP{url: url, client: client}
}

// FetchAll issues a GET and decodes the JSON array body.
func (h *HTTP) FetchAll(ctx context.Context) ([]domain.Sighting, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sightings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch sightings: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read sightings body: %w", err)
	}
	return domain.DecodeSightings(body)
}
