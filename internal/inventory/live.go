package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Client is the management-endpoint collaborator. Each operation returns
// (identifier, descriptive name) pairs for one host; this package consumes
// only that shape.
type Client interface {
	ListWorlds(ctx context.Context, host string) ([]Pair, error)
	ListAdapters(ctx context.Context, host string) ([]Pair, error)
	ListLUNs(ctx context.Context, host string) ([]Pair, error)
	ListLUNPaths(ctx context.Context, host string) ([]Pair, error)
	ListDatastoreExtents(ctx context.Context, host string) ([]Pair, error)
}

// HTTPClient talks to a management endpoint exposing the inventory as
// JSON: GET {base}/hosts/{host}/{category} returns an array of
// {"id": ..., "name": ...} objects.
type HTTPClient struct {
	base   string
	client *http.Client
}

// NewHTTPClient creates a client for the endpoint at base. Timeouts are
// the endpoint collaborator's concern; pass an http.Client carrying one,
// or nil for http.DefaultClient.
func NewHTTPClient(base string, client *http.Client) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{base: base, client: client}
}

func (c *HTTPClient) list(ctx context.Context, host, resource string) ([]Pair, error) {
	u := fmt.Sprintf("%s/hosts/%s/%s", c.base, url.PathEscape(host), resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating inventory request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("endpoint returned status %d for %s", resp.StatusCode, resource)
	}

	var pairs []Pair
	if err := json.NewDecoder(resp.Body).Decode(&pairs); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", resource, err)
	}
	return pairs, nil
}

func (c *HTTPClient) ListWorlds(ctx context.Context, host string) ([]Pair, error) {
	return c.list(ctx, host, "worlds")
}

func (c *HTTPClient) ListAdapters(ctx context.Context, host string) ([]Pair, error) {
	return c.list(ctx, host, "adapters")
}

func (c *HTTPClient) ListLUNs(ctx context.Context, host string) ([]Pair, error) {
	return c.list(ctx, host, "luns")
}

func (c *HTTPClient) ListLUNPaths(ctx context.Context, host string) ([]Pair, error) {
	return c.list(ctx, host, "paths")
}

func (c *HTTPClient) ListDatastoreExtents(ctx context.Context, host string) ([]Pair, error) {
	return c.list(ctx, host, "extents")
}
