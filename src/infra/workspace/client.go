package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"waxwing/src/catalog"
	"waxwing/src/features/config"
	"waxwing/src/features/metrics"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.notion.com/v1"

// Client talks to the hosted workspace API that owns the album catalog.
// It implements catalog.Workspace. All calls go through a client-side
// rate limiter so bulk operations stay under the service's request cap.
type Client struct {
	httpClient *http.Client
	baseURL    string
	config     *config.Manager
	limiter    *rate.Limiter
}

// NewClient creates a workspace client from the current configuration.
func NewClient(cfg *config.Manager) *Client {
	rps := cfg.Get().Workspace.RequestsPerSecond
	if rps <= 0 {
		rps = 3
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		config:     cfg,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake server.
func NewClientWithBaseURL(cfg *config.Manager, baseURL string) *Client {
	c := NewClient(cfg)
	c.baseURL = baseURL
	return c
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do sends one API request with auth headers and maps failures onto the
// catalog error taxonomy.
func (c *Client) do(ctx context.Context, operation, method, path string, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	cfg := c.config.Get().Workspace
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Token)
	req.Header.Set("Notion-Version", cfg.APIVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.WorkspaceRequests.WithLabelValues(operation, "transport_error").Inc()
		return nil, fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.WorkspaceRequests.WithLabelValues(operation, "transport_error").Inc()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		metrics.WorkspaceRequests.WithLabelValues(operation, "ok").Inc()
		return data, nil
	}

	metrics.WorkspaceRequests.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()
	var apiErr errorResponse
	_ = json.Unmarshal(data, &apiErr)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", catalog.ErrUnauthorized, apiErr.Message)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, apiErr.Message)
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		return nil, fmt.Errorf("%w: retry after %ss", catalog.ErrRateLimited, retryAfter)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", catalog.ErrUnavailable, resp.StatusCode)
	default:
		return nil, fmt.Errorf("workspace API request failed with status %d: %s", resp.StatusCode, apiErr.Message)
	}
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

type queryResponse struct {
	Results    []page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// ListAlbums reads every album entry, following pagination cursors.
func (c *Client) ListAlbums(ctx context.Context) ([]*catalog.Album, error) {
	cfg := c.config.Get().Workspace
	path := "/databases/" + cfg.DatabaseID + "/query"

	var albums []*catalog.Album
	cursor := ""
	for {
		data, err := c.do(ctx, "query", http.MethodPost, path, queryRequest{
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, err
		}

		var resp queryResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode query response: %w", err)
		}

		for i := range resp.Results {
			album := mapPage(&resp.Results[i], &cfg)
			if err := album.Validate(); err != nil {
				// Entries without a title are drafts created in the
				// workspace UI; skip them rather than failing the run.
				continue
			}
			albums = append(albums, album)
		}

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}
	return albums, nil
}

// UpdatePosition writes the position select value of one page.
func (c *Client) UpdatePosition(ctx context.Context, pageID, position string) error {
	cfg := c.config.Get().Workspace
	body := map[string]any{
		"properties": map[string]any{
			cfg.PositionProperty: map[string]any{
				"select": map[string]any{"name": position},
			},
		},
	}
	_, err := c.do(ctx, "update_position", http.MethodPatch, "/pages/"+pageID, body)
	return err
}

// UpdateArtwork patches the page cover and/or icon with external image URLs.
func (c *Client) UpdateArtwork(ctx context.Context, pageID, coverURL, iconURL string) error {
	body := map[string]any{}
	if coverURL != "" {
		body["cover"] = map[string]any{
			"type":     "external",
			"external": map[string]any{"url": coverURL},
		}
	}
	if iconURL != "" {
		body["icon"] = map[string]any{
			"type":     "external",
			"external": map[string]any{"url": iconURL},
		}
	}
	if len(body) == 0 {
		return nil
	}
	_, err := c.do(ctx, "update_artwork", http.MethodPatch, "/pages/"+pageID, body)
	return err
}

type databaseResponse struct {
	Properties map[string]struct {
		Select *struct {
			Options []selectOption `json:"options"`
		} `json:"select"`
	} `json:"properties"`
}

// ListPositionOptions returns every option defined on the position select.
func (c *Client) ListPositionOptions(ctx context.Context) ([]string, error) {
	cfg := c.config.Get().Workspace
	data, err := c.do(ctx, "get_database", http.MethodGet, "/databases/"+cfg.DatabaseID, nil)
	if err != nil {
		return nil, err
	}

	var resp databaseResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode database response: %w", err)
	}

	prop, ok := resp.Properties[cfg.PositionProperty]
	if !ok || prop.Select == nil {
		return nil, fmt.Errorf("position property %q is not a select", cfg.PositionProperty)
	}

	options := make([]string, 0, len(prop.Select.Options))
	for _, o := range prop.Select.Options {
		options = append(options, o.Name)
	}
	return options, nil
}

// ReplacePositionOptions rewrites the position select options.
func (c *Client) ReplacePositionOptions(ctx context.Context, options []string) error {
	cfg := c.config.Get().Workspace
	opts := make([]map[string]string, 0, len(options))
	for _, name := range options {
		opts = append(opts, map[string]string{"name": name})
	}
	body := map[string]any{
		"properties": map[string]any{
			cfg.PositionProperty: map[string]any{
				"select": map[string]any{"options": opts},
			},
		},
	}
	_, err := c.do(ctx, "update_database", http.MethodPatch, "/databases/"+cfg.DatabaseID, body)
	return err
}
