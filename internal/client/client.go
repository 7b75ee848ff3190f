// Package client is the Go SDK for the planner-sync server: a thin resty
// wrapper around the pull and push endpoints plus a background sync job that
// keeps a local clientstore replica converged with the server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/plannerhub/planner-sync/models"
)

// Config holds the connection settings for the sync client.
type Config struct {
	// BaseURL is the server root, e.g. "https://sync.example.com".
	BaseURL string

	// Token is the initial JWT bearer token. May be rotated via SetToken.
	Token string

	// Timeout bounds every HTTP call. Defaults to 15 seconds.
	Timeout time.Duration
}

// Client talks to the replication endpoints of one planner-sync server.
// Safe for concurrent use.
type Client struct {
	http *resty.Client

	mu    sync.RWMutex
	token string
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &Client{http: cli, token: strings.TrimSpace(cfg.Token)}
}

// SetToken replaces the bearer token used on subsequent calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Pull fetches the next batch of changed documents for the collection.
// checkpointKey and checkpointTimestamp are the values returned by the
// previous pull; both empty requests a full resync. batchSize <= 0 leaves
// the choice to the server.
func (c *Client) Pull(ctx context.Context, collection, keyField, checkpointKey, checkpointTimestamp string, batchSize int) (models.PullResponse, error) {
	req := c.authedRequest(ctx).
		SetQueryParam(keyField, checkpointKey).
		SetQueryParam("serverTimestamp", checkpointTimestamp)
	if batchSize > 0 {
		req.SetQueryParam("batchSize", strconv.Itoa(batchSize))
	}

	resp, err := req.Get(fmt.Sprintf("/api/%s/pull", collection))
	if err != nil {
		return models.PullResponse{}, fmt.Errorf("pull request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PullResponse{}, err
	}

	var pr models.PullResponse
	if err = json.Unmarshal(resp.Body(), &pr); err != nil {
		return models.PullResponse{}, fmt.Errorf("decode pull response: %w", err)
	}

	return pr, nil
}

// Push sends a batch of rows for atomic application. The returned slice
// holds the server's stored state of every conflicting key; an empty slice
// means the whole batch was committed.
func (c *Client) Push(ctx context.Context, collection string, rows []models.PushRow) ([]models.WireDocument, error) {
	resp, err := c.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(rows).
		Post(fmt.Sprintf("/api/%s/push", collection))
	if err != nil {
		return nil, fmt.Errorf("push request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var conflicts []models.WireDocument
	if err = json.Unmarshal(resp.Body(), &conflicts); err != nil {
		return nil, fmt.Errorf("decode push response: %w", err)
	}

	return conflicts, nil
}

// Version fetches the server build information.
func (c *Client) Version(ctx context.Context) (models.AppBuildInfo, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/api/version/")
	if err != nil {
		return models.AppBuildInfo{}, fmt.Errorf("version request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AppBuildInfo{}, err
	}

	var info models.AppBuildInfo
	if err = json.Unmarshal(resp.Body(), &info); err != nil {
		return models.AppBuildInfo{}, fmt.Errorf("decode version response: %w", err)
	}

	return info, nil
}

func (c *Client) authedRequest(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token := c.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	switch code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrUnknownCollection, body)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, body)
	}

	return fmt.Errorf("%w: status %d: %s", ErrServer, code, body)
}
