package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dirsync/core/models"
	"dirsync/core/retry"

	"go.uber.org/zap"
)

var (
	// ErrTransport is returned for any failed exchange with the server.
	ErrTransport = errors.New("transport error")
	// ErrParse is returned when a response body cannot be decoded.
	ErrParse = fmt.Errorf("%w: malformed response", ErrTransport)
)

// APIKeyHeader carries the server API key.
const APIKeyHeader = "X-API-Key"

// Client talks to a catalog server.
type Client struct {
	base   *url.URL
	apiKey string
	policy retry.Policy
	// api is used for listing calls, stream for transfers which have no
	// overall timeout.
	api    *http.Client
	stream *http.Client
	logger *zap.Logger
}

// New creates a client for the server at cfg.URL.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server url scheme %q", base.Scheme)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := cfg.Retry
	if policy.Attempts == 0 {
		policy = retry.DefaultPolicy()
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		base:   base,
		apiKey: cfg.ApiKey,
		policy: policy,
		api:    &http.Client{Timeout: cfg.Timeout, Transport: transport},
		stream: &http.Client{Transport: transport},
		logger: logger,
	}, nil
}

// GetDir fetches the directory summary of the server root.
func (c *Client) GetDir(ctx context.Context) (*models.DirectoryNode, error) {
	var resp models.DirResponse
	if err := c.getJSON(ctx, c.base.JoinPath("dir"), &resp); err != nil {
		return nil, err
	}
	if resp.Dir == nil {
		return nil, fmt.Errorf("%w: missing Dir", ErrParse)
	}
	return resp.Dir, nil
}

// ListFiles fetches the records under prefix. With update the server
// re-checks every matched file before answering.
func (c *Client) ListFiles(ctx context.Context, prefix string, update bool) ([]models.FileRecord, error) {
	u := c.base.JoinPath("list")
	q := url.Values{}
	q.Set("prefix", prefix)
	if update {
		q.Set("update", "true")
	}
	u.RawQuery = q.Encode()

	var resp models.ListResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	records := make([]models.FileRecord, 0, len(resp.Files))
	for _, f := range resp.Files {
		records = append(records, f.Record())
	}
	return records, nil
}

func (c *Client) getJSON(ctx context.Context, u *url.URL, out any) error {
	_, err := retry.Do(ctx, c.policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.getOnce(ctx, u, out)
	})
	return err
}

func (c *Client) getOnce(ctx context.Context, u *url.URL, out any) error {
	req, err := c.newRequest(ctx, u)
	if err != nil {
		return err
	}

	resp, err := c.api.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrTransport, err)
		}
		c.logger.Debug("Request failed", zap.String("url", u.Redacted()), zap.Error(err))
		return retry.Temporary(fmt.Errorf("%w: %w", ErrTransport, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("%w: %s returned %d", ErrTransport, u.Path, resp.StatusCode)
		if resp.StatusCode >= 500 {
			c.logger.Debug("Server error", zap.String("url", u.Redacted()), zap.Int("status", resp.StatusCode))
			return retry.Temporary(err)
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, u *url.URL) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}
	return req, nil
}
