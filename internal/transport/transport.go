// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

// Package transport executes JSON requests against the Insights API and
// classifies every failure. Callers always receive either a response body
// or an error from the pkg/errors taxonomy: network failures and timeouts
// for requests that never produced a response, API failures for non-2xx
// statuses.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. "https://insights.braiins.com/api".
	BaseURL string
	// Timeout bounds a whole request, connection setup and body read included.
	Timeout time.Duration
	// UserAgent is sent with every request. Empty means Go's default.
	UserAgent string
	// APIKey, when set, is sent as a bearer token.
	APIKey string
}

// Client is a thin HTTP layer over one upstream API.
type Client struct {
	baseURL   string
	userAgent string
	apiKey    string
	http      *http.Client
}

// New creates a Client. Returns an error if the base URL does not parse
// or the timeout is not positive.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"transport base URL must be absolute, got %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		return nil, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"transport timeout must be positive, got %s", cfg.Timeout)
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		apiKey:    cfg.APIKey,
		http:      &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Get performs a GET request against path with the given query parameters
// and returns the raw response body.
func (c *Client) Get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(path, params), nil)
	if err != nil {
		return nil, inserr.Network(err, "building request", inserr.FieldPath(path))
	}
	return c.do(req, path)
}

// Post performs a POST request with a JSON-encoded body against path and
// returns the raw response body.
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, inserr.Network(err, "encoding request body", inserr.FieldPath(path))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(path, nil), bytes.NewReader(payload))
	if err != nil {
		return nil, inserr.Network(err, "building request", inserr.FieldPath(path))
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path)
}

func (c *Client) requestURL(path string, params map[string]string) string {
	u := c.baseURL + path
	if len(params) == 0 {
		return u
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return u + "?" + q.Encode()
}

func (c *Client) do(req *http.Request, path string) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(err, path)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, inserr.API(resp.StatusCode, path)
	}

	return body, nil
}

// classify maps a transport-level failure to the error taxonomy. Deadline
// and timeout failures are kept distinguishable from other network errors.
func classify(err error, path string) error {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return inserr.NetworkTimeout(err, path)
	}
	return inserr.Network(err, "requesting "+path, inserr.FieldPath(path))
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
