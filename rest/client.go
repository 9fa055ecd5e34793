// Package rest implements the state-read and batch-submit
// collaborators against a validator's REST API.
//
// Failures are wrapped as ExternalServiceError and surfaced
// verbatim; this client carries no retry policy beyond what the
// underlying HTTP transport already guarantees.
package rest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hashblock/hbledger"
)

// Compile-time interface checks.
var (
	_ hbledger.StateReader    = (*Client)(nil)
	_ hbledger.StateLister    = (*Client)(nil)
	_ hbledger.BatchSubmitter = (*Client)(nil)
)

// DefaultURL is the conventional validator REST endpoint.
const DefaultURL = "http://rest-api:8008"

const defaultTimeout = 30 * time.Second

// Client talks to one validator REST endpoint.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, hbledger.NewInvalidArgument("validator REST URL is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, hbledger.NewInvalidArgument("validator REST URL %q: %v", baseURL, err)
	}
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: defaultTimeout},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// leafEnvelope is the REST body of a single-leaf read.
type leafEnvelope struct {
	Data string `json:"data"`
}

// listEnvelope is the REST body of a prefix listing.
type listEnvelope struct {
	Data []struct {
		Address string `json:"address"`
		Data    string `json:"data"`
	} `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// errorEnvelope is the REST body of a failed request.
type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetLeaf fetches the raw bytes stored at a leaf address. A missing
// leaf is not an error.
func (c *Client) GetLeaf(ctx context.Context, address string) ([]byte, bool, error) {
	target := c.base + "/state/" + address
	c.log.Debug("state read", zap.String("address", address))

	body, status, err := c.get(ctx, target)
	if err != nil {
		return nil, false, hbledger.NewExternalServiceError("rest: get leaf", err)
	}
	if status == http.StatusNotFound {
		return nil, false, nil
	}
	if status != http.StatusOK {
		return nil, false, hbledger.NewExternalServiceError("rest: get leaf", restError(status, body))
	}

	var envelope leafEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false, hbledger.NewExternalServiceError("rest: get leaf", err)
	}
	data, err := base64.StdEncoding.DecodeString(envelope.Data)
	if err != nil {
		return nil, false, hbledger.NewExternalServiceError("rest: get leaf", err)
	}
	return data, true, nil
}

// ListState enumerates every leaf under an address prefix, following
// pagination links.
func (c *Client) ListState(ctx context.Context, prefix string) ([]hbledger.StateEntry, error) {
	target := c.base + "/state?address=" + url.QueryEscape(prefix)
	c.log.Debug("state list", zap.String("prefix", prefix))

	var entries []hbledger.StateEntry
	for target != "" {
		body, status, err := c.get(ctx, target)
		if err != nil {
			return nil, hbledger.NewExternalServiceError("rest: list state", err)
		}
		if status != http.StatusOK {
			return nil, hbledger.NewExternalServiceError("rest: list state", restError(status, body))
		}

		var envelope listEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, hbledger.NewExternalServiceError("rest: list state", err)
		}
		for _, item := range envelope.Data {
			data, err := base64.StdEncoding.DecodeString(item.Data)
			if err != nil {
				return nil, hbledger.NewExternalServiceError("rest: list state", err)
			}
			entries = append(entries, hbledger.StateEntry{Address: item.Address, Data: data})
		}
		target = envelope.Paging.Next
	}
	return entries, nil
}

// SendBatches submits a serialized batch list to the validator.
func (c *Client) SendBatches(ctx context.Context, batchList []byte) error {
	target := c.base + "/batches"
	c.log.Debug("submit batches", zap.Int("bytes", len(batchList)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(batchList))
	if err != nil {
		return hbledger.NewExternalServiceError("rest: send batches", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return hbledger.NewExternalServiceError("rest: send batches", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return hbledger.NewExternalServiceError("rest: send batches", restError(resp.StatusCode, body))
	}
	c.log.Info("batches accepted", zap.Int("status", resp.StatusCode))
	return nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// restError extracts the validator's error message when one is
// present, falling back to the bare status code.
func restError(status int, body []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("status %d: %s", status, envelope.Error.Message)
	}
	return fmt.Errorf("status %d", status)
}
