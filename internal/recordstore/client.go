// Package recordstore is a client for a flat HTTP JSON document store.
//
// The store exposes per-collection CRUD in the Firebase RTDB REST
// dialect: `GET /<collection>.json` returns a mapping from generated
// key to record (or JSON null when the collection has never been
// written), `POST /<collection>.json` creates a record and returns the
// generated key, and `PUT`/`PATCH`/`DELETE /<collection>/<key>.json`
// replace, merge into, or remove a single record. The store has no
// server-side query or index support; callers filter client-side.
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client interfaces with the remote record store.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the store at baseURL.
func NewClient(baseURL string) *Client {
	return NewClientWithTimeout(baseURL, defaultTimeout)
}

// NewClientWithTimeout creates a client with a custom request timeout.
func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// createResponse is the store's answer to a POST: the generated key.
type createResponse struct {
	Name string `json:"name"`
}

// List fetches an entire collection as a mapping from generated key to
// raw record. An empty or absent collection yields an empty map, not an
// error: the store answers JSON null for paths that were never written.
func (c *Client) List(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, c.collectionURL(collection), nil)
	if err != nil {
		return nil, err
	}

	records := make(map[string]json.RawMessage)
	if isJSONNull(body) {
		return records, nil
	}
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s collection: %w", collection, err)
	}
	return records, nil
}

// Get fetches a single record by key and decodes it into v. A key that
// was never written decodes from JSON null and leaves v untouched.
func (c *Client) Get(ctx context.Context, collection, key string, v any) error {
	body, err := c.do(ctx, http.MethodGet, c.recordURL(collection, key), nil)
	if err != nil {
		return err
	}
	if isJSONNull(body) {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, key, err)
	}
	return nil
}

// Create appends a record to a collection and returns the generated key.
func (c *Client) Create(ctx context.Context, collection string, record any) (string, error) {
	body, err := c.do(ctx, http.MethodPost, c.collectionURL(collection), record)
	if err != nil {
		return "", err
	}

	var created createResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to decode create response: %w", err)
	}
	return created.Name, nil
}

// Replace overwrites the entire record at key.
func (c *Client) Replace(ctx context.Context, collection, key string, record any) error {
	_, err := c.do(ctx, http.MethodPut, c.recordURL(collection, key), record)
	return err
}

// Patch merges only the named fields into the record at key, leaving
// all other fields untouched.
func (c *Client) Patch(ctx context.Context, collection, key string, fields map[string]any) error {
	_, err := c.do(ctx, http.MethodPatch, c.recordURL(collection, key), fields)
	return err
}

// Delete removes the record at key.
func (c *Client) Delete(ctx context.Context, collection, key string) error {
	_, err := c.do(ctx, http.MethodDelete, c.recordURL(collection, key), nil)
	return err
}

func (c *Client) collectionURL(collection string) string {
	return fmt.Sprintf("%s/%s.json", c.baseURL, collection)
}

func (c *Client) recordURL(collection, key string) string {
	return fmt.Sprintf("%s/%s/%s.json", c.baseURL, collection, key)
}

// do performs a single request and returns the response body. There
// are no retries: every failure is a single terminal outcome reported
// to the caller as a *RemoteError.
func (c *Client) do(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteError{Op: method + " " + url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Op: method + " " + url, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Op: method + " " + url, StatusCode: resp.StatusCode}
	}

	return body, nil
}

func isJSONNull(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	return trimmed == "" || trimmed == "null"
}
