// Package platform holds the operation catalog for the monitoring
// copilot: one file per platform service, each contributing a handful of
// thin parameterized HTTP operations, plus the shared client they run
// through. Mutating operations are approval-gated; everything else is
// read-only and safe to run unattended.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/watchdeck/watchdeck/internal/schema"
	"github.com/watchdeck/watchdeck/internal/shared/llmutils"
)

const clientTimeout = 30 * time.Second

// Client is a stateless JSON client for the data platform APIs. Org and
// sandbox are sent as headers on every call.
type Client struct {
	baseURL    string
	token      string
	orgID      string
	sandbox    string
	httpClient *http.Client
}

// NewClient creates a platform client. baseURL has no trailing slash.
func NewClient(baseURL, token, orgID, sandbox string) *Client {
	return &Client{
		baseURL:    trimSlash(baseURL),
		token:      token,
		orgID:      orgID,
		sandbox:    sandbox,
		httpClient: &http.Client{Timeout: clientTimeout},
	}
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (any, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, path string, body any) (any, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) delete(ctx context.Context, path string) (any, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do performs one platform call and decodes the JSON body. Non-2xx
// responses become UpstreamError with the platform's own message preserved;
// empty 2xx bodies decode to nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (any, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.orgID != "" {
		req.Header.Set("x-org-id", c.orgID)
	}
	if c.sandbox != "" {
		req.Header.Set("x-sandbox-name", c.sandbox)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &schema.UpstreamError{Service: "platform", Msg: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &schema.UpstreamError{Service: "platform", Msg: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &schema.UpstreamError{
			Service: "platform",
			Status:  resp.StatusCode,
			Msg:     llmutils.Truncate(string(raw), 300),
		}
	}

	if len(raw) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &schema.UpstreamError{Service: "platform", Msg: "unparsable response body"}
	}
	return out, nil
}

// notFound rewrites a 404 UpstreamError into a NotFoundError for the entity
// the caller was addressing. Other errors pass through.
func notFound(err error, kind, id string) error {
	var up *schema.UpstreamError
	if errors.As(err, &up) && up.Status == http.StatusNotFound {
		return &schema.NotFoundError{Kind: kind, ID: id}
	}
	return err
}

// stringArg extracts a required string argument.
func stringArg(args map[string]any, field string) (string, error) {
	v, ok := args[field]
	if !ok {
		return "", &schema.ValidationError{Field: field, Reason: "required"}
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", &schema.ValidationError{Field: field, Reason: "must be a non-empty string"}
	}
	return s, nil
}

// optString extracts an optional string argument, "" when absent.
func optString(args map[string]any, field string) string {
	s, _ := args[field].(string)
	return s
}

// optInt extracts an optional integer argument, def when absent.
func optInt(args map[string]any, field string, def int) int {
	switch v := args[field].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// optBool extracts an optional boolean argument, def when absent.
func optBool(args map[string]any, field string, def bool) bool {
	if v, ok := args[field].(bool); ok {
		return v
	}
	return def
}
