package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/watchdeck/watchdeck/internal/schema"
)

const (
	runbookMaxChars  = 50000
	runbookRedirects = 5
	runbookUserAgent = "watchdeck/1.0"
)

// RunbookOp fetches an operator runbook page and extracts its readable
// text so the model can quote remediation steps.
type RunbookOp struct {
	httpClient *http.Client
}

// NewRunbookOp creates the fetch_runbook operation.
func NewRunbookOp() *RunbookOp {
	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= runbookRedirects {
				return fmt.Errorf("stopped after %d redirects", runbookRedirects)
			}
			return nil
		},
	}
	return &RunbookOp{httpClient: client}
}

func (t *RunbookOp) Name() string { return "fetch_runbook" }
func (t *RunbookOp) Description() string {
	return "Fetch an operator runbook URL and extract its readable text."
}
func (t *RunbookOp) RequiresApproval() bool { return false }
func (t *RunbookOp) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {
				"type": "string",
				"description": "Runbook URL (http or https)"
			},
			"maxChars": {
				"type": "integer",
				"description": "Truncate extracted text to this many characters"
			}
		},
		"required": ["url"]
	}`)
}

func (t *RunbookOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	rawURL, err := stringArg(args, "url")
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &schema.ValidationError{Field: "url", Reason: "must be a valid http(s) URL"}
	}
	maxChars := optInt(args, "maxChars", runbookMaxChars)
	if maxChars < 100 {
		maxChars = 100
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &schema.UpstreamError{Service: "runbook", Msg: err.Error()}
	}
	req.Header.Set("User-Agent", runbookUserAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, &schema.UpstreamError{Service: "runbook", Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &schema.UpstreamError{Service: "runbook", Status: resp.StatusCode, Msg: "fetch failed"}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &schema.UpstreamError{Service: "runbook", Msg: err.Error()}
	}

	article, err := readability.FromReader(bytes.NewReader(body), u)
	text := article.TextContent
	title := article.Title
	if err != nil || text == "" {
		// Not every runbook is article-shaped; fall back to the raw body.
		text = string(body)
	}

	truncated := len(text) > maxChars
	if truncated {
		text = text[:maxChars]
	}

	return map[string]any{
		"url":       rawURL,
		"title":     title,
		"truncated": truncated,
		"text":      text,
	}, nil
}

var _ schema.Operation = (*RunbookOp)(nil)
