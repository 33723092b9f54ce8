package platform

import (
	"context"
	"net/url"
	"strconv"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// auditOps covers the audit log. Exporting ships events outside the
// platform, so it is approval-gated.
func auditOps(c *Client) []schema.Operation {
	return []schema.Operation{
		&op{
			client:      c,
			name:        "list_audit_events",
			description: "List recent audit events, optionally filtered by action or user.",
			parameters: `{
				"type": "object",
				"properties": {
					"action": {"type": "string", "description": "Filter by action, e.g. delete or update"},
					"user": {"type": "string", "description": "Filter by acting user"},
					"start": {"type": "string", "description": "ISO-8601 start of the time window"},
					"end": {"type": "string", "description": "ISO-8601 end of the time window"},
					"limit": {"type": "integer", "description": "Max events to return (default 50)"}
				}
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				q := url.Values{}
				for _, f := range []string{"action", "user", "start", "end"} {
					if v := optString(args, f); v != "" {
						q.Set(f, v)
					}
				}
				q.Set("limit", strconv.Itoa(optInt(args, "limit", 50)))
				return c.get(ctx, "/audit/events", q)
			},
		},
		&op{
			client:      c,
			name:        "export_audit_events",
			description: "Export audit events for a time window to the org's export location.",
			approval:    true,
			parameters: `{
				"type": "object",
				"properties": {
					"start": {"type": "string", "description": "ISO-8601 start of the time window"},
					"end": {"type": "string", "description": "ISO-8601 end of the time window"}
				},
				"required": ["start", "end"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				start, err := stringArg(args, "start")
				if err != nil {
					return nil, err
				}
				end, err := stringArg(args, "end")
				if err != nil {
					return nil, err
				}
				return c.post(ctx, "/audit/export", map[string]any{"start": start, "end": end})
			},
		},
	}
}
