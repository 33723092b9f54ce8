package platform

import (
	"context"
	"net/url"
	"strconv"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// queryOps covers the query service. Submitting SQL consumes compute and
// cancellation kills someone's running work, so both are approval-gated.
func queryOps(c *Client) []schema.Operation {
	return []schema.Operation{
		&op{
			client:      c,
			name:        "list_queries",
			description: "List recent queries, optionally filtered by state.",
			parameters: `{
				"type": "object",
				"properties": {
					"state": {"type": "string", "enum": ["submitted", "in_progress", "success", "failed", "cancelled"], "description": "Filter by query state"},
					"limit": {"type": "integer", "description": "Max queries to return (default 20)"}
				}
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				q := url.Values{}
				if s := optString(args, "state"); s != "" {
					q.Set("state", s)
				}
				q.Set("limit", strconv.Itoa(optInt(args, "limit", 20)))
				return c.get(ctx, "/query/queries", q)
			},
		},
		&op{
			client:      c,
			name:        "get_query",
			description: "Get one query's SQL, state, timing and error details.",
			parameters: `{
				"type": "object",
				"properties": {
					"queryId": {"type": "string", "description": "Query identifier"}
				},
				"required": ["queryId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "queryId")
				if err != nil {
					return nil, err
				}
				out, err := c.get(ctx, "/query/queries/"+id, nil)
				return out, notFound(err, "query", id)
			},
		},
		&op{
			client:      c,
			name:        "list_query_schedules",
			description: "List scheduled queries and their cron expressions.",
			parameters:  noParams,
			handler: func(ctx context.Context, c *Client, _ map[string]any) (any, error) {
				return c.get(ctx, "/query/schedules", nil)
			},
		},
		&op{
			client:      c,
			name:        "create_query",
			description: "Submit a SQL query against the data lake. Consumes compute.",
			approval:    true,
			parameters: `{
				"type": "object",
				"properties": {
					"sql": {"type": "string", "description": "SQL statement to run"},
					"name": {"type": "string", "description": "Optional label for the query"}
				},
				"required": ["sql"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				sql, err := stringArg(args, "sql")
				if err != nil {
					return nil, err
				}
				body := map[string]any{"sql": sql}
				if n := optString(args, "name"); n != "" {
					body["name"] = n
				}
				return c.post(ctx, "/query/queries", body)
			},
		},
		&op{
			client:      c,
			name:        "cancel_query",
			description: "Cancel a running query.",
			approval:    true,
			parameters: `{
				"type": "object",
				"properties": {
					"queryId": {"type": "string", "description": "Query identifier"}
				},
				"required": ["queryId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "queryId")
				if err != nil {
					return nil, err
				}
				out, err := c.delete(ctx, "/query/queries/"+id)
				return out, notFound(err, "query", id)
			},
		},
	}
}
