package platform

import (
	"context"
	"net/url"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// identityOps covers identity namespaces and the identity graph.
// Creating a namespace is approval-gated.
func identityOps(c *Client) []schema.Operation {
	return []schema.Operation{
		&op{
			client:      c,
			name:        "list_identity_namespaces",
			description: "List identity namespaces defined for the org.",
			parameters:  noParams,
			handler: func(ctx context.Context, c *Client, _ map[string]any) (any, error) {
				return c.get(ctx, "/identity/namespaces", nil)
			},
		},
		&op{
			client:      c,
			name:        "get_identity_cluster",
			description: "Look up the identity graph cluster for one identity.",
			parameters: `{
				"type": "object",
				"properties": {
					"namespace": {"type": "string", "description": "Identity namespace code, e.g. email or crm_id"},
					"id": {"type": "string", "description": "Identity value to look up"}
				},
				"required": ["namespace", "id"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				ns, err := stringArg(args, "namespace")
				if err != nil {
					return nil, err
				}
				id, err := stringArg(args, "id")
				if err != nil {
					return nil, err
				}
				q := url.Values{}
				q.Set("namespace", ns)
				q.Set("id", id)
				out, err := c.get(ctx, "/identity/cluster/members", q)
				return out, notFound(err, "identity", ns+":"+id)
			},
		},
		&op{
			client:      c,
			name:        "get_identity_mappings",
			description: "Get cross-namespace mappings for one identity.",
			parameters: `{
				"type": "object",
				"properties": {
					"namespace": {"type": "string", "description": "Identity namespace code"},
					"id": {"type": "string", "description": "Identity value"},
					"targetNamespace": {"type": "string", "description": "Restrict mappings to this namespace"}
				},
				"required": ["namespace", "id"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				ns, err := stringArg(args, "namespace")
				if err != nil {
					return nil, err
				}
				id, err := stringArg(args, "id")
				if err != nil {
					return nil, err
				}
				q := url.Values{}
				q.Set("namespace", ns)
				q.Set("id", id)
				if t := optString(args, "targetNamespace"); t != "" {
					q.Set("targetNs", t)
				}
				out, err := c.get(ctx, "/identity/mappings", q)
				return out, notFound(err, "identity", ns+":"+id)
			},
		},
		&op{
			client:      c,
			name:        "create_identity_namespace",
			description: "Create a new identity namespace. Affects how identities are stitched org-wide.",
			approval:    true,
			parameters: `{
				"type": "object",
				"properties": {
					"code": {"type": "string", "description": "Short namespace code, e.g. loyalty_id"},
					"displayName": {"type": "string", "description": "Human-readable name"},
					"idType": {"type": "string", "enum": ["cross_device", "cookie", "device", "email", "phone"], "description": "Kind of identifier this namespace holds"}
				},
				"required": ["code", "idType"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				code, err := stringArg(args, "code")
				if err != nil {
					return nil, err
				}
				idType, err := stringArg(args, "idType")
				if err != nil {
					return nil, err
				}
				body := map[string]any{"code": code, "idType": idType}
				if dn := optString(args, "displayName"); dn != "" {
					body["displayName"] = dn
				}
				return c.post(ctx, "/identity/namespaces", body)
			},
		},
	}
}
