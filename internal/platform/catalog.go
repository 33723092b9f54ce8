package platform

import (
	"github.com/watchdeck/watchdeck/internal/registry"
	"github.com/watchdeck/watchdeck/internal/schema"
)

// Catalog returns every platform operation in presentation order.
func Catalog(c *Client) []schema.Operation {
	var ops []schema.Operation
	ops = append(ops, batchOps(c)...)
	ops = append(ops, datasetOps(c)...)
	ops = append(ops, schemaOps(c)...)
	ops = append(ops, segmentOps(c)...)
	ops = append(ops, identityOps(c)...)
	ops = append(ops, queryOps(c)...)
	ops = append(ops, flowOps(c)...)
	ops = append(ops, policyOps(c)...)
	ops = append(ops, auditOps(c)...)
	ops = append(ops, NewRunbookOp())
	return ops
}

// BuildRegistry assembles the immutable registry the copilot runs against.
// Extra operations (test doubles, future services) append after the catalog.
func BuildRegistry(c *Client, extra ...schema.Operation) (*registry.Registry, error) {
	return registry.NewBuilder().
		WithAll(Catalog(c)...).
		WithAll(extra...).
		Build()
}
