package executor

import (
	"encoding/json"
	"fmt"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// paramSchema is the subset of JSON Schema the catalog uses for parameters.
type paramSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]propertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

type propertySchema struct {
	Type string `json:"type"`
	Enum []any  `json:"enum"`
}

// validateArgs checks args against the operation's declared parameter schema:
// required fields must be present, declared types must match, enum values
// must be members. Undeclared arguments pass through untouched; the handler
// decides what to do with them.
func validateArgs(raw json.RawMessage, args map[string]any) error {
	if len(raw) == 0 {
		return nil
	}
	var ps paramSchema
	if err := json.Unmarshal(raw, &ps); err != nil {
		// An unparsable schema is a catalog bug, not the caller's fault;
		// let the handler see the raw arguments.
		return nil
	}

	for _, name := range ps.Required {
		if _, ok := args[name]; !ok {
			return &schema.ValidationError{Field: name, Reason: "required argument missing"}
		}
	}

	for name, val := range args {
		prop, declared := ps.Properties[name]
		if !declared {
			continue
		}
		if err := checkType(name, prop.Type, val); err != nil {
			return err
		}
		if len(prop.Enum) > 0 && !enumContains(prop.Enum, val) {
			return &schema.ValidationError{
				Field:  name,
				Reason: fmt.Sprintf("value %v not in %v", val, prop.Enum),
			}
		}
	}
	return nil
}

func checkType(name, declared string, val any) error {
	if val == nil {
		return nil
	}
	ok := true
	switch declared {
	case "", "object":
		// untyped or free-form
	case "string":
		_, ok = val.(string)
	case "integer", "number":
		switch val.(type) {
		case float64, int, int64, json.Number:
		default:
			ok = false
		}
	case "boolean":
		_, ok = val.(bool)
	case "array":
		_, ok = val.([]any)
	}
	if !ok {
		return &schema.ValidationError{
			Field:  name,
			Reason: fmt.Sprintf("expected %s, got %T", declared, val),
		}
	}
	return nil
}

func enumContains(enum []any, val any) bool {
	for _, e := range enum {
		if e == val {
			return true
		}
	}
	return false
}
