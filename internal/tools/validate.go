package tools

import (
	"fmt"

	"vectormcp/internal/mcp"
)

// ValidateArgs checks supplied arguments against a tool's input schema.
// The check is deliberately shape-only: required keys must be present,
// known keys must carry the declared primitive type, enum values must
// match. Domain-level bounds (page sizes, id formats) are the backend's
// responsibility. Unknown keys are tolerated.
func ValidateArgs(schema mcp.InputSchema, args map[string]any) error {
	for _, key := range schema.Required {
		if _, ok := args[key]; !ok {
			return fmt.Errorf("missing required argument %q", key)
		}
	}

	for key, value := range args {
		prop, ok := schema.Properties[key]
		if !ok {
			continue
		}
		if err := checkType(key, prop, value); err != nil {
			return err
		}
	}
	return nil
}

func checkType(key string, prop mcp.SchemaProperty, value any) error {
	if value == nil {
		return fmt.Errorf("argument %q must not be null", key)
	}

	switch prop.Type {
	case "string":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("argument %q must be a string", key)
		}
		if len(prop.Enum) > 0 && !contains(prop.Enum, s) {
			return fmt.Errorf("argument %q must be one of %v", key, prop.Enum)
		}
	case "integer":
		// JSON numbers arrive as float64; require an integral value.
		switch n := value.(type) {
		case float64:
			if n != float64(int64(n)) {
				return fmt.Errorf("argument %q must be an integer", key)
			}
		case int:
		default:
			return fmt.Errorf("argument %q must be an integer", key)
		}
	case "number":
		switch value.(type) {
		case float64, int:
		default:
			return fmt.Errorf("argument %q must be a number", key)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("argument %q must be a boolean", key)
		}
	case "object":
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("argument %q must be an object", key)
		}
	case "array":
		items, ok := value.([]any)
		if !ok {
			return fmt.Errorf("argument %q must be an array", key)
		}
		if prop.Items != nil {
			for i, item := range items {
				if err := checkType(fmt.Sprintf("%s[%d]", key, i), *prop.Items, item); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
