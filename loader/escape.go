package loader

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// escapeCopy escapes a value for the PostgreSQL COPY text format so
// arbitrary property content cannot corrupt row boundaries.
func escapeCopy(value string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"\t", `\t`,
		"\n", `\n`,
		"\r", `\r`,
	)
	return r.Replace(value)
}

// escapeCypherString escapes a string for use inside a single-quoted
// Cypher literal.
func escapeCypherString(value string) string {
	return strings.ReplaceAll(strings.ReplaceAll(value, `\`, `\\`), `'`, `\'`)
}

// formatCypherValue renders a Go value as a Cypher literal. Complex types
// without a direct Cypher representation fall back to a JSON string.
func formatCypherValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return "'" + escapeCypherString(v) + "'"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%v", v)
	case json.Number:
		// Decoded numbers keep their source text; rendering it verbatim
		// preserves integers too wide for float64.
		return v.String()
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = formatCypherValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "'" + escapeCypherString(fmt.Sprintf("%v", v)) + "'"
		}
		return "'" + escapeCypherString(string(encoded)) + "'"
	}
}

// formatCypherProperties renders a property bag as a Cypher map literal.
// Keys are sorted so the rendering is deterministic.
func formatCypherProperties(props Properties) string {
	if len(props) == 0 {
		return "{}"
	}

	keys := sortedKeys(props)
	items := make([]string, 0, len(keys))
	for _, key := range keys {
		items = append(items, fmt.Sprintf("`%s`: %s", key, formatCypherValue(props[key])))
	}
	return "{" + strings.Join(items, ", ") + "}"
}

// propertiesJSON serializes a property bag with the logical id folded in
// under the "id" key, matching how every strategy stores the natural key
// inside the entity's properties. encoding/json sorts map keys, so the
// output is deterministic.
func propertiesJSON(id string, props Properties) (string, error) {
	merged := make(map[string]any, len(props)+1)
	for k, v := range props {
		merged[k] = v
	}
	merged["id"] = id

	encoded, err := json.Marshal(merged)
	if err != nil {
		return "", fmt.Errorf("failed to encode properties for %q: %w", id, err)
	}
	return string(encoded), nil
}

func sortedKeys(props Properties) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
