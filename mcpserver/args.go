package mcpserver

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lorien/weblib/formutil"
)

// GetArgsMap extracts the arguments map from an MCP tool call request.
// Returns an empty map if arguments are nil or not a map.
func GetArgsMap(request mcp.CallToolRequest) map[string]any {
	if m, ok := request.Params.Arguments.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// GetStringParam extracts a string parameter from the arguments map.
func GetStringParam(args map[string]any, key string) (string, bool) {
	s, ok := args[key].(string)
	return s, ok
}

// GetPairsParam converts a list of {"key": ..., "value": ...} objects into
// pairs. JSON numbers arrive as float64 and JSON arrays as []any, both of
// which the normalizers accept.
func GetPairsParam(args map[string]any, key string) ([]formutil.Pair, error) {
	raw, ok := args[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a list of {key, value} objects", key)
	}
	pairs := make([]formutil.Pair, 0, len(raw))
	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be an object", key, i)
		}
		k, ok := obj["key"].(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d].key must be a string", key, i)
		}
		pairs = append(pairs, formutil.Pair{Key: k, Value: obj["value"]})
	}
	return pairs, nil
}
