package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stringParam returns a trimmed string parameter, or "" when absent.
func stringParam(params map[string]interface{}, key string) string {
	value, _ := params[key].(string)
	return strings.TrimSpace(value)
}

// stringListParam returns a parameter that may be a single string or an
// array of strings. Splitting on commas/newlines happens later during
// address normalization.
func stringListParam(params map[string]interface{}, key string) []string {
	switch value := params[key].(type) {
	case string:
		if strings.TrimSpace(value) == "" {
			return nil
		}
		return []string{value}
	case []interface{}:
		var out []string
		for _, item := range value {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// headersParam parses the custom_headers parameter, which may arrive as a
// JSON object or a JSON-encoded string.
func headersParam(params map[string]interface{}, key string) (map[string]string, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var source map[string]interface{}
	switch value := raw.(type) {
	case map[string]interface{}:
		source = value
	case string:
		if strings.TrimSpace(value) == "" {
			return nil, nil
		}
		if err := json.Unmarshal([]byte(value), &source); err != nil {
			return nil, fmt.Errorf("%s must be a JSON object", key)
		}
	default:
		return nil, fmt.Errorf("%s must be a JSON object", key)
	}

	headers := make(map[string]string, len(source))
	for name, value := range source {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		headers[name] = strings.TrimSpace(fmt.Sprintf("%v", value))
	}
	if len(headers) == 0 {
		return nil, nil
	}
	return headers, nil
}

// intParam returns an integer parameter (JSON numbers decode as float64),
// or the fallback when absent or malformed.
func intParam(params map[string]interface{}, key string, fallback int) int {
	switch value := params[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	default:
		return fallback
	}
}
