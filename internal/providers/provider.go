// Package providers contains the wire adapters between watchdeck's canonical
// operation/message model and each LLM vendor's function-calling format.
//
// Every adapter implements schema.LLMProvider and owns both directions:
// outbound (operation declarations + normalised turns into the vendor's
// request body) and inbound (the vendor's response into schema.LLMResponse).
// The rest of the system never sees a vendor payload.
package providers

import (
	"encoding/json"
	"fmt"
	"strings"
)

const defaultMaxTokens = 4096

// friendlyHTTPError condenses a non-2xx body into something loggable.
func friendlyHTTPError(code int, body []byte) string {
	if code == 429 {
		return "rate limit exceeded"
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}

// repairJSON attempts to unmarshal JSON, retrying after stripping trailing
// garbage characters. This handles some LLMs that emit truncated tool
// arguments. An empty or unrepairable string yields an empty map so the
// failure surfaces at argument validation, not as a dead turn.
func repairJSON(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return out, nil
	}

	// Attempt 1: trim trailing non-JSON characters.
	stripped := strings.TrimRight(raw, " \t\n\r}]")
	if !strings.HasSuffix(stripped, "}") {
		stripped += "}"
	}
	if err := json.Unmarshal([]byte(stripped), &out); err == nil {
		return out, nil
	}

	// Attempt 2: find the last complete JSON object.
	if i := strings.LastIndex(raw, "}"); i >= 0 {
		if err := json.Unmarshal([]byte(raw[:i+1]), &out); err == nil {
			return out, nil
		}
	}

	return map[string]any{}, fmt.Errorf("cannot repair JSON: %s", raw)
}

func anyToString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}
