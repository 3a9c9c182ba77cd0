package translation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeResult parses a provider's structured output in two stages: a strict
// JSON parse first, then a best-effort extraction of the outermost {...}
// region. Missing keys resolve through known synonyms before defaulting to
// the empty string.
func decodeResult(raw string) (*Result, error) {
	raw = strings.TrimSpace(raw)

	fields, err := decodeFields(raw)
	if err != nil {
		salvaged, ok := extractOuterObject(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		fields, err = decodeFields(salvaged)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
	}

	return &Result{
		Translation:   firstOf(fields, "translated_text", "translation", "text"),
		Pronunciation: firstOf(fields, "pronunciation", "pron"),
	}, nil
}

func decodeFields(raw string) (map[string]string, error) {
	var generic map[string]any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(generic))
	for key, value := range generic {
		if s, ok := value.(string); ok {
			fields[strings.ToLower(key)] = s
		}
	}
	return fields, nil
}

func firstOf(fields map[string]string, keys ...string) string {
	for _, key := range keys {
		if value, ok := fields[key]; ok && value != "" {
			return value
		}
	}
	return ""
}

// extractBalancedObject returns the first balanced {...} substring. Used by
// the fast adapter, whose output may wrap the JSON in prose or code fences.
func extractBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// extractOuterObject returns the region between the first '{' and the last
// '}'. Cruder than extractBalancedObject, but recovers truncated or
// fence-wrapped output from the deep adapter's strict JSON mode.
func extractOuterObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
