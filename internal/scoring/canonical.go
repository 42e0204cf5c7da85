package scoring

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Canonical renders a JSON value as a key-sorted, whitespace-normalized
// string so two structurally equal payloads always encode identically:
// object keys are emitted in sorted order, numbers in shortest form, and
// strings with surrounding whitespace trimmed. Array order is preserved
// (it is structural, e.g. for ordering questions).
func Canonical(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	var sb strings.Builder
	writeCanonical(&sb, v)
	return sb.String(), nil
}

// Equal reports canonical equality of two JSON payloads. Any decode failure
// on either side makes them unequal, never an error.
func Equal(a, b json.RawMessage) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	ca, err := Canonical(a)
	if err != nil {
		return false
	}
	cb, err := Canonical(b)
	if err != nil {
		return false
	}
	return ca == cb
}

func writeCanonical(sb *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		sb.WriteString(strconv.FormatBool(t))
	case float64:
		sb.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case string:
		b, _ := json.Marshal(strings.TrimSpace(t))
		sb.Write(b)
	case []any:
		sb.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCanonical(sb, e)
		}
		sb.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			sb.Write(kb)
			sb.WriteByte(':')
			writeCanonical(sb, t[k])
		}
		sb.WriteByte('}')
	}
}
