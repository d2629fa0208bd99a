package devutil

import (
	"encoding/json"
	"strconv"
)

// pick toma cualquier struct/map, lo pasa a map[string]any vía JSON,
// y devuelve solo las keys pedidas.
func pick(v any, keys ...string) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if val, ok := m[k]; ok {
			out[k] = val
		}
	}
	return out
}

// Pick projects v onto keys by json name. Unknown keys are left out.
func Pick(v any, keys ...string) map[string]any {
	return pick(v, keys...)
}

// Row is Pick flattened into printable cells, in key order. Unknown keys give
// an empty cell.
func Row(v any, keys ...string) []string {
	m := pick(v, keys...)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = cell(m[k])
	}
	return out
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
