package normalize

import (
	"strings"

	"github.com/tidwall/gjson"
)

// field returns the value stored under key. Lookups on non-objects and missing keys return
// the zero Result, whose Exists() is false.
//
// Keys are matched literally by scanning the object rather than through a gjson path, so
// ids containing '.', '*' or '#' resolve correctly. A repeated key resolves to its last
// occurrence.
func field(v gjson.Result, key string) gjson.Result {
	if !v.IsObject() {
		return gjson.Result{}
	}
	var out gjson.Result
	v.ForEach(func(k, val gjson.Result) bool {
		if k.String() == key {
			out = val
		}
		return true
	})
	return out
}

func has(v gjson.Result, key string) bool {
	return field(v, key).Exists()
}

func hasAny(v gjson.Result, keys []string) bool {
	for _, key := range keys {
		if has(v, key) {
			return true
		}
	}
	return false
}

// isSet reports whether v is present and not JSON null.
func isSet(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}

// firstText returns the first non-empty coerced value among keys, in order.
func firstText(v gjson.Result, keys []string) string {
	for _, key := range keys {
		if s := strings.TrimSpace(Text(field(v, key))); s != "" {
			return s
		}
	}
	return ""
}

// scalarString stringifies strings, numbers and booleans. Objects, arrays and null yield "".
func scalarString(v gjson.Result) string {
	switch v.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		return v.String()
	default:
		return ""
	}
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// keyedNodes is an id -> value table built from a JSON object, remembering first-seen key order.
type keyedNodes struct {
	ids   []string
	nodes map[string]gjson.Result
}

func newKeyedNodes(obj gjson.Result) keyedNodes {
	kn := keyedNodes{nodes: make(map[string]gjson.Result)}
	obj.ForEach(func(k, val gjson.Result) bool {
		id := k.String()
		if _, ok := kn.nodes[id]; !ok {
			kn.ids = append(kn.ids, id)
		}
		kn.nodes[id] = val
		return true
	})
	return kn
}

func (kn keyedNodes) get(id string) (gjson.Result, bool) {
	v, ok := kn.nodes[id]
	return v, ok
}
