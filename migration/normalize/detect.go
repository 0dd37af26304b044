package normalize

import "github.com/tidwall/gjson"

const messageListSampleSize = 20

var (
	roleLikeKeys    = []string{"role", "from", "sender", "author"}
	contentLikeKeys = []string{"content", "text", "value", "message", "fragments", "question", "answer"}
)

// LooksLikeMessage reports whether v is an object with a role-like or content-like key, or a
// sequence of at least two elements.
func LooksLikeMessage(v gjson.Result) bool {
	switch {
	case v.IsObject():
		return hasAny(v, roleLikeKeys) || hasAny(v, contentLikeKeys)
	case v.IsArray():
		n := 0
		v.ForEach(func(_, _ gjson.Result) bool {
			n++
			return n < 2
		})
		return n >= 2
	}
	return false
}

// LooksLikeMessageList reports whether v is a non-empty array where at least half of the
// non-null entries among its first 20 items look like messages (and at least one does).
func LooksLikeMessageList(v gjson.Result) bool {
	if !v.IsArray() {
		return false
	}
	items := v.Array()
	if len(items) > messageListSampleSize {
		items = items[:messageListSampleSize]
	}
	sampled, matched := 0, 0
	for _, item := range items {
		if item.Type == gjson.Null {
			continue
		}
		sampled++
		if LooksLikeMessage(item) {
			matched++
		}
	}
	if sampled == 0 {
		return false
	}
	return matched >= max(1, sampled/2)
}
