package normalize

import (
	"cmp"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

var timestampKeys = []string{"timestamp", "create_time", "inserted_at", "updated_at"}

// timestampKey orders messages: timestamped before untimestamped, numeric timestamps before
// string ones, numbers numerically and strings lexicographically.
type timestampKey struct {
	present bool
	numeric bool
	num     float64
	str     string
}

func messageTimestamp(msg gjson.Result) timestampKey {
	for _, key := range timestampKeys {
		v := field(msg, key)
		switch v.Type {
		case gjson.Null:
			continue
		case gjson.Number:
			return timestampKey{present: true, numeric: true, num: v.Num}
		case gjson.String:
			if v.Str == "" {
				continue
			}
			return timestampKey{present: true, str: v.Str}
		default:
			return timestampKey{present: true, str: v.Raw}
		}
	}
	return timestampKey{}
}

func (a timestampKey) compare(b timestampKey) int {
	if a.present != b.present {
		if a.present {
			return -1
		}
		return 1
	}
	if !a.present {
		return 0
	}
	if a.numeric != b.numeric {
		if a.numeric {
			return -1
		}
		return 1
	}
	if a.numeric {
		return cmp.Compare(a.num, b.num)
	}
	return strings.Compare(a.str, b.str)
}

// ResolveHistoryChain returns the ordered message objects of a chat-history value.
//
// A history that is itself a message list, or whose messages field is one, is used as is.
// Otherwise messages is read as an id -> message map: when currentId resolves into the map,
// the parentId chain is walked back from it and returned root first; else all messages are
// ordered by timestamp, then id.
func ResolveHistoryChain(history gjson.Result) []gjson.Result {
	if LooksLikeMessageList(history) {
		return history.Array()
	}
	if !history.IsObject() {
		return nil
	}
	messages := field(history, "messages")
	if LooksLikeMessageList(messages) {
		return messages.Array()
	}
	if !messages.IsObject() {
		return nil
	}

	byID := newKeyedNodes(messages)
	if current := field(history, "currentId"); current.Type == gjson.String {
		if chain := walkParentChain(byID, current.Str); len(chain) > 0 {
			return chain
		}
	}
	return messagesByTimestamp(byID)
}

func walkParentChain(byID keyedNodes, currentID string) []gjson.Result {
	if _, ok := byID.get(currentID); !ok {
		return nil
	}
	var chain []gjson.Result
	seen := make(map[string]struct{})
	for cursor := currentID; cursor != ""; {
		if _, ok := seen[cursor]; ok {
			break
		}
		node, ok := byID.get(cursor)
		if !ok || !node.IsObject() {
			break
		}
		seen[cursor] = struct{}{}
		chain = append(chain, node)

		cursor = ""
		if parent := field(node, "parentId"); parent.Type == gjson.String {
			cursor = parent.Str
		}
	}
	slices.Reverse(chain)
	return chain
}

func messagesByTimestamp(byID keyedNodes) []gjson.Result {
	ids := slices.Clone(byID.ids)
	keys := make(map[string]timestampKey, len(ids))
	for _, id := range ids {
		keys[id] = messageTimestamp(byID.nodes[id])
	}
	slices.SortFunc(ids, func(a, b string) int {
		if c := keys[a].compare(keys[b]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	out := make([]gjson.Result, 0, len(ids))
	for _, id := range ids {
		if node := byID.nodes[id]; node.IsObject() {
			out = append(out, node)
		}
	}
	return out
}

func turnsFromHistory(history gjson.Result) []Turn {
	return turnsFromMessages(ResolveHistoryChain(history))
}
