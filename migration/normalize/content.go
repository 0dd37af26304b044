package normalize

import (
	"strings"

	"github.com/tidwall/gjson"
)

type stringSet map[string]struct{}

func newStringSet(items ...string) stringSet {
	s := make(stringSet, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

func (s stringSet) has(item string) bool {
	_, ok := s[item]
	return ok
}

var (
	// Phased content lists (content_list).
	skippedPhases       = newStringSet("think", "reasoning", "web_search", "search")
	answerPhases        = newStringSet("answer", "final", "output", "response")
	toolItemRoles       = newStringSet("function", "tool")
	contentListTextKeys = []string{"content", "text", "value", "message", "output", "answer"}

	// Typed content blocks (content: [...]).
	skippedBlockTypes   = newStringSet("thinking", "tool_use", "tool_result", "token_budget", "search_result", "search_results")
	preferredBlockTypes = newStringSet("text", "markdown")
	blockTextKeys       = []string{"text", "content", "value", "message"}

	legacyTextKeys = []string{"text", "value", "message", "output", "answer", "prompt", "question"}
)

// segments collects preferred and fallback text. Preferred text, when present, replaces the
// fallback entirely.
type segments struct {
	preferred []string
	fallback  []string
}

func (s segments) String() string {
	parts := s.fallback
	if len(s.preferred) > 0 {
		parts = s.preferred
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// contentListText extracts text from a phased content list. For assistant messages,
// reasoning and search phases and tool-role items are dropped and answer phases are preferred.
func contentListText(items gjson.Result, role Role) string {
	if !items.IsArray() {
		return ""
	}
	var segs segments
	items.ForEach(func(_, item gjson.Result) bool {
		var phase, itemRole, text string
		if item.IsObject() {
			phase = lowerTrim(scalarString(field(item, "phase")))
			itemRole = lowerTrim(scalarString(field(item, "role")))
			text = firstText(item, contentListTextKeys)
		} else {
			text = strings.TrimSpace(Text(item))
		}
		if text == "" {
			return true
		}
		if role == RoleAssistant {
			switch {
			case toolItemRoles.has(itemRole):
				return true
			case answerPhases.has(phase):
				segs.preferred = append(segs.preferred, text)
				return true
			case skippedPhases.has(phase):
				return true
			}
		}
		segs.fallback = append(segs.fallback, text)
		return true
	})
	return segs.String()
}

// contentBlocksText extracts text from typed content blocks. Thinking, tool and search blocks
// are dropped; text/markdown blocks are preferred; unknown block types are kept as fallback.
func contentBlocksText(blocks gjson.Result) string {
	if !blocks.IsArray() {
		return ""
	}
	var segs segments
	blocks.ForEach(func(_, item gjson.Result) bool {
		if item.Type == gjson.String {
			if s := strings.TrimSpace(item.Str); s != "" {
				segs.fallback = append(segs.fallback, s)
			}
			return true
		}
		if !item.IsObject() {
			return true
		}
		blockType := lowerTrim(scalarString(field(item, "type")))
		if skippedBlockTypes.has(blockType) {
			return true
		}
		text := ""
		for _, key := range blockTextKeys {
			v := field(item, key)
			if v.Type != gjson.String {
				continue
			}
			if s := strings.TrimSpace(v.Str); s != "" {
				text = s
				break
			}
		}
		if text == "" {
			return true
		}
		if preferredBlockTypes.has(blockType) {
			segs.preferred = append(segs.preferred, text)
		} else {
			segs.fallback = append(segs.fallback, text)
		}
		return true
	})
	return segs.String()
}

// MessageContent returns the text body of a message whose role is already known.
// Attempts, first non-empty wins: content blocks or content value, legacy flat keys,
// content_list, and for assistant messages reasoning_content as a last resort.
func MessageContent(msg gjson.Result, role Role) string {
	content := field(msg, "content")
	switch {
	case content.IsArray():
		if s := contentBlocksText(content); s != "" {
			return s
		}
	case isSet(content):
		if s := strings.TrimSpace(Text(content)); s != "" {
			return s
		}
	}

	if s := firstText(msg, legacyTextKeys); s != "" {
		return s
	}
	if list := field(msg, "content_list"); list.Exists() {
		if s := contentListText(list, role); s != "" {
			return s
		}
	}
	if role == RoleAssistant {
		return strings.TrimSpace(Text(field(msg, "reasoning_content")))
	}
	return ""
}
