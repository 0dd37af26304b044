package normalize

import (
	"strings"

	"github.com/tidwall/gjson"
)

// pairKeys are (user, assistant) field pairs of QA-style records, highest priority first.
var pairKeys = [][2]string{
	{"question", "answer"},
	{"prompt", "response"},
	{"input", "output"},
	{"instruction", "output"},
	{"request", "response"},
}

// TurnsFromMessage converts one message-like value into zero or more turns.
//
// Objects are tried as fragment lists, then paired-field records, then generic role+content
// messages. Sequences of two or more elements are read positionally as (user, assistant).
// Anything else yields no turns.
func TurnsFromMessage(msg gjson.Result) []Turn {
	switch {
	case msg.IsObject():
		if frags := field(msg, "fragments"); frags.IsArray() {
			if turns := turnsFromFragments(frags); len(turns) > 0 {
				return turns
			}
		}
		if turns := pairTurns(msg); len(turns) > 0 {
			return turns
		}
		role := MessageRole(msg)
		if !role.Exported() {
			return nil
		}
		if text := MessageContent(msg, role); text != "" {
			return []Turn{{Role: role, Text: text}}
		}
	case msg.IsArray():
		items := msg.Array()
		if len(items) >= 2 {
			return userAssistantTurns(Text(items[0]), Text(items[1]))
		}
	}
	return nil
}

func turnsFromFragments(frags gjson.Result) []Turn {
	var turns []Turn
	frags.ForEach(func(_, frag gjson.Result) bool {
		if !frag.IsObject() {
			return true
		}
		text := strings.TrimSpace(Text(field(frag, "content")))
		if text == "" {
			return true
		}
		switch strings.ToUpper(scalarString(field(frag, "type"))) {
		case "REQUEST":
			turns = append(turns, Turn{Role: RoleUser, Text: text})
		case "RESPONSE":
			turns = append(turns, Turn{Role: RoleAssistant, Text: text})
		}
		return true
	})
	return turns
}

func pairTurns(rec gjson.Result) []Turn {
	for _, pair := range pairKeys {
		if !has(rec, pair[0]) || !has(rec, pair[1]) {
			continue
		}
		if turns := userAssistantTurns(Text(field(rec, pair[0])), Text(field(rec, pair[1]))); len(turns) > 0 {
			return turns
		}
	}
	return nil
}

func userAssistantTurns(user, assistant string) []Turn {
	var turns []Turn
	if s := strings.TrimSpace(user); s != "" {
		turns = append(turns, Turn{Role: RoleUser, Text: s})
	}
	if s := strings.TrimSpace(assistant); s != "" {
		turns = append(turns, Turn{Role: RoleAssistant, Text: s})
	}
	return turns
}

func turnsFromMessages(msgs []gjson.Result) []Turn {
	var turns []Turn
	for _, msg := range msgs {
		turns = append(turns, TurnsFromMessage(msg)...)
	}
	return turns
}
