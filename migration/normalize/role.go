package normalize

import (
	"strings"

	"github.com/tidwall/gjson"
)

var roleAliases = map[string]Role{
	"user":      RoleUser,
	"human":     RoleUser,
	"request":   RoleUser,
	"question":  RoleUser,
	"prompt":    RoleUser,
	"assistant": RoleAssistant,
	"bot":       RoleAssistant,
	"gpt":       RoleAssistant,
	"response":  RoleAssistant,
	"answer":    RoleAssistant,
	"model":     RoleAssistant,
	"system":    RoleSystem,
}

var roleKeys = []string{"role", "from", "sender", "author_role", "type"}

// NormalizeRole maps a free-form role label to a canonical Role, or RoleNone.
// Exact aliases win over substring matches; assistant substrings are checked before user
// substrings.
func NormalizeRole(label string) Role {
	role := lowerTrim(label)
	if role == "" {
		return RoleNone
	}
	if r, ok := roleAliases[role]; ok {
		return r
	}
	switch {
	case strings.Contains(role, "assistant") || strings.Contains(role, "model"):
		return RoleAssistant
	case strings.Contains(role, "user") || strings.Contains(role, "human"):
		return RoleUser
	}
	return RoleNone
}

func roleOf(v gjson.Result) Role {
	return NormalizeRole(scalarString(v))
}

// MessageRole resolves the role of a message object from its own fields:
// role, from, sender, author_role, type, then author.role, then the is_user/isUser and
// is_assistant flags.
func MessageRole(msg gjson.Result) Role {
	for _, key := range roleKeys {
		if r := roleOf(field(msg, key)); r != RoleNone {
			return r
		}
	}
	if r := roleOf(field(field(msg, "author"), "role")); r != RoleNone {
		return r
	}
	if field(msg, "is_user").Type == gjson.True || field(msg, "isUser").Type == gjson.True {
		return RoleUser
	}
	if field(msg, "is_assistant").Type == gjson.True {
		return RoleAssistant
	}
	return RoleNone
}
