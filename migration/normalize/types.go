// Package normalize reduces chat-export JSON of unknown shape to an ordered list of
// (role, text) turns per conversation.
//
// Input is a parsed JSON document (gjson.Result). Nothing in this package performs I/O or
// mutates its input, and the alias tables below are read-only, so conversations may be
// normalized from several goroutines at once.
package normalize

import "errors"

// Role is the canonical speaker of a message.
type Role string

const (
	RoleNone      Role = ""
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Exported reports whether turns with this role are emitted.
func (r Role) Exported() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is one canonical unit of conversation. Text is trimmed and never empty.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Conversation is a titled, ordered list of turns.
type Conversation struct {
	Title string `json:"title"`
	Turns []Turn `json:"turns"`

	// FallbackTitle is set when no title-like field was found and Title was derived from
	// the input identity.
	FallbackTitle bool `json:"-"`
}

var (
	// ErrUnsupportedSchema is returned when no conversation can be extracted from a document.
	ErrUnsupportedSchema = errors.New("unsupported conversation schema")

	// ErrInvalidJSON is returned by NormalizeBytes for input that is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON")
)
