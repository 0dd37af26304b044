package normalize

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// collectionKeys name top-level fields that may hold a list of conversations.
	collectionKeys = []string{"conversations", "data", "items", "chats", "sessions"}

	titleKeys       = []string{"title", "name", "subject", "topic"}
	messageListKeys = []string{"chat_messages", "messages", "turns", "dialog", "dialogue", "items"}
)

// conversationStrategy extracts turns from a conversation object for one known export shape.
type conversationStrategy struct {
	name    string
	extract func(obj gjson.Result) []Turn
}

// additiveStrategies all run and their turns are concatenated.
var additiveStrategies = []conversationStrategy{
	{name: "mapping", extract: mappingField},
	{name: "message-list", extract: messageListField},
}

// fallbackStrategies run in order only while no turns have been found; the first non-empty
// result wins.
var fallbackStrategies = []conversationStrategy{
	{name: "history", extract: historyField},
	{name: "chat", extract: chatField},
	{name: "conversation", extract: conversationField},
	{name: "conversations", extract: conversationsListField},
}

// Normalize detects the export shape of doc and returns its conversations in document order.
// fallbackTitle (typically the input file stem) names conversations without a title field;
// conversations inside a list get "<fallbackTitle>-<n>" with n counting from 1.
//
// It returns ErrUnsupportedSchema when no conversation can be recognized at all.
func Normalize(doc gjson.Result, fallbackTitle string) ([]Conversation, error) {
	convs := normalizeRoot(doc, fallbackTitle)
	if len(convs) == 0 {
		return nil, fmt.Errorf("Normalize: %w: cannot detect a supported conversation structure; provide a sample of the format so the parser can be extended", ErrUnsupportedSchema)
	}
	for i := range convs {
		if convs[i].Turns == nil {
			convs[i].Turns = []Turn{}
		}
	}
	return convs, nil
}

// NormalizeBytes parses data and calls Normalize.
func NormalizeBytes(data []byte, fallbackTitle string) ([]Conversation, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("NormalizeBytes: %w", ErrInvalidJSON)
	}
	return Normalize(gjson.ParseBytes(data), fallbackTitle)
}

func normalizeRoot(doc gjson.Result, fallbackTitle string) []Conversation {
	switch {
	case doc.IsArray():
		if LooksLikeMessageList(doc) {
			return []Conversation{{Title: fallbackTitle, Turns: turnsFromMessages(doc.Array()), FallbackTitle: true}}
		}
		return conversationsFromList(doc, fallbackTitle)

	case doc.IsObject():
		for _, key := range collectionKeys {
			v := field(doc, key)
			if !v.IsArray() {
				continue
			}
			if LooksLikeMessageList(v) {
				conv := titled(doc, fallbackTitle)
				conv.Turns = turnsFromMessages(v.Array())
				return []Conversation{conv}
			}
			if nested := conversationsFromList(v, fallbackTitle); len(nested) > 0 {
				return nested
			}
		}

		if single := conversationFromObject(doc, fallbackTitle); len(single.Turns) > 0 {
			return []Conversation{single}
		}
		if LooksLikeMessage(doc) {
			return []Conversation{{Title: fallbackTitle, Turns: TurnsFromMessage(doc), FallbackTitle: true}}
		}
	}
	return nil
}

func conversationsFromList(list gjson.Result, fallbackTitle string) []Conversation {
	var convs []Conversation
	for i, item := range list.Array() {
		itemTitle := fmt.Sprintf("%s-%d", fallbackTitle, i+1)
		switch {
		case item.IsObject():
			convs = append(convs, conversationFromObject(item, itemTitle))
		case LooksLikeMessageList(item):
			convs = append(convs, Conversation{Title: itemTitle, Turns: turnsFromMessages(item.Array()), FallbackTitle: true})
		}
	}
	return convs
}

func titled(obj gjson.Result, fallbackTitle string) Conversation {
	for _, key := range titleKeys {
		if v := field(obj, key); v.Type == gjson.String {
			if title := strings.TrimSpace(v.Str); title != "" {
				return Conversation{Title: title}
			}
		}
	}
	return Conversation{Title: fallbackTitle, FallbackTitle: true}
}

func conversationFromObject(obj gjson.Result, fallbackTitle string) Conversation {
	conv := titled(obj, fallbackTitle)
	var turns []Turn
	for _, s := range additiveStrategies {
		turns = append(turns, s.extract(obj)...)
	}
	for _, s := range fallbackStrategies {
		if len(turns) > 0 {
			break
		}
		turns = s.extract(obj)
	}
	conv.Turns = turns
	return conv
}

func mappingField(obj gjson.Result) []Turn {
	if m := field(obj, "mapping"); m.IsObject() {
		return turnsFromMapping(m)
	}
	return nil
}

func messageListField(obj gjson.Result) []Turn {
	for _, key := range messageListKeys {
		if v := field(obj, key); LooksLikeMessageList(v) {
			return turnsFromMessages(v.Array())
		}
	}
	return nil
}

func historyField(obj gjson.Result) []Turn {
	return turnsFromHistory(field(obj, "history"))
}

func chatField(obj gjson.Result) []Turn {
	return turnsFromChatContainer(field(obj, "chat"))
}

// conversationField handles a "conversation" value, which is either a message list or a
// chat-like container.
func conversationField(obj gjson.Result) []Turn {
	return turnsFromChatContainer(field(obj, "conversation"))
}

func conversationsListField(obj gjson.Result) []Turn {
	if v := field(obj, "conversations"); LooksLikeMessageList(v) {
		return turnsFromMessages(v.Array())
	}
	return nil
}

// turnsFromChatContainer reads a chat container: a message list, an object holding messages
// or history, or a single bare message.
func turnsFromChatContainer(chat gjson.Result) []Turn {
	if LooksLikeMessageList(chat) {
		return turnsFromMessages(chat.Array())
	}
	if !chat.IsObject() {
		return nil
	}
	var turns []Turn
	if msgs := field(chat, "messages"); LooksLikeMessageList(msgs) {
		turns = turnsFromMessages(msgs.Array())
	}
	if len(turns) == 0 && has(chat, "history") {
		turns = turnsFromHistory(field(chat, "history"))
	}
	if len(turns) == 0 && LooksLikeMessage(chat) {
		turns = TurnsFromMessage(chat)
	}
	return turns
}
