package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
	"github.com/theimaginaryfoundation/convo-md/migration/fileutils"
	"github.com/theimaginaryfoundation/convo-md/migration/normalize"
	"github.com/theimaginaryfoundation/convo-md/migration/provider"
	"github.com/tidwall/gjson"
)

const (
	maxTitleTurns        = 12
	maxTitleUserChars    = 400
	maxTitleAnswerChars  = 600
	maxTitleOutputTokens = 1000
)

type openAITitleSuggester struct {
	client   *openai.Client
	model    string
	language string
}

type titleRequest struct {
	Language   string         `json:"language"`
	TotalTurns int            `json:"total_turns"`
	Turns      []turnForTitle `json:"turns"`
}

type turnForTitle struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type titleResponse struct {
	Title string `json:"title"`
}

var titleSchema = provider.GenerateSchema[titleResponse]()

func (s openAITitleSuggester) SuggestTitle(ctx context.Context, conv normalize.Conversation) (string, error) {
	if s.client == nil {
		return "", errors.New("openAITitleSuggester: client is nil")
	}
	if s.model == "" {
		return "", errors.New("openAITitleSuggester: model is empty")
	}

	payload, err := json.Marshal(buildTitleRequest(conv, s.language))
	if err != nil {
		return "", err
	}

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "ConversationTitle",
			Schema:      titleSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Conversation title JSON"),
			Type:        "json_schema",
		},
	}

	input := []responses.ResponseInputItemUnionParam{
		responses.ResponseInputItemParamOfMessage(string(payload), responses.EasyInputMessageRoleUser),
	}
	params := responses.ResponseNewParams{
		Model:           s.model,
		MaxOutputTokens: openai.Int(maxTitleOutputTokens),
		Instructions:    openai.String(conversationTitlePrompt),
		ServiceTier:     responses.ResponseNewParamsServiceTierFlex,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: input,
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := provider.CallWithRetry(ctx, s.client, params)
	if err != nil {
		return "", err
	}

	return decodeTitle(resp.OutputText())
}

// decodeTitle reads the title field of a model reply. Text around the JSON object is
// ignored.
func decodeTitle(output string) (string, error) {
	s := strings.TrimSpace(output)
	if s == "" {
		return "", errors.New("decodeTitle: empty model output")
	}
	if !gjson.Valid(s) {
		start := strings.IndexByte(s, '{')
		end := strings.LastIndexByte(s, '}')
		if start == -1 || end <= start || !gjson.Valid(s[start:end+1]) {
			return "", fmt.Errorf("decodeTitle: no JSON object in model output (len=%d)", len(s))
		}
		s = s[start : end+1]
	}
	title := gjson.Get(s, "title")
	if title.Type != gjson.String {
		return "", fmt.Errorf("decodeTitle: title is %s, want string", title.Type)
	}
	return title.Str, nil
}

func buildTitleRequest(conv normalize.Conversation, language string) titleRequest {
	req := titleRequest{
		Language:   language,
		TotalTurns: len(conv.Turns),
		Turns:      make([]turnForTitle, 0, min(len(conv.Turns), maxTitleTurns)),
	}
	for _, t := range conv.Turns {
		if len(req.Turns) == maxTitleTurns {
			break
		}
		limit := maxTitleAnswerChars
		if t.Role == normalize.RoleUser {
			limit = maxTitleUserChars
		}
		req.Turns = append(req.Turns, turnForTitle{
			Role: string(t.Role),
			Text: fileutils.Truncate(t.Text, limit),
		})
	}
	return req
}
