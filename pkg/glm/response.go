package glm

import (
	"encoding/json"
	"strings"

	"github.com/glmware/glmbridge/pkg/chat"
)

// translateResponse converts a successful invoke response into the
// abstraction layer's Response shape. The first choice becomes the
// top-level content.
func translateResponse(resp *invokeResponse) *chat.Response {
	out := &chat.Response{}

	data := resp.Data
	if data == nil {
		return out
	}

	out.RequestID = data.RequestID
	out.TaskID = data.TaskID
	out.TaskStatus = data.TaskStatus

	for _, c := range data.Choices {
		out.Choices = append(out.Choices, chat.Message{
			Type:    chat.MessageTypeAI,
			Role:    c.Role,
			Content: unquoteContent(c.Content),
		})
	}
	if len(out.Choices) > 0 {
		out.Content = out.Choices[0].Content
	}

	if data.Usage != nil {
		out.Usage = &chat.Usage{
			PromptTokens:     data.Usage.PromptTokens,
			CompletionTokens: data.Usage.CompletionTokens,
			TotalTokens:      data.Usage.TotalTokens,
		}
	}

	return out
}

// unquoteContent undoes the backend's habit of returning choice content as
// a JSON-encoded string (wrapped in quotes with escapes). Content that is
// not a valid JSON string is returned unchanged.
func unquoteContent(content string) string {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) < 2 || trimmed[0] != '"' {
		return content
	}

	var s string
	if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
		return content
	}
	return s
}
