package glm

import (
	"fmt"
	"log/slog"

	"github.com/glmware/glmbridge/pkg/chat"
)

// translatePrompt converts abstraction-layer messages into the backend's
// prompt list. System and tool messages are rejected: the model API only
// accepts user and assistant turns. Generic messages with a role outside
// that set are passed through with a warning.
func translatePrompt(messages []chat.Message) ([]promptMessage, error) {
	prompt := make([]promptMessage, 0, len(messages))

	for i, m := range messages {
		var role string
		switch m.Type {
		case chat.MessageTypeHuman:
			role = roleUser
		case chat.MessageTypeAI:
			role = roleAssistant
		case chat.MessageTypeSystem:
			return nil, chat.NewInvalidRequestError("messages",
				fmt.Sprintf("message %d: system messages are not supported by the model API", i))
		case chat.MessageTypeTool:
			return nil, chat.NewInvalidRequestError("messages",
				fmt.Sprintf("message %d: tool messages are not supported by the model API", i))
		case chat.MessageTypeGeneric:
			role = m.Role
			if role != roleUser && role != roleAssistant {
				slog.Warn("unrecognized message role, passing through",
					"role", role,
					"index", i,
				)
			}
		default:
			return nil, chat.NewInvalidRequestError("messages",
				fmt.Sprintf("message %d: unsupported message type %q", i, m.Type))
		}

		prompt = append(prompt, promptMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	return prompt, nil
}

// buildInvokeRequest assembles the request body from a chat.Request,
// falling back to the adapter defaults for sampling parameters and
// generating a request ID when the caller did not supply one.
func buildInvokeRequest(req *chat.Request, cfg *Config) (*invokeRequest, error) {
	prompt, err := translatePrompt(req.Messages)
	if err != nil {
		return nil, err
	}

	ir := &invokeRequest{
		Prompt:      prompt,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		RequestID:   req.RequestID,
	}

	if req.Temperature != nil {
		ir.Temperature = req.Temperature
	}
	if req.TopP != nil {
		ir.TopP = req.TopP
	}
	if ir.RequestID == "" {
		ir.RequestID = chat.NewRequestID()
	}

	return ir, nil
}
