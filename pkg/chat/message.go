package chat

// MessageType classifies who produced a conversation message.
type MessageType string

const (
	// MessageTypeHuman is a message written by the end user.
	MessageTypeHuman MessageType = "human"

	// MessageTypeAI is a message produced by the model.
	MessageTypeAI MessageType = "ai"

	// MessageTypeSystem is a system instruction. Not every backend
	// supports these; adapters reject them when theirs does not.
	MessageTypeSystem MessageType = "system"

	// MessageTypeTool is a tool/function result message.
	MessageTypeTool MessageType = "tool"

	// MessageTypeGeneric is a message with a free-form role carried in
	// the Role field.
	MessageTypeGeneric MessageType = "generic"
)

// Message is a single conversation turn in the abstraction layer's format.
type Message struct {
	// Type classifies the message sender.
	Type MessageType `json:"type"`

	// Content is the text content of the message.
	Content string `json:"content"`

	// Role holds the custom role for MessageTypeGeneric messages.
	// Ignored for all other types.
	Role string `json:"role,omitempty"`

	// Name optionally identifies the sender.
	Name string `json:"name,omitempty"`
}

// NewHumanMessage returns a user message with the given content.
func NewHumanMessage(content string) Message {
	return Message{Type: MessageTypeHuman, Content: content}
}

// NewAIMessage returns a model message with the given content.
func NewAIMessage(content string) Message {
	return Message{Type: MessageTypeAI, Content: content}
}

// NewSystemMessage returns a system instruction message.
func NewSystemMessage(content string) Message {
	return Message{Type: MessageTypeSystem, Content: content}
}

// NewGenericMessage returns a message with a custom role.
func NewGenericMessage(role, content string) Message {
	return Message{Type: MessageTypeGeneric, Role: role, Content: content}
}
