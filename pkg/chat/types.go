package chat

// Request is the backend-facing generation request. It contains only the
// information an adapter needs, stripped of transport concerns.
type Request struct {
	// Messages is the ordered conversation history, oldest first.
	Messages []Message `json:"messages"`

	// Temperature overrides the adapter's default sampling temperature.
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP overrides the adapter's default nucleus sampling value.
	TopP *float64 `json:"top_p,omitempty"`

	// RequestID is an optional caller-supplied correlation ID. Adapters
	// generate one when empty.
	RequestID string `json:"request_id,omitempty"`

	// Stream requests incremental delivery of the response.
	Stream bool `json:"stream,omitempty"`
}

// Response is the backend's complete non-streaming answer.
type Response struct {
	// Content is the text of the first returned choice.
	Content string `json:"content"`

	// Choices holds every returned message, in backend order.
	Choices []Message `json:"choices,omitempty"`

	// RequestID echoes the correlation ID the backend recorded.
	RequestID string `json:"request_id,omitempty"`

	// TaskID is the backend's task identifier for this generation.
	TaskID string `json:"task_id,omitempty"`

	// TaskStatus is the backend's terminal task state (e.g., "SUCCESS").
	TaskStatus string `json:"task_status,omitempty"`

	// Usage holds token counts when the backend reports them.
	Usage *Usage `json:"usage,omitempty"`
}

// Usage holds token counts reported by the backend. Values are passed
// through unchanged; no accounting happens in this layer.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
