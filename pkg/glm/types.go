package glm

// Model API request/response types (internal to the GLM adapter).
// These mirror the v3 model API wire format.

// Backend role strings. The prompt list only accepts these two values.
const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// invokeRequest is the request body for the invoke endpoint.
type invokeRequest struct {
	Prompt      []promptMessage `json:"prompt"`
	Temperature *float64        `json:"temperature,omitempty"`
	TopP        *float64        `json:"top_p,omitempty"`
	RequestID   string          `json:"request_id,omitempty"`
}

// promptMessage is a single turn in the backend's prompt format.
type promptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// invokeResponse is the non-streaming response envelope.
type invokeResponse struct {
	Code    int         `json:"code"`
	Msg     string      `json:"msg"`
	Success bool        `json:"success"`
	Data    *invokeData `json:"data"`
}

// invokeData is the payload of a successful invoke response.
type invokeData struct {
	RequestID  string          `json:"request_id"`
	TaskID     string          `json:"task_id"`
	TaskStatus string          `json:"task_status"`
	Choices    []promptMessage `json:"choices"`
	Usage      *invokeUsage    `json:"usage,omitempty"`
}

// invokeUsage holds token counts from the backend.
type invokeUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// errorResponse is the error envelope the backend returns on failures.
// It shares the top-level shape of invokeResponse.
type errorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
