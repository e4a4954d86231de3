// Package glm implements the chat.Model interface for GLM-family backends
// speaking the v3 model API. It translates between the abstraction layer's
// message types and the backend's prompt format, signs the short-lived
// request token, and handles both the JSON and SSE response branches,
// including error mapping.
package glm
