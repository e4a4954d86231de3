// Package chat defines the model abstraction that backend adapters plug
// into. It holds the conversation message types, the request and response
// envelopes, the streaming event type, and the Model interface. Adapters
// (e.g., glm) translate between these types and their backend protocol,
// keeping protocol details invisible to callers.
package chat
