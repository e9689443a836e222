package ai

import "context"

// Message is one turn of a completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation roles understood by all backends.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// CompletionRequest describes a single completion call.
// Temperature is passed through to the backend unmodified.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
}

// Completer sends a conversation to an LLM backend and returns the generated
// text. All backends (Gemini native, OpenAI-compatible) implement this
// interface. Responses are not interpreted beyond extracting the first
// choice's message content.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
