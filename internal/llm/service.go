package llm

import "context"

// Message is one role-tagged message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries one chat-completion call: role-tagged prompt plus sampling
// parameters. The model identifier is fixed by client configuration.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Service defines the interface for remote text-generation calls. Exactly one
// outbound network call per Complete invocation; no retries.
type Service interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Role constants for completion messages.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)
