// Package llm talks to the language-model backend serving chat messages.
package llm

import "context"

// Roles used in provider conversations.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries the conversation sent to the backend, oldest turn first.
type Request struct {
	Messages []Message
}

// Provider produces a completion for a conversation.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}
