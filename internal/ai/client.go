// Package ai provides the chat client used to classify and summarize daily
// work, plus the analyzer that turns diff results into structured analyses.
package ai

import (
	"context"
	"errors"
)

// ErrNoAPIKey is returned when a request is attempted without credentials.
var ErrNoAPIKey = errors.New("AI API key not configured")

// Message is a chat message in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the interface to the chat-completion collaborator. The scheduler
// treats it as an opaque request/response function.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
