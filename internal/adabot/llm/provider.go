// Package llm provides the text-completion gateway the bot relays
// qualifying turns to.
//
// The orchestrator assembles the full prompt sequence (system instruction,
// remembered turns, current user message) and hands it over as-is; this
// package only speaks the wire protocol. A completion may legitimately come
// back empty — callers decide what an empty reply means.
package llm

import "context"

// Role values used in prompt messages. They match the chat-completions wire
// format directly.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in the prompt sequence sent to the model.
type Message struct {
	Role    string
	Content string
}

// Provider produces a text completion for an ordered prompt sequence.
//
// Implementations must be safe for concurrent use. A transport error, an API
// error payload, or a non-success HTTP status all surface as a non-nil error;
// callers treat every failure identically so nothing internal leaks to end
// users.
type Provider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
