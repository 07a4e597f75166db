// internal/ai/ports.go
package ai

import "context"

// Replier is the external text-generation step. It sees the conversation only
// through the instruction bundle and the turn history; it knows nothing about
// leads, tenants or the database.
type Replier interface {
	Reply(ctx context.Context, instructionBundle string, history []Turn) (string, error)
}

// Turn is one prior message in generation-model terms.
type Turn struct {
	Role string // "user" | "assistant" | "system"
	Text string
}
