// Package chat contains the session data model and the store that owns it.
package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents the sender of a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// GroundingSource is a web citation attached to a model reply when search
// augmentation was used. Identity is the URI.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Message is a single turn entry. User messages are immutable after
// creation; model messages start empty and are mutated in place by the
// reconciler until the turn completes or errors, then frozen.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	// IsError marks a model message that carries a formatted failure
	// explanation instead of a reply. Errored messages are UI artifacts
	// only and are never sent upstream as context.
	IsError bool `json:"isError,omitempty"`

	// GroundingSources accumulate across grounding events without
	// duplicates, keyed by URI, preserving first-seen order.
	GroundingSources []GroundingSource `json:"groundingSources,omitempty"`

	// ThinkingLog collects streamed reasoning text for personas that
	// support thinking.
	ThinkingLog string `json:"thinkingLog,omitempty"`
}

// NewUserMessage creates an immutable user message.
func NewUserMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewModelPlaceholder creates the empty model message that streaming
// chunks will be folded into.
func NewModelPlaceholder() Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleModel,
		Timestamp: time.Now(),
	}
}

// Eligible reports whether the message may be sent upstream as
// conversation context: not errored and with non-blank text.
func (m Message) Eligible() bool {
	return !m.IsError && strings.TrimSpace(m.Text) != ""
}

// clone returns a deep copy of the message.
func (m Message) clone() Message {
	out := m
	if m.GroundingSources != nil {
		out.GroundingSources = make([]GroundingSource, len(m.GroundingSources))
		copy(out.GroundingSources, m.GroundingSources)
	}
	return out
}

// titleLimit is the maximum rune length of a derived session title.
const titleLimit = 15

// DeriveTitle derives a session title from its first user message,
// truncating to 15 runes plus an ellipsis when longer.
func DeriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleLimit {
		return text
	}
	return string(runes[:titleLimit]) + "..."
}
