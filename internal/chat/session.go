package chat

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is one conversation: an append-only ordered message list plus
// display metadata. Sessions are value types inside the store; accessors
// hand out deep copies so observers always see a consistent snapshot.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	UpdatedAt time.Time `json:"updatedAt"`
	PersonaID string    `json:"modelId"`
}

// NewChatSession creates an empty session bound to a persona.
func NewChatSession(personaID string) ChatSession {
	return ChatSession{
		ID:        uuid.NewString(),
		Title:     "New chat",
		Messages:  make([]Message, 0),
		UpdatedAt: time.Now(),
		PersonaID: personaID,
	}
}

// clone returns a deep copy of the session.
func (s ChatSession) clone() ChatSession {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		out.Messages[i] = m.clone()
	}
	return out
}

// message returns a pointer into the session's message slice, or nil.
func (s *ChatSession) message(id string) *Message {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			return &s.Messages[i]
		}
	}
	return nil
}
