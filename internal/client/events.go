// Package client implements the response pipeline against the Gemini API
// and the classifier that turns transport faults into user-facing text.
package client

import "xiaozhou/internal/chat"

// EventType identifies a pipeline event.
type EventType int

const (
	// EventChunk carries incremental reply text. Consumers append, never
	// replace.
	EventChunk EventType = iota

	// EventThinking carries incremental reasoning text for personas with
	// thinking support.
	EventThinking

	// EventGrounding carries the citations of one fragment only, not a
	// cumulative set. Deduplication is the consumer's responsibility.
	EventGrounding

	// EventComplete is the success terminal event.
	EventComplete

	// EventError is the failure terminal event. Text holds a formatted
	// user-facing explanation, ready for the transcript.
	EventError
)

// Event is one pipeline emission. Per StreamReply invocation, zero or more
// chunk/thinking/grounding events are followed by exactly one terminal
// event (complete xor error), after which the channel closes.
type Event struct {
	Type    EventType
	Text    string
	Sources []chat.GroundingSource
}
