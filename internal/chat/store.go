package chat

import (
	"sort"
	"sync"
	"time"
)

// EventKind identifies a store change notification.
type EventKind int

const (
	// SessionListChanged fires when sessions are created, deleted, or
	// reordered by activity.
	SessionListChanged EventKind = iota
	// ActiveSessionChanged fires when the selected session changes.
	ActiveSessionChanged
	// MessageUpdated fires when a single message mutates in place.
	MessageUpdated
)

// Event is a store change notification delivered to the UI layer.
type Event struct {
	Kind      EventKind
	SessionID string
	MessageID string
}

// ChangeHandler receives store events. It is called outside the store lock.
type ChangeHandler func(Event)

// Store is the single owner and only writer of all chat sessions. The
// response pipeline never holds references into it; reconciliation
// re-resolves the target session and message by id on every event, so a
// target deleted mid-stream is a benign no-op rather than a fault.
type Store struct {
	mu         sync.RWMutex
	sessions   []ChatSession
	activeID   string
	processing map[string]bool
	onChange   ChangeHandler
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions:   make([]ChatSession, 0),
		processing: make(map[string]bool),
	}
}

// SetChangeHandler registers the store event handler.
func (st *Store) SetChangeHandler(h ChangeHandler) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.onChange = h
}

// notify delivers events after the lock is released. The handler may call
// back into the store.
func (st *Store) notify(events ...Event) {
	st.mu.RLock()
	h := st.onChange
	st.mu.RUnlock()
	if h == nil {
		return
	}
	defer func() {
		// A panicking handler must not take the store down with it.
		_ = recover()
	}()
	for _, ev := range events {
		h(ev)
	}
}

// find returns a pointer into the session slice. Caller must hold mu.
func (st *Store) find(id string) *ChatSession {
	for i := range st.sessions {
		if st.sessions[i].ID == id {
			return &st.sessions[i]
		}
	}
	return nil
}

// NewSession creates a session bound to the persona, makes it active, and
// returns a snapshot of it.
func (st *Store) NewSession(personaID string) ChatSession {
	s := NewChatSession(personaID)

	st.mu.Lock()
	st.sessions = append(st.sessions, s)
	st.activeID = s.ID
	st.mu.Unlock()

	st.notify(Event{Kind: SessionListChanged}, Event{Kind: ActiveSessionChanged, SessionID: s.ID})
	return s.clone()
}

// DeleteSession removes a session. Deleting the active session clears the
// active selection. Unknown ids are ignored.
func (st *Store) DeleteSession(id string) {
	st.mu.Lock()
	idx := -1
	for i := range st.sessions {
		if st.sessions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		st.mu.Unlock()
		return
	}
	st.sessions = append(st.sessions[:idx], st.sessions[idx+1:]...)
	delete(st.processing, id)
	cleared := st.activeID == id
	if cleared {
		st.activeID = ""
	}
	st.mu.Unlock()

	events := []Event{{Kind: SessionListChanged}}
	if cleared {
		events = append(events, Event{Kind: ActiveSessionChanged})
	}
	st.notify(events...)
}

// SelectSession makes the given session active. Returns false if it does
// not exist.
func (st *Store) SelectSession(id string) bool {
	st.mu.Lock()
	if st.find(id) == nil {
		st.mu.Unlock()
		return false
	}
	changed := st.activeID != id
	st.activeID = id
	st.mu.Unlock()

	if changed {
		st.notify(Event{Kind: ActiveSessionChanged, SessionID: id})
	}
	return true
}

// ActiveID returns the id of the active session, or "".
func (st *Store) ActiveID() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.activeID
}

// ActiveSession returns a snapshot of the active session.
func (st *Store) ActiveSession() (ChatSession, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if s := st.find(st.activeID); s != nil {
		return s.clone(), true
	}
	return ChatSession{}, false
}

// Session returns a snapshot of the session with the given id.
func (st *Store) Session(id string) (ChatSession, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if s := st.find(id); s != nil {
		return s.clone(), true
	}
	return ChatSession{}, false
}

// Sessions returns snapshots of all sessions ordered by last activity,
// newest first.
func (st *Store) Sessions() []ChatSession {
	st.mu.RLock()
	out := make([]ChatSession, len(st.sessions))
	for i, s := range st.sessions {
		out[i] = s.clone()
	}
	st.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// ReplaceAll swaps in a persisted session list, keeping no selection.
func (st *Store) ReplaceAll(sessions []ChatSession) {
	st.mu.Lock()
	st.sessions = make([]ChatSession, len(sessions))
	for i, s := range sessions {
		st.sessions[i] = s.clone()
	}
	st.activeID = ""
	st.processing = make(map[string]bool)
	st.mu.Unlock()

	st.notify(Event{Kind: SessionListChanged}, Event{Kind: ActiveSessionChanged})
}

// AppendUserMessage appends a user message to a session, deriving the
// session title from the first message. Unknown sessions are ignored.
func (st *Store) AppendUserMessage(sessionID string, msg Message) {
	st.mu.Lock()
	s := st.find(sessionID)
	if s == nil {
		st.mu.Unlock()
		return
	}
	if len(s.Messages) == 0 {
		s.Title = DeriveTitle(msg.Text)
	}
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
	st.mu.Unlock()

	st.notify(
		Event{Kind: SessionListChanged},
		Event{Kind: MessageUpdated, SessionID: sessionID, MessageID: msg.ID},
	)
}

// AppendPlaceholder appends the empty model message for an in-flight turn.
func (st *Store) AppendPlaceholder(sessionID string, msg Message) {
	st.mu.Lock()
	s := st.find(sessionID)
	if s == nil {
		st.mu.Unlock()
		return
	}
	s.Messages = append(s.Messages, msg)
	st.mu.Unlock()

	st.notify(Event{Kind: MessageUpdated, SessionID: sessionID, MessageID: msg.ID})
}

// BeginTurn acquires the per-session processing gate. It fails when the
// session is unknown or a turn is already in flight; turns in different
// sessions are independent.
func (st *Store) BeginTurn(sessionID string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.find(sessionID) == nil || st.processing[sessionID] {
		return false
	}
	st.processing[sessionID] = true
	return true
}

// EndTurn releases the processing gate. Safe to call for deleted sessions.
func (st *Store) EndTurn(sessionID string) {
	st.mu.Lock()
	delete(st.processing, sessionID)
	st.mu.Unlock()
}

// Processing reports whether a turn is in flight for the session.
func (st *Store) Processing(sessionID string) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.processing[sessionID]
}

// AppendChunk appends streamed text to the target message. A missing
// session or message is a no-op: the session may have been deleted while
// the stream was suspended.
func (st *Store) AppendChunk(sessionID, messageID, text string) {
	st.mu.Lock()
	s := st.find(sessionID)
	if s == nil {
		st.mu.Unlock()
		return
	}
	m := s.message(messageID)
	if m == nil {
		st.mu.Unlock()
		return
	}
	m.Text += text
	s.UpdatedAt = time.Now()
	st.mu.Unlock()

	st.notify(Event{Kind: MessageUpdated, SessionID: sessionID, MessageID: messageID})
}

// AppendThinking appends streamed reasoning text to the target message.
func (st *Store) AppendThinking(sessionID, messageID, text string) {
	st.mu.Lock()
	s := st.find(sessionID)
	if s == nil {
		st.mu.Unlock()
		return
	}
	m := s.message(messageID)
	if m == nil {
		st.mu.Unlock()
		return
	}
	m.ThinkingLog += text
	st.mu.Unlock()

	st.notify(Event{Kind: MessageUpdated, SessionID: sessionID, MessageID: messageID})
}

// AddGroundingSources appends the sources not already present on the
// message, keyed by URI, preserving prior order. The pipeline reports each
// fragment's citations as-is; deduplication happens here.
func (st *Store) AddGroundingSources(sessionID, messageID string, sources []GroundingSource) {
	st.mu.Lock()
	s := st.find(sessionID)
	if s == nil {
		st.mu.Unlock()
		return
	}
	m := s.message(messageID)
	if m == nil {
		st.mu.Unlock()
		return
	}

	seen := make(map[string]bool, len(m.GroundingSources))
	for _, g := range m.GroundingSources {
		seen[g.URI] = true
	}
	added := false
	for _, g := range sources {
		if seen[g.URI] {
			continue
		}
		seen[g.URI] = true
		m.GroundingSources = append(m.GroundingSources, g)
		added = true
	}
	st.mu.Unlock()

	if added {
		st.notify(Event{Kind: MessageUpdated, SessionID: sessionID, MessageID: messageID})
	}
}

// MarkError replaces the target message's text with a formatted failure
// explanation and flags it as errored.
func (st *Store) MarkError(sessionID, messageID, formatted string) {
	st.mu.Lock()
	s := st.find(sessionID)
	if s == nil {
		st.mu.Unlock()
		return
	}
	m := s.message(messageID)
	if m == nil {
		st.mu.Unlock()
		return
	}
	m.Text = formatted
	m.IsError = true
	s.UpdatedAt = time.Now()
	st.mu.Unlock()

	st.notify(Event{Kind: MessageUpdated, SessionID: sessionID, MessageID: messageID})
}
