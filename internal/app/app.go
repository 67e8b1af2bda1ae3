// Package app wires the session store, the response pipeline, and local
// persistence together, and exposes the intents the UI layer emits.
package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"xiaozhou/internal/chat"
	"xiaozhou/internal/client"
	"xiaozhou/internal/config"
	"xiaozhou/internal/logging"
	"xiaozhou/internal/persona"
	"xiaozhou/internal/storage"
)

// Streamer is the response pipeline seen by the orchestrator.
type Streamer interface {
	StreamReply(ctx context.Context, history []chat.Message, pc persona.Config, enableSearch bool) <-chan client.Event
}

// Send rejection reasons.
var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a reply is already streaming for this session")
)

// turn is the cancellation handle of one in-flight stream. Handles are
// compared by identity on cleanup so a finished turn can never tear down a
// successor that reused its session slot.
type turn struct {
	cancel context.CancelFunc
}

// App is the application core: it owns persona selection state and the
// per-session cancellation handles, and folds pipeline events into the
// store. The store itself stays the single source of truth for sessions.
type App struct {
	store    *chat.Store
	streamer Streamer
	storage  *storage.Manager

	mu           sync.Mutex
	personas     []persona.Config
	activeID     string
	enableSearch bool
	turns        map[string]*turn

	// wg tracks in-flight reconcile loops, for tests and shutdown.
	wg sync.WaitGroup
}

// New creates the application core and loads persisted state. mgr may be
// nil to run without persistence.
func New(cfg *config.Config, streamer Streamer, mgr *storage.Manager) *App {
	personas := persona.List()
	a := &App{
		store:        chat.NewStore(),
		streamer:     streamer,
		storage:      mgr,
		personas:     personas,
		activeID:     personas[0].ID,
		enableSearch: cfg.Chat.EnableSearch,
		turns:        make(map[string]*turn),
	}

	if mgr != nil {
		if sessions := mgr.LoadSessions(); len(sessions) > 0 {
			a.store.ReplaceAll(sessions)
		}
		a.personas = persona.ApplyKeyOverrides(a.personas, mgr.LoadKeyOverrides())
	}
	return a
}

// Store returns the session store for snapshot reads and event
// subscription.
func (a *App) Store() *chat.Store {
	return a.store
}

// --- Persona intents ---

// Personas returns the catalog with current key overrides applied.
func (a *App) Personas() []persona.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]persona.Config, len(a.personas))
	copy(out, a.personas)
	return out
}

// ActivePersona returns the currently selected persona.
func (a *App) ActivePersona() persona.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resolveLocked(a.activeID)
}

func (a *App) resolveLocked(id string) persona.Config {
	for _, p := range a.personas {
		if p.ID == id {
			return p
		}
	}
	return a.personas[0]
}

// SelectPersona changes the active persona. Unknown ids degrade to the
// first catalog entry.
func (a *App) SelectPersona(id string) {
	a.mu.Lock()
	a.activeID = a.resolveLocked(id).ID
	a.mu.Unlock()
}

// UpdateCredential sets or clears a persona's user API key and persists
// the overrides.
func (a *App) UpdateCredential(id, key string) {
	a.mu.Lock()
	for i := range a.personas {
		if a.personas[i].ID == id {
			a.personas[i].UserAPIKey = key
			break
		}
	}
	overrides := persona.ExtractKeyOverrides(a.personas)
	mgr := a.storage
	a.mu.Unlock()

	if mgr != nil {
		if err := mgr.SaveKeyOverrides(overrides); err != nil {
			logging.Warn("failed to save key overrides", "error", err)
		}
	}
}

// ReloadKeyOverrides applies externally edited overrides, keeping every
// other persona field from the catalog.
func (a *App) ReloadKeyOverrides(overrides []persona.KeyOverride) {
	a.mu.Lock()
	defer a.mu.Unlock()
	refreshed := persona.ApplyKeyOverrides(persona.List(), overrides)
	a.personas = refreshed
}

// ToggleSearch flips the web-search toggle and returns the new state.
func (a *App) ToggleSearch() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enableSearch = !a.enableSearch
	return a.enableSearch
}

// SearchEnabled reports the search toggle state.
func (a *App) SearchEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enableSearch
}

// --- Session intents ---

// NewSession creates and selects a fresh session bound to the active
// persona.
func (a *App) NewSession() chat.ChatSession {
	s := a.store.NewSession(a.ActivePersona().ID)
	a.save()
	return s
}

// SelectSession makes a session active.
func (a *App) SelectSession(id string) bool {
	return a.store.SelectSession(id)
}

// DeleteSession removes a session, cancelling its in-flight turn if any.
// Events still queued for the deleted session fall into the store's no-op
// path.
func (a *App) DeleteSession(id string) {
	a.mu.Lock()
	if t, ok := a.turns[id]; ok {
		t.cancel()
		delete(a.turns, id)
	}
	a.mu.Unlock()

	a.store.DeleteSession(id)
	a.save()
}

// --- The turn ---

// Send starts a turn on the active session, creating one when none is
// selected. It appends the user message and the model placeholder, then
// streams the reply in the background. A second send into a session with a
// turn already in flight is rejected; sends into different sessions may
// overlap.
func (a *App) Send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	session, ok := a.store.ActiveSession()
	if !ok {
		session = a.store.NewSession(a.ActivePersona().ID)
	}

	if !a.store.BeginTurn(session.ID) {
		return ErrBusy
	}

	userMsg := chat.NewUserMessage(text)
	a.store.AppendUserMessage(session.ID, userMsg)

	// Snapshot after the user message but before the placeholder: this is
	// the history the pipeline sees.
	snapshot, _ := a.store.Session(session.ID)

	placeholder := chat.NewModelPlaceholder()
	a.store.AppendPlaceholder(session.ID, placeholder)

	ctx, cancel := context.WithCancel(context.Background())
	handle := &turn{cancel: cancel}
	a.mu.Lock()
	a.turns[session.ID] = handle
	pc := a.resolveLocked(a.activeID)
	enableSearch := a.enableSearch
	a.mu.Unlock()

	events := a.streamer.StreamReply(ctx, snapshot.Messages, pc, enableSearch)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.reconcile(session.ID, placeholder.ID, events)

		// Retire this turn's handle before the gate opens: once EndTurn
		// runs, the session slot may already belong to a new turn, and
		// cancelling that one here would kill its stream silently.
		a.mu.Lock()
		if a.turns[session.ID] == handle {
			delete(a.turns, session.ID)
		}
		a.mu.Unlock()
		cancel()

		a.store.EndTurn(session.ID)
		a.save()
	}()

	return nil
}

// reconcile folds pipeline events into the store. Every event re-resolves
// its target by id inside the store, so a session deleted mid-stream makes
// the remaining events harmless. It returns when the channel closes,
// whether the stream completed, errored, or was cancelled.
func (a *App) reconcile(sessionID, messageID string, events <-chan client.Event) {
	for ev := range events {
		switch ev.Type {
		case client.EventChunk:
			a.store.AppendChunk(sessionID, messageID, ev.Text)
		case client.EventThinking:
			a.store.AppendThinking(sessionID, messageID, ev.Text)
		case client.EventGrounding:
			a.store.AddGroundingSources(sessionID, messageID, ev.Sources)
		case client.EventError:
			a.store.MarkError(sessionID, messageID, ev.Text)
		case client.EventComplete:
			// Accumulated text stands as the final reply.
		}
	}
}

// Wait blocks until all in-flight turns have settled. Used by tests and
// shutdown.
func (a *App) Wait() {
	a.wg.Wait()
}

// save persists the session list, best effort.
func (a *App) save() {
	if a.storage == nil {
		return
	}
	if err := a.storage.SaveSessions(a.store.Sessions()); err != nil {
		logging.Warn("failed to save history", "error", err)
	}
}
