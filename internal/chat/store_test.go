package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSessionBecomesActive(t *testing.T) {
	st := NewStore()
	s := st.NewSession("gemini-flash")

	require.Equal(t, s.ID, st.ActiveID())
	require.Equal(t, "New chat", s.Title)
	require.Equal(t, "gemini-flash", s.PersonaID)

	active, ok := st.ActiveSession()
	require.True(t, ok)
	require.Equal(t, s.ID, active.ID)
}

func TestAppendUserMessageDerivesTitleOnlyFromFirst(t *testing.T) {
	st := NewStore()
	s := st.NewSession("gemini-flash")

	st.AppendUserMessage(s.ID, NewUserMessage("What is the tallest mountain on Earth?"))
	got, ok := st.Session(s.ID)
	require.True(t, ok)
	require.Equal(t, "What is the tal...", got.Title)

	st.AppendUserMessage(s.ID, NewUserMessage("And the second tallest?"))
	got, _ = st.Session(s.ID)
	require.Equal(t, "What is the tal...", got.Title)
	require.Len(t, got.Messages, 2)
}

func TestProcessingGate(t *testing.T) {
	st := NewStore()
	a := st.NewSession("gemini-flash")
	b := st.NewSession("gemini-flash")

	require.True(t, st.BeginTurn(a.ID))
	require.False(t, st.BeginTurn(a.ID), "second turn in the same session must be rejected")
	require.True(t, st.BeginTurn(b.ID), "turns in different sessions are independent")

	st.EndTurn(a.ID)
	require.False(t, st.Processing(a.ID))
	require.True(t, st.Processing(b.ID))
	require.True(t, st.BeginTurn(a.ID))
}

func TestBeginTurnUnknownSession(t *testing.T) {
	st := NewStore()
	require.False(t, st.BeginTurn("nope"))
}

func TestDeleteSessionClearsActiveAndGate(t *testing.T) {
	st := NewStore()
	s := st.NewSession("gemini-flash")
	require.True(t, st.BeginTurn(s.ID))

	st.DeleteSession(s.ID)

	require.Empty(t, st.ActiveID())
	require.False(t, st.Processing(s.ID))
	_, ok := st.Session(s.ID)
	require.False(t, ok)

	// Deleting again is harmless.
	st.DeleteSession(s.ID)
}

func TestSelectSession(t *testing.T) {
	st := NewStore()
	a := st.NewSession("gemini-flash")
	st.NewSession("gemini-flash")

	require.True(t, st.SelectSession(a.ID))
	require.Equal(t, a.ID, st.ActiveID())
	require.False(t, st.SelectSession("nope"))
	require.Equal(t, a.ID, st.ActiveID())
}

func TestReconcileOpsNoOpOnMissingTargets(t *testing.T) {
	st := NewStore()
	s := st.NewSession("gemini-flash")
	msg := NewModelPlaceholder()
	st.AppendPlaceholder(s.ID, msg)

	st.DeleteSession(s.ID)

	// The stream for the deleted session keeps reporting; nothing may
	// panic or resurrect the session.
	st.AppendChunk(s.ID, msg.ID, "late text")
	st.AppendThinking(s.ID, msg.ID, "late thought")
	st.AddGroundingSources(s.ID, msg.ID, []GroundingSource{{URI: "https://a", Title: "a"}})
	st.MarkError(s.ID, msg.ID, "late error")
	st.EndTurn(s.ID)

	_, ok := st.Session(s.ID)
	require.False(t, ok)
}

func TestReconcileOpsNoOpOnUnknownMessage(t *testing.T) {
	st := NewStore()
	s := st.NewSession("gemini-flash")

	st.AppendChunk(s.ID, "missing", "text")
	st.MarkError(s.ID, "missing", "error")

	got, _ := st.Session(s.ID)
	require.Empty(t, got.Messages)
}

func TestAppendChunkAccumulates(t *testing.T) {
	st := NewStore()
	s := st.NewSession("gemini-flash")
	msg := NewModelPlaceholder()
	st.AppendPlaceholder(s.ID, msg)

	st.AppendChunk(s.ID, msg.ID, "Hello, ")
	st.AppendChunk(s.ID, msg.ID, "world")
	st.AppendThinking(s.ID, msg.ID, "step one; ")
	st.AppendThinking(s.ID, msg.ID, "step two")

	got, _ := st.Session(s.ID)
	require.Equal(t, "Hello, world", got.Messages[0].Text)
	require.Equal(t, "step one; step two", got.Messages[0].ThinkingLog)
}

func TestAddGroundingSourcesDedupesByURI(t *testing.T) {
	st := NewStore()
	s := st.NewSession("gemini-flash")
	msg := NewModelPlaceholder()
	st.AppendPlaceholder(s.ID, msg)

	var updates int
	st.SetChangeHandler(func(ev Event) {
		if ev.Kind == MessageUpdated && ev.MessageID == msg.ID {
			updates++
		}
	})

	st.AddGroundingSources(s.ID, msg.ID, []GroundingSource{
		{URI: "https://a", Title: "A"},
		{URI: "https://b", Title: "B"},
	})
	st.AddGroundingSources(s.ID, msg.ID, []GroundingSource{
		{URI: "https://b", Title: "B again"},
		{URI: "https://c", Title: "C"},
	})
	// Fully duplicate batch must not notify.
	st.AddGroundingSources(s.ID, msg.ID, []GroundingSource{
		{URI: "https://a", Title: "A"},
	})

	got, _ := st.Session(s.ID)
	require.Equal(t, []GroundingSource{
		{URI: "https://a", Title: "A"},
		{URI: "https://b", Title: "B"},
		{URI: "https://c", Title: "C"},
	}, got.Messages[0].GroundingSources)
	require.Equal(t, 2, updates)
}

func TestMarkError(t *testing.T) {
	st := NewStore()
	s := st.NewSession("gemini-flash")
	msg := NewModelPlaceholder()
	st.AppendPlaceholder(s.ID, msg)
	st.AppendChunk(s.ID, msg.ID, "partial")

	st.MarkError(s.ID, msg.ID, "**The assistant could not reply**")

	got, _ := st.Session(s.ID)
	require.True(t, got.Messages[0].IsError)
	require.Equal(t, "**The assistant could not reply**", got.Messages[0].Text)
}

func TestSessionsOrderedByActivity(t *testing.T) {
	st := NewStore()
	a := st.NewSession("gemini-flash")
	b := st.NewSession("gemini-flash")

	// Activity in the older session bumps it to the front.
	st.AppendUserMessage(a.ID, NewUserMessage("bump"))

	sessions := st.Sessions()
	require.Len(t, sessions, 2)
	require.Equal(t, a.ID, sessions[0].ID)
	require.Equal(t, b.ID, sessions[1].ID)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	st := NewStore()
	s := st.NewSession("gemini-flash")
	st.AppendUserMessage(s.ID, NewUserMessage("original"))

	snap, _ := st.Session(s.ID)
	snap.Messages[0].Text = "mutated"
	snap.Title = "mutated"

	got, _ := st.Session(s.ID)
	require.Equal(t, "original", got.Messages[0].Text)
	require.NotEqual(t, "mutated", got.Title)
}

func TestReplaceAllClearsSelection(t *testing.T) {
	st := NewStore()
	old := st.NewSession("gemini-flash")
	require.True(t, st.BeginTurn(old.ID))

	restored := NewChatSession("gemini-v2-5")
	st.ReplaceAll([]ChatSession{restored})

	require.Empty(t, st.ActiveID())
	require.False(t, st.Processing(old.ID))
	_, ok := st.Session(restored.ID)
	require.True(t, ok)
	_, ok = st.Session(old.ID)
	require.False(t, ok)
}

func TestPanickingHandlerDoesNotPoisonStore(t *testing.T) {
	st := NewStore()
	st.SetChangeHandler(func(Event) { panic("handler bug") })

	s := st.NewSession("gemini-flash")
	st.AppendUserMessage(s.ID, NewUserMessage("hi"))

	got, ok := st.Session(s.ID)
	require.True(t, ok)
	require.Len(t, got.Messages, 1)
}
