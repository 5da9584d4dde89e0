package workspace

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmanager/internal/api"
)

func TestSendAppendsUserMessageImmediately(t *testing.T) {
	t.Parallel()
	backend := newStubBackend()
	backend.askGate = make(chan struct{})
	c := NewChatCoordinator(backend, nil, nil)

	c.Send("", "what is in report.pdf?")

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, SenderUser, msgs[0].Sender)
	assert.Equal(t, "what is in report.pdf?", msgs[0].Text)
	assert.NotEmpty(t, msgs[0].ID)

	close(backend.askGate)
	waitFor(t, func() bool { return len(c.Messages()) == 2 }, "reply should arrive after the gate opens")
}

func TestSendAppendsAssistantReplyWithSources(t *testing.T) {
	t.Parallel()
	backend := newStubBackend()
	backend.answer = api.Answer{Text: "It is the quarterly report.", Sources: []string{"report.pdf"}}
	c := NewChatCoordinator(backend, nil, nil)

	c.Send("", "what is this?")
	waitFor(t, func() bool { return len(c.Messages()) == 2 }, "reply expected")

	reply := c.Messages()[1]
	assert.Equal(t, SenderAssistant, reply.Sender)
	assert.Equal(t, "It is the quarterly report.", reply.Text)
	assert.Equal(t, []string{"report.pdf"}, reply.Sources)
}

func TestSendBlankTextIsNoop(t *testing.T) {
	t.Parallel()
	backend := newStubBackend()
	c := NewChatCoordinator(backend, nil, nil)

	c.Send("", "")
	c.Send("", "   \t\n")

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, c.Messages())
	assert.Empty(t, backend.askedQuestions(), "blank input must never reach the backend")
}

func TestSendFailureInjectsFixedSystemMessage(t *testing.T) {
	t.Parallel()
	backend := newStubBackend()
	backend.askErr = errStub
	c := NewChatCoordinator(backend, nil, nil)

	c.Send("", "hello?")
	waitFor(t, func() bool { return len(c.Messages()) == 2 }, "failure reply expected")

	msgs := c.Messages()
	assert.Equal(t, SenderUser, msgs[0].Sender, "user message stays in the log")
	assert.Equal(t, SenderSystem, msgs[1].Sender)
	assert.Equal(t, TransportFailureReply, msgs[1].Text)

	// No automatic retry.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, backend.askedQuestions(), 1)
}

func TestSendTargetsActiveSessionWhenUnspecified(t *testing.T) {
	t.Parallel()
	backend := newStubBackend()
	c := NewChatCoordinator(backend, nil, nil)

	assert.Equal(t, DefaultSessionID, c.ActiveSession())
	c.Send("", "hi")
	waitFor(t, func() bool { return len(backend.askedQuestions()) == 1 }, "send should reach the backend")
}

func TestHydrateRebuildsLogFromHistory(t *testing.T) {
	t.Parallel()
	backend := newStubBackend()
	backend.history["default"] = []api.HistoryEntry{
		{Question: "q one", Answer: "a one"},
		{Question: "q two", Answer: "a two"},
	}
	c := NewChatCoordinator(backend, nil, nil)

	c.Hydrate("default")
	waitFor(t, func() bool { return len(c.Messages()) == 4 }, "two pairs expected")

	first := c.Messages()

	// Positional ids make re-hydration with unchanged data a fixpoint.
	c.Hydrate("default")
	waitFor(t, func() bool { return len(c.Messages()) == 4 }, "re-hydration should settle")
	if diff := cmp.Diff(first, c.Messages()); diff != "" {
		t.Fatalf("re-hydration changed the log (-first +second):\n%s", diff)
	}

	assert.Equal(t, "default-0-q", first[0].ID)
	assert.Equal(t, SenderUser, first[0].Sender)
	assert.Equal(t, "default-0-a", first[1].ID)
	assert.Equal(t, SenderAssistant, first[1].Sender)
	assert.Equal(t, "default-1-q", first[2].ID)
	assert.Equal(t, "a two", first[3].Text)
}

func TestHydrateFailureLeavesLogUntouched(t *testing.T) {
	t.Parallel()
	backend := newStubBackend()
	c := NewChatCoordinator(backend, nil, nil)

	c.Send("", "keep me")
	waitFor(t, func() bool { return len(c.Messages()) == 2 }, "send should settle")

	backend.mu.Lock()
	backend.historyErr = errStub
	backend.mu.Unlock()

	c.Hydrate("default")
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, c.Messages(), 2)
	assert.Equal(t, "keep me", c.Messages()[0].Text)
}

func TestSwitchSessionDiscardsInflightReply(t *testing.T) {
	t.Parallel()
	backend := newStubBackend()
	backend.answer = api.Answer{Text: "late reply"}
	backend.askGate = make(chan struct{})
	c := NewChatCoordinator(backend, nil, nil)

	c.Send("", "question in old session")
	c.SwitchSession("other")
	close(backend.askGate)

	time.Sleep(50 * time.Millisecond)
	for _, msg := range c.Messages() {
		assert.NotEqual(t, "late reply", msg.Text, "reply for the old session must be dropped")
	}
	assert.Equal(t, "other", c.ActiveSession())
}

func TestSwitchSessionHydratesNewLog(t *testing.T) {
	t.Parallel()
	backend := newStubBackend()
	backend.history["research"] = []api.HistoryEntry{{Question: "q", Answer: "a"}}
	c := NewChatCoordinator(backend, nil, nil)

	c.SwitchSession("research")
	waitFor(t, func() bool { return len(c.Messages()) == 2 }, "switched session should hydrate")
	assert.Equal(t, "research", c.ActiveSession())
	assert.Equal(t, "research-0-q", c.Messages()[0].ID)
}

func TestNewSessionStartsEmptyAndLocal(t *testing.T) {
	t.Parallel()
	backend := newStubBackend()
	backend.sessions = []string{"default", "old"}
	c := NewChatCoordinator(backend, nil, nil)

	c.Send("", "message in default")
	waitFor(t, func() bool { return len(c.Messages()) == 2 }, "send should settle")

	id := c.NewSession()
	assert.NotEmpty(t, id)
	assert.NotEqual(t, DefaultSessionID, id)
	assert.Equal(t, id, c.ActiveSession())
	assert.Empty(t, c.Messages())

	// The new id is local until a first send; it is not in the switcher.
	c.RefreshSessions()
	waitFor(t, func() bool { return len(c.Sessions()) == 2 }, "switcher list should load")
	assert.NotContains(t, c.Sessions(), id)

	second := c.NewSession()
	assert.NotEqual(t, id, second)
}

func TestRefreshSessionsFailureKeepsPreviousList(t *testing.T) {
	t.Parallel()
	backend := newStubBackend()
	backend.sessions = []string{"default"}
	c := NewChatCoordinator(backend, nil, nil)

	c.RefreshSessions()
	waitFor(t, func() bool { return len(c.Sessions()) == 1 }, "initial list should load")

	backend.mu.Lock()
	backend.sessionsErr = errStub
	backend.mu.Unlock()

	c.RefreshSessions()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"default"}, c.Sessions())
}

func TestClearLogKeepsSessionAndDropsInflight(t *testing.T) {
	t.Parallel()
	backend := newStubBackend()
	backend.answer = api.Answer{Text: "late"}
	backend.askGate = make(chan struct{})
	c := NewChatCoordinator(backend, nil, nil)

	c.Send("", "about to be cleared")
	c.ClearLog()
	close(backend.askGate)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, c.Messages())
	assert.Equal(t, DefaultSessionID, c.ActiveSession())
}

func TestMessagesReturnsCopy(t *testing.T) {
	t.Parallel()
	c := NewChatCoordinator(newStubBackend(), nil, nil)
	c.Send("", "original")

	msgs := c.Messages()
	require.NotEmpty(t, msgs)
	msgs[0].Text = "mutated"
	assert.Equal(t, "original", c.Messages()[0].Text)
}
