package workspace

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docmanager/internal/api"
)

// TransportFailureReply is the fixed system message injected when a send
// cannot reach the backend. The user's message stays in the log and no
// automatic retry happens.
const TransportFailureReply = "Sorry, I couldn't reach the assistant. Please check your connection and try again."

// ChatCoordinator owns the active conversation: the session id, its
// ordered message log, and the session-switcher list. Sends are
// optimistic; hydration replaces the log wholesale from server history.
//
// The generation counter is bumped whenever the log's identity changes
// (session switch, new chat, logout clear). In-flight sends and
// hydrations carry the generation they were issued against and are
// discarded when it has moved on, so a stale reply never lands in the
// wrong conversation.
type ChatCoordinator struct {
	backend api.Service
	log     *zap.Logger
	notify  notifyFunc
	timeout time.Duration

	mu       sync.Mutex
	activeID string
	messages []Message
	sessions []string
	gen      uint64
	seq      uint64 // insertion tiebreak for message ids
}

// NewChatCoordinator wires a chat coordinator to the backend. The
// default session is active until the user switches or creates one.
func NewChatCoordinator(backend api.Service, log *zap.Logger, notify notifyFunc) *ChatCoordinator {
	if log == nil {
		log = zap.NewNop()
	}
	if notify == nil {
		notify = func(EventKind) {}
	}
	return &ChatCoordinator{
		backend:  backend,
		log:      log,
		notify:   notify,
		timeout:  api.DefaultTimeout,
		activeID: DefaultSessionID,
	}
}

// Send appends the user's message immediately, then asks the backend and
// appends exactly one reply: the assistant answer on success, the fixed
// transport-failure system message otherwise. Blank or whitespace-only
// text produces no state change. An empty sessionID targets the active
// session.
func (c *ChatCoordinator) Send(sessionID, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	c.mu.Lock()
	if sessionID == "" {
		sessionID = c.activeID
	}
	issued := c.gen
	c.messages = append(c.messages, c.newMessageLocked(SenderUser, text, nil))
	c.mu.Unlock()
	c.notify(EventMessagesChanged)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		answer, err := c.backend.Ask(ctx, sessionID, text)

		c.mu.Lock()
		if c.gen != issued {
			c.mu.Unlock()
			c.log.Debug("discarding stale chat reply", zap.String("session", sessionID))
			return
		}
		if err != nil {
			c.log.Warn("chat send failed", zap.String("session", sessionID), zap.Error(err))
			c.messages = append(c.messages, c.newMessageLocked(SenderSystem, TransportFailureReply, nil))
		} else {
			c.messages = append(c.messages, c.newMessageLocked(SenderAssistant, answer.Text, answer.Sources))
		}
		c.mu.Unlock()
		c.notify(EventMessagesChanged)
	}()
}

// Hydrate replaces the message log with the server's stored history for
// a session, reconstructed as alternating user/assistant pairs. The ids
// are derived from position, so re-hydration with unchanged data yields
// an identical log. A failed fetch leaves the current log untouched.
func (c *ChatCoordinator) Hydrate(sessionID string) {
	c.mu.Lock()
	issued := c.gen
	c.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		entries, err := c.backend.History(ctx, sessionID)
		if err != nil {
			c.log.Warn("history fetch failed", zap.String("session", sessionID), zap.Error(err))
			return
		}

		restored := make([]Message, 0, len(entries)*2)
		for i, e := range entries {
			restored = append(restored,
				Message{ID: fmt.Sprintf("%s-%d-q", sessionID, i), Sender: SenderUser, Text: e.Question},
				Message{ID: fmt.Sprintf("%s-%d-a", sessionID, i), Sender: SenderAssistant, Text: e.Answer},
			)
		}

		c.mu.Lock()
		if c.gen != issued {
			c.mu.Unlock()
			c.log.Debug("discarding stale history", zap.String("session", sessionID))
			return
		}
		c.messages = restored
		c.mu.Unlock()
		c.notify(EventMessagesChanged)
	}()
}

// RefreshSessions fetches the session-switcher list. It never mutates
// message logs; a failed fetch keeps the previous list.
func (c *ChatCoordinator) RefreshSessions() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		ids, err := c.backend.ListSessions(ctx)
		if err != nil {
			c.log.Warn("session list fetch failed", zap.Error(err))
			return
		}
		c.mu.Lock()
		c.sessions = ids
		c.mu.Unlock()
		c.notify(EventSessionsChanged)
	}()
}

// SwitchSession makes a session active and hydrates its log from the
// server. Any reply or history still in flight for the previous session
// is discarded.
func (c *ChatCoordinator) SwitchSession(sessionID string) {
	if sessionID == "" {
		return
	}
	c.mu.Lock()
	c.activeID = sessionID
	c.messages = nil
	c.gen++
	c.mu.Unlock()
	c.notify(EventMessagesChanged)
	c.Hydrate(sessionID)
}

// NewSession starts a fresh local conversation: a new unique id (never
// the reserved default) and an empty log. Nothing is created server-side
// until the first send under the new id.
func (c *ChatCoordinator) NewSession() string {
	id := uuid.NewString()
	c.mu.Lock()
	c.activeID = id
	c.messages = nil
	c.gen++
	c.mu.Unlock()
	c.notify(EventMessagesChanged)
	return id
}

// ClearLog empties the message log, e.g. on logout. The active session
// id is kept; in-flight replies for the cleared log are discarded.
func (c *ChatCoordinator) ClearLog() {
	c.mu.Lock()
	c.messages = nil
	c.gen++
	c.mu.Unlock()
	c.notify(EventMessagesChanged)
}

// ActiveSession returns the id of the active conversation.
func (c *ChatCoordinator) ActiveSession() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// Messages returns a copy of the active session's log in conversation
// order.
func (c *ChatCoordinator) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Sessions returns a copy of the session-switcher list.
func (c *ChatCoordinator) Sessions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.sessions))
	copy(out, c.sessions)
	return out
}

func (c *ChatCoordinator) newMessageLocked(sender Sender, text string, sources []string) Message {
	c.seq++
	now := time.Now()
	return Message{
		ID:      fmt.Sprintf("m-%d-%d", now.UnixMilli(), c.seq),
		Sender:  sender,
		Text:    text,
		Sources: append([]string(nil), sources...),
		SentAt:  now,
	}
}
