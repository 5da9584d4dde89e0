package workspace

import "time"

// DefaultSessionID is the well-known fallback conversation used when no
// session has been explicitly created. It is reserved: user-created
// sessions are always fresh uuids and can never collide with it.
const DefaultSessionID = "default"

// Sender identifies who produced a chat message.
type Sender int

const (
	SenderUser Sender = iota
	SenderAssistant
	// SenderSystem marks locally injected notices, e.g. the fixed
	// connectivity-error reply after a failed send.
	SenderSystem
)

func (s Sender) String() string {
	switch s {
	case SenderUser:
		return "user"
	case SenderAssistant:
		return "assistant"
	case SenderSystem:
		return "system"
	}
	return "unknown"
}

// Message is one entry in a session's conversation log. Log order is
// authoritative; SentAt is display metadata only. IDs are monotonically
// orderable within a session (timestamp plus insertion counter for live
// messages, position-derived synthetic ids for hydrated ones).
type Message struct {
	ID      string
	Sender  Sender
	Text    string
	Sources []string
	SentAt  time.Time
}

// Session is one conversation thread: an opaque id plus its ordered
// message log. Sessions are never deleted client-side; switching
// sessions replaces the in-memory log with one fetched from the server.
type Session struct {
	ID       string
	Messages []Message
}
