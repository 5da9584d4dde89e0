package workspace

// EventKind names the slice of workspace state that changed.
type EventKind int

const (
	EventDocumentsChanged EventKind = iota
	EventMessagesChanged
	EventSessionsChanged
	EventViewChanged
)

func (k EventKind) String() string {
	switch k {
	case EventDocumentsChanged:
		return "documents"
	case EventMessagesChanged:
		return "messages"
	case EventSessionsChanged:
		return "sessions"
	case EventViewChanged:
		return "view"
	}
	return "unknown"
}

// Event is published by the controller after every coordinator state
// transition. Observers re-derive their view from Snapshot; the event
// carries no payload beyond the kind.
type Event struct {
	Kind EventKind
}

// notifyFunc is how coordinators report a completed state transition.
// A nil notifyFunc is replaced with a no-op at construction.
type notifyFunc func(EventKind)
