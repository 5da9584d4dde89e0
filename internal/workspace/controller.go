package workspace

import (
	"strings"

	"go.uber.org/zap"

	"docmanager/internal/api"
)

// Controller composes the upload coordinator, chat coordinator, and view
// controller into one consistent workspace. Presentation layers read
// state exclusively through Snapshot and learn about changes through the
// event channel; all cross-coordinator effects (mount-time refreshes,
// logout, the landing composer hand-off) run through here.
type Controller struct {
	uploads *UploadCoordinator
	chat    *ChatCoordinator
	view    *ViewController
	log     *zap.Logger
	events  chan Event
}

// Snapshot is the single read model exposed to presentation: full copies
// of every container, consistent as of one coordinator action.
type Snapshot struct {
	Documents       []Document
	ActiveDocument  *Document
	Sessions        []string
	ActiveSessionID string
	Messages        []Message
	Screen          Screen
	ChatPanelOpen   bool
}

// New builds a workspace controller over the given backend.
func New(backend api.Service, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		log:    log,
		events: make(chan Event, 64),
	}
	c.uploads = NewUploadCoordinator(backend, log.Named("uploads"), c.publish)
	c.chat = NewChatCoordinator(backend, log.Named("chat"), c.publish)
	c.view = NewViewController(c.publish)
	return c
}

// Events delivers one event per coordinator state transition. The
// channel is buffered and never blocks a coordinator; an observer that
// falls behind misses intermediate events but re-derives everything from
// the next Snapshot.
func (c *Controller) Events() <-chan Event {
	return c.events
}

func (c *Controller) publish(k EventKind) {
	select {
	case c.events <- Event{Kind: k}:
	default:
	}
}

// Uploads exposes the upload coordinator for user actions.
func (c *Controller) Uploads() *UploadCoordinator { return c.uploads }

// Chat exposes the chat coordinator for user actions.
func (c *Controller) Chat() *ChatCoordinator { return c.chat }

// View exposes the view controller for user actions.
func (c *Controller) View() *ViewController { return c.view }

// Navigate switches screens and runs the entered screen's explicit
// mount-time refreshes: the documents screen reconciles the file list,
// the chat screen refreshes the session list and rehydrates the active
// conversation.
func (c *Controller) Navigate(s Screen) {
	c.view.SetScreen(s)
	switch s {
	case ScreenDocuments:
		c.uploads.Refresh()
	case ScreenChat:
		c.chat.RefreshSessions()
		c.chat.Hydrate(c.chat.ActiveSession())
	}
}

// SubmitFromLanding performs the landing composer's compound transition:
// switch to the home screen and forward the typed text into the chat
// coordinator in the same logical step, so no input is lost. Blank text
// only navigates.
func (c *Controller) SubmitFromLanding(text string) {
	c.view.SetScreen(ScreenHome)
	if strings.TrimSpace(text) == "" {
		return
	}
	c.chat.Send("", text)
}

// Logout clears the conversation and returns to the auth screen. The
// document set is intentionally preserved across logout.
func (c *Controller) Logout() {
	c.chat.ClearLog()
	c.view.SetScreen(ScreenAuth)
}

// Snapshot derives the current read model.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Documents:       c.uploads.Documents(),
		Sessions:        c.chat.Sessions(),
		ActiveSessionID: c.chat.ActiveSession(),
		Messages:        c.chat.Messages(),
		Screen:          c.view.Screen(),
		ChatPanelOpen:   c.view.ChatPanelOpen(),
	}
	if doc, ok := c.uploads.Active(); ok {
		snap.ActiveDocument = &doc
	}
	return snap
}
