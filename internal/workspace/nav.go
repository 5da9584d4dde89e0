package workspace

import "sync"

// Screen is the top-level view the workspace is showing.
type Screen int

const (
	ScreenAuth Screen = iota
	ScreenLanding
	ScreenHome
	ScreenDocuments
	ScreenChat
)

func (s Screen) String() string {
	switch s {
	case ScreenAuth:
		return "auth"
	case ScreenLanding:
		return "landing"
	case ScreenHome:
		return "home"
	case ScreenDocuments:
		return "documents"
	case ScreenChat:
		return "chat"
	}
	return "unknown"
}

// ViewController tracks which screen is visible and whether the
// persistent chat side panel is open. Transitions happen only on
// explicit user navigation; the cross-coordinator effects of entering a
// screen (mount-time refreshes) are wired by the Controller, not here.
type ViewController struct {
	mu            sync.Mutex
	screen        Screen
	chatPanelOpen bool
	notify        notifyFunc
}

// NewViewController starts on the auth screen.
func NewViewController(notify notifyFunc) *ViewController {
	if notify == nil {
		notify = func(EventKind) {}
	}
	return &ViewController{screen: ScreenAuth, notify: notify}
}

// SetScreen switches the visible screen.
func (v *ViewController) SetScreen(s Screen) {
	v.mu.Lock()
	changed := v.screen != s
	v.screen = s
	v.mu.Unlock()
	if changed {
		v.notify(EventViewChanged)
	}
}

// Screen returns the visible screen.
func (v *ViewController) Screen() Screen {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.screen
}

// ToggleChatPanel flips the side panel and reports its new state.
func (v *ViewController) ToggleChatPanel() bool {
	v.mu.Lock()
	v.chatPanelOpen = !v.chatPanelOpen
	open := v.chatPanelOpen
	v.mu.Unlock()
	v.notify(EventViewChanged)
	return open
}

// ChatPanelOpen reports whether the side panel is open. The panel is
// independent of the active screen in layouts that keep it docked.
func (v *ViewController) ChatPanelOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.chatPanelOpen
}
