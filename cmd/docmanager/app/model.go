// Package app provides the interactive TUI for the DocManager
// workspace: an auth form, a landing composer, a home dashboard, a
// documents split view, and a chat panel, all bound to one shared
// workspace controller.
package app

import (
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"docmanager/cmd/docmanager/ui"
	"docmanager/internal/workspace"
)

// Model is the main model for the interactive workspace interface.
type Model struct {
	// UI components
	styles     ui.Styles
	renderer   *glamour.TermRenderer
	input      textarea.Model
	email      textinput.Model
	password   textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	filepicker filepicker.Model

	// Workspace state
	ctrl *workspace.Controller
	snap workspace.Snapshot

	// Local presentation state
	authField     int // 0 = email, 1 = password
	docCursor     int
	sessionCursor int
	focus         Focus
	picking       bool
	width         int
	height        int
	ready         bool
}

// New builds the TUI model over a workspace controller.
func New(ctrl *workspace.Controller, theme ui.Theme) Model {
	styles := ui.NewStyles(theme)

	input := textarea.New()
	input.Placeholder = "Ask anything..."
	input.CharLimit = 4000
	input.SetHeight(1)
	input.ShowLineNumbers = false
	input.Focus()

	email := textinput.New()
	email.Placeholder = "you@company.com"
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	fp := filepicker.New()
	fp.AllowedTypes = nil // any file type; the backend decides what it accepts
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return Model{
		styles:     styles,
		renderer:   renderer,
		input:      input,
		email:      email,
		password:   password,
		spinner:    sp,
		filepicker: fp,
		ctrl:       ctrl,
		snap:       ctrl.Snapshot(),
	}
}

// Init starts the event subscription and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.ctrl),
		m.spinner.Tick,
	)
}

// waitForEvent blocks on the controller's event channel and converts the
// next state transition into a tea message. Re-issued after every
// delivery.
func waitForEvent(ctrl *workspace.Controller) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ctrl.Events()
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

// readFiles loads the picked paths from disk off the UI loop.
func readFiles(paths ...string) tea.Cmd {
	return func() tea.Msg {
		blobs := make([]workspace.FileBlob, 0, len(paths))
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				return fileReadMsg{err: err}
			}
			blobs = append(blobs, workspace.FileBlob{Name: baseName(p), Data: data})
		}
		return fileReadMsg{blobs: blobs}
	}
}

// replyPending reports whether the log is waiting on the assistant: the
// last message is from the user with no reply appended yet.
func (m Model) replyPending() bool {
	n := len(m.snap.Messages)
	return n > 0 && m.snap.Messages[n-1].Sender == workspace.SenderUser
}

// safeRenderMarkdown renders assistant markdown with panic recovery.
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()
	if m.renderer != nil && content != "" {
		if rendered, err := m.renderer.Render(content); err == nil {
			return rendered
		}
	}
	return content
}
