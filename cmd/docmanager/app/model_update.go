package app

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"docmanager/cmd/docmanager/ui"
	"docmanager/internal/workspace"
)

func baseName(p string) string { return filepath.Base(p) }

// Update is the single message router for the workspace TUI.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case eventMsg:
		m.snap = m.ctrl.Snapshot()
		m.clampCursors()
		if msg.Kind == workspace.EventMessagesChanged {
			m.viewport.SetContent(m.renderChatFeed())
			m.viewport.GotoBottom()
		}
		return m, waitForEvent(m.ctrl)

	case fileReadMsg:
		if msg.err == nil && len(msg.blobs) > 0 {
			m.ctrl.Uploads().Submit(msg.blobs)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.picking {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	contentHeight := ui.ContentHeight(m.height)
	m.viewport.Width = ui.ViewerWidth(m.width, false)
	m.viewport.Height = contentHeight
	m.input.SetWidth(m.width - 6)
	m.filepicker.Height = contentHeight
	m.viewport.SetContent(m.renderChatFeed())
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.picking {
		return m.updateFilePicker(msg)
	}

	switch m.snap.Screen {
	case workspace.ScreenAuth:
		return m.updateAuth(msg)
	case workspace.ScreenLanding:
		return m.updateLanding(msg)
	case workspace.ScreenHome:
		return m.updateHome(msg)
	case workspace.ScreenDocuments:
		return m.updateDocuments(msg)
	case workspace.ScreenChat:
		return m.updateChat(msg)
	}
	return m, nil
}

// updateAuth drives the cosmetic sign-in form. There is no real
// authentication; submitting moves on to the landing screen.
func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.authField = 1 - m.authField
		if m.authField == 0 {
			m.email.Focus()
			m.password.Blur()
		} else {
			m.password.Focus()
			m.email.Blur()
		}
		return m, nil
	case tea.KeyEnter:
		m.ctrl.Navigate(workspace.ScreenLanding)
		return m, nil
	case tea.KeyEsc:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	if m.authField == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// updateLanding drives the landing composer. Submitting performs the
// compound transition: switch to home and forward the text into the
// chat coordinator in one step.
func (m Model) updateLanding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		m.ctrl.SubmitFromLanding(text)
		return m, nil
	case tea.KeyEsc:
		m.ctrl.Logout()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "d":
		m.ctrl.Navigate(workspace.ScreenDocuments)
		return m, nil
	case "c":
		m.ctrl.Navigate(workspace.ScreenChat)
		return m, nil
	case "o":
		m.ctrl.Logout()
		return m, nil
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateDocuments(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == FocusChatInput {
		switch msg.Type {
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if text != "" {
				m.ctrl.Chat().Send("", text)
			}
			return m, nil
		case tea.KeyEsc, tea.KeyTab:
			m.focus = FocusList
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	docs := m.snap.Documents
	switch msg.String() {
	case "up", "k":
		if m.docCursor > 0 {
			m.docCursor--
		}
	case "down", "j":
		if m.docCursor < len(docs)-1 {
			m.docCursor++
		}
	case "enter":
		if m.docCursor < len(docs) {
			m.ctrl.Uploads().SetActive(docs[m.docCursor].ID)
		}
	case "x", "delete":
		if m.docCursor < len(docs) {
			m.ctrl.Uploads().Delete(docs[m.docCursor].ID)
		}
	case "u":
		m.picking = true
		return m, m.filepicker.Init()
	case "r":
		m.ctrl.Uploads().Refresh()
	case "p":
		if m.ctrl.View().ToggleChatPanel() {
			m.focus = FocusChatInput
		} else {
			m.focus = FocusList
		}
	case "tab":
		if m.snap.ChatPanelOpen {
			m.focus = FocusChatInput
		}
	case "c":
		m.ctrl.Navigate(workspace.ScreenChat)
	case "h", "esc":
		m.ctrl.Navigate(workspace.ScreenHome)
	}
	return m, nil
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if text != "" {
			m.ctrl.Chat().Send("", text)
		}
		return m, nil
	case tea.KeyEsc:
		m.ctrl.Navigate(workspace.ScreenHome)
		return m, nil
	case tea.KeyCtrlN:
		m.ctrl.Chat().NewSession()
		return m, nil
	case tea.KeyCtrlS:
		m.cycleSession()
		return m, nil
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// cycleSession switches to the next server-known session after the
// active one, wrapping around.
func (m *Model) cycleSession() {
	sessions := m.snap.Sessions
	if len(sessions) == 0 {
		return
	}
	next := 0
	for i, id := range sessions {
		if id == m.snap.ActiveSessionID {
			next = (i + 1) % len(sessions)
			break
		}
	}
	m.ctrl.Chat().SwitchSession(sessions[next])
}

func (m Model) updateFilePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		m.picking = false
		return m, nil
	}
	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)
	if ok, path := m.filepicker.DidSelectFile(msg); ok {
		m.picking = false
		return m, readFiles(path)
	}
	return m, cmd
}

func (m *Model) clampCursors() {
	if n := len(m.snap.Documents); m.docCursor >= n {
		m.docCursor = n - 1
	}
	if m.docCursor < 0 {
		m.docCursor = 0
	}
	if n := len(m.snap.Sessions); m.sessionCursor >= n {
		m.sessionCursor = n - 1
	}
	if m.sessionCursor < 0 {
		m.sessionCursor = 0
	}
}
