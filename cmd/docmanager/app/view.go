// View rendering for the workspace TUI.
package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"docmanager/cmd/docmanager/ui"
	"docmanager/internal/workspace"
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.picking {
		title := m.styles.Header.Render(" Select a file to upload ")
		hint := m.styles.Muted.Render("enter: upload  esc: cancel")
		return lipgloss.JoinVertical(lipgloss.Left, title, m.filepicker.View(), hint)
	}

	switch m.snap.Screen {
	case workspace.ScreenAuth:
		return m.renderAuth()
	case workspace.ScreenLanding:
		return m.renderLanding()
	case workspace.ScreenHome:
		return m.renderHome()
	case workspace.ScreenDocuments:
		return m.renderDocuments()
	case workspace.ScreenChat:
		return m.renderChat()
	}
	return ""
}

func (m Model) renderHeader(subtitle string) string {
	title := m.styles.Header.Render(" DocManager ")
	badge := m.styles.Badge.Render(subtitle)

	var status string
	if m.replyPending() {
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Muted.Render("Thinking..."))
	} else {
		status = m.styles.Success.Render("Ready")
	}

	line := lipgloss.JoinHorizontal(lipgloss.Center, title, " ", badge, "  ", status)
	return lipgloss.JoinVertical(lipgloss.Left, line, m.styles.RenderDivider(m.width))
}

func (m Model) renderFooter(hotkeys string) string {
	return m.styles.Footer.Render(hotkeys)
}

func (m Model) renderAuth() string {
	form := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render("Sign in to DocManager"),
		m.styles.Muted.Render("Email"),
		m.email.View(),
		"",
		m.styles.Muted.Render("Password"),
		m.password.View(),
		"",
		m.styles.Muted.Render("enter: sign in  tab: switch field  esc: quit"),
	)
	panel := m.styles.Panel.Width(48).Render(form)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}

func (m Model) renderLanding() string {
	composer := m.styles.Panel.
		BorderForeground(m.styles.Theme.Accent).
		Width(min(m.width-8, 76)).
		Render(m.input.View())

	content := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Title.Render("What do you want to know about your documents?"),
		m.styles.Subtitle.Render("Upload files, then ask anything. Answers cite their sources."),
		"",
		composer,
		"",
		m.styles.Muted.Render("enter: ask  esc: sign out"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderHome() string {
	header := m.renderHeader("Dashboard")

	var uploading, failed int
	for _, d := range m.snap.Documents {
		if d.Origin == workspace.OriginServerKnown {
			continue
		}
		switch d.Status {
		case workspace.StatusUploading:
			uploading++
		case workspace.StatusError:
			failed++
		}
	}

	stats := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Bold.Render(fmt.Sprintf("%d documents", len(m.snap.Documents))),
		m.styles.Muted.Render(fmt.Sprintf("%d uploading, %d failed", uploading, failed)),
		m.styles.Muted.Render(fmt.Sprintf("%d messages in session %s", len(m.snap.Messages), m.snap.ActiveSessionID)),
	)

	recent := []string{m.styles.Bold.Render("Recent documents")}
	docs := m.snap.Documents
	if len(docs) == 0 {
		recent = append(recent, m.styles.Muted.Render("Nothing uploaded yet. Press d, then u."))
	}
	for i := len(docs) - 1; i >= 0 && i >= len(docs)-5; i-- {
		kind := workspace.Classify(docs[i].Name)
		name := lipgloss.NewStyle().Foreground(ui.DocColor(kind.Color)).Render(docs[i].Name)
		recent = append(recent, "  "+name)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Panel.Width(32).Render(stats),
		" ",
		m.styles.Panel.Width(48).Render(lipgloss.JoinVertical(lipgloss.Left, recent...)),
	)

	footer := m.renderFooter("d: documents  c: chat  o: sign out  q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.styles.Content.Render(body), footer)
}

func (m Model) renderDocuments() string {
	header := m.renderHeader("Documents")
	contentHeight := ui.ContentHeight(m.height)

	sidebar := m.renderDocumentList(contentHeight)
	viewer := m.renderViewer(ui.ViewerWidth(m.width, m.snap.ChatPanelOpen), contentHeight)

	panes := []string{sidebar, viewer}
	if m.snap.ChatPanelOpen {
		panes = append(panes, m.renderChatPanel(contentHeight))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, panes...)

	hotkeys := "u: upload  enter: open  x: delete  r: refresh  p: chat panel  c: chat  h: home"
	if m.snap.ChatPanelOpen {
		hotkeys += "  tab: focus input"
	}
	footer := m.renderFooter(hotkeys)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderDocumentList(height int) string {
	width := ui.PanelContentWidth(ui.SidebarWidth)
	lines := []string{m.styles.Bold.Render("RECENT DOCUMENTS")}

	if len(m.snap.Documents) == 0 {
		lines = append(lines, m.styles.Muted.Render("No documents yet"))
	}
	for i, d := range m.snap.Documents {
		kind := workspace.Classify(d.Name)
		marker := "  "
		if i == m.docCursor {
			marker = m.styles.Prompt.Render("> ")
		}
		name := truncate(d.Name, width-12)
		label := lipgloss.NewStyle().Foreground(ui.DocColor(kind.Color)).Render(name)

		var status string
		switch {
		case d.Origin == workspace.OriginServerKnown:
			status = m.styles.Muted.Render("on server")
		case d.Status == workspace.StatusUploading:
			status = m.styles.Warning.Render("uploading")
		case d.Status == workspace.StatusError:
			status = m.styles.Error.Render("failed")
		default:
			status = m.styles.Success.Render("uploaded")
		}

		line := marker + label + " " + status
		if m.snap.ActiveDocument != nil && m.snap.ActiveDocument.ID == d.ID {
			line = m.styles.Selected.Render(marker + name + " " + d.Status.String())
		}
		lines = append(lines, line)
	}

	return m.styles.Sidebar.
		Width(ui.SidebarWidth).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderViewer shows a mock preview of the active document; real
// rendering stays on the backend.
func (m Model) renderViewer(width, height int) string {
	var body string
	if doc := m.snap.ActiveDocument; doc != nil {
		kind := workspace.Classify(doc.Name)
		title := lipgloss.NewStyle().Foreground(ui.DocColor(kind.Color)).Bold(true).Render(doc.Name)
		meta := m.styles.Muted.Render(fmt.Sprintf("%s · %s · %d bytes", doc.Origin, doc.Status, doc.Size))

		preview := m.styles.Muted.Render(strings.Repeat("▁", max(width/2, 10)) + "\n\n" +
			"Preview is mocked locally; ask the assistant about the contents.")
		if doc.Preview != nil && doc.Preview.Path() != "" {
			preview = m.styles.Muted.Render("Image preview at " + doc.Preview.Path())
		}
		body = lipgloss.JoinVertical(lipgloss.Left, title, meta, "", preview)
	} else {
		body = m.styles.Muted.Render("Select a document to preview")
	}

	return m.styles.Content.
		Width(width).
		Height(height).
		Render(body)
}

func (m Model) renderChatPanel(height int) string {
	feed := m.renderChatFeed()
	inputView := m.input.View()
	if m.focus != FocusChatInput {
		inputView = m.styles.Muted.Render("tab to focus the chat input")
	}
	panel := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Bold.Render("AI ASSISTANT"),
		feed,
		m.styles.RenderDivider(ui.PanelContentWidth(ui.ChatPanelWidth)),
		inputView,
	)
	return m.styles.Panel.
		Width(ui.ChatPanelWidth).
		Height(height).
		Render(panel)
}

func (m Model) renderChat() string {
	header := m.renderHeader("Chat · " + m.snap.ActiveSessionID)

	sessions := []string{m.styles.Bold.Render("SESSIONS")}
	if len(m.snap.Sessions) == 0 {
		sessions = append(sessions, m.styles.Muted.Render("none on server"))
	}
	for _, id := range m.snap.Sessions {
		line := "  " + truncate(id, 24)
		if id == m.snap.ActiveSessionID {
			line = m.styles.Selected.Render("> " + truncate(id, 24))
		}
		sessions = append(sessions, line)
	}
	sidebar := m.styles.Sidebar.
		Width(ui.SidebarWidth).
		Height(ui.ContentHeight(m.height)).
		Render(lipgloss.JoinVertical(lipgloss.Left, sessions...))

	feed := m.viewport.View()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, feed)

	inputArea := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1).
		Render(m.input.View())

	footer := m.renderFooter("enter: send  ctrl+n: new chat  ctrl+s: next session  esc: home")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, inputArea, footer)
}

func (m Model) renderChatFeed() string {
	var sb strings.Builder
	for _, msg := range m.snap.Messages {
		switch msg.Sender {
		case workspace.SenderUser:
			sb.WriteString(m.styles.Bold.Foreground(m.styles.Theme.Primary).Render("You") + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Text))
			sb.WriteString("\n\n")
		case workspace.SenderSystem:
			sb.WriteString(m.styles.Error.Render(msg.Text))
			sb.WriteString("\n\n")
		default:
			sb.WriteString(m.styles.Bold.Foreground(m.styles.Theme.Accent).Render("Assistant") + "\n")
			sb.WriteString(m.safeRenderMarkdown(msg.Text))
			if len(msg.Sources) > 0 {
				sb.WriteString(m.styles.Muted.Render("Sources: " + strings.Join(msg.Sources, ", ")))
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
		}
	}
	if sb.Len() == 0 {
		return m.styles.Muted.Render("No messages yet. Ask something about your documents.")
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
