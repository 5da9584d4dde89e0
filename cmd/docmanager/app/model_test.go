package app

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmanager/cmd/docmanager/ui"
	"docmanager/internal/api"
	"docmanager/internal/workspace"
)

// quietBackend is an always-succeeding api.Service for model tests.
type quietBackend struct{}

func (quietBackend) ListFiles(ctx context.Context) ([]string, error) { return nil, nil }
func (quietBackend) Upload(ctx context.Context, filename string, r io.Reader) error {
	return nil
}
func (quietBackend) DeleteFile(ctx context.Context, name string) error  { return nil }
func (quietBackend) ListSessions(ctx context.Context) ([]string, error) { return nil, nil }
func (quietBackend) History(ctx context.Context, sessionID string) ([]api.HistoryEntry, error) {
	return nil, nil
}
func (quietBackend) Ask(ctx context.Context, sessionID, question string) (api.Answer, error) {
	return api.Answer{Text: "ok"}, nil
}

func newTestModel(t *testing.T) (Model, *workspace.Controller) {
	t.Helper()
	ctrl := workspace.New(quietBackend{}, nil)
	m := New(ctrl, ui.DarkTheme())
	resized, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return resized.(Model), ctrl
}

func keyMsg(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runeMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestWindowSizeMakesModelReady(t *testing.T) {
	ctrl := workspace.New(quietBackend{}, nil)
	m := New(ctrl, ui.DarkTheme())
	assert.False(t, m.ready)
	assert.Equal(t, "Initializing...", m.View())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)
	assert.True(t, m.ready)
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 30, m.height)
}

func TestCtrlCQuitsFromAnyScreen(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(keyMsg(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAuthEnterMovesToLanding(t *testing.T) {
	m, ctrl := newTestModel(t)
	require.Equal(t, workspace.ScreenAuth, m.snap.Screen)

	m.Update(keyMsg(tea.KeyEnter))
	assert.Equal(t, workspace.ScreenLanding, ctrl.Snapshot().Screen)
}

func TestLandingSubmitNavigatesAndSends(t *testing.T) {
	m, ctrl := newTestModel(t)
	ctrl.Navigate(workspace.ScreenLanding)
	m = m.refresh()

	m.input.SetValue("what do my documents say?")
	updated, _ := m.Update(keyMsg(tea.KeyEnter))
	m = updated.(Model)

	assert.Equal(t, workspace.ScreenHome, ctrl.Snapshot().Screen)
	assert.Empty(t, m.input.Value(), "composer resets after submit")
	require.Eventually(t, func() bool {
		return len(ctrl.Snapshot().Messages) == 2
	}, 2*time.Second, 5*time.Millisecond, "submitted text should become a conversation")
}

func TestHomeKeysNavigate(t *testing.T) {
	m, ctrl := newTestModel(t)
	ctrl.Navigate(workspace.ScreenHome)
	m = m.refresh()

	m.Update(runeMsg('d'))
	assert.Equal(t, workspace.ScreenDocuments, ctrl.Snapshot().Screen)

	ctrl.Navigate(workspace.ScreenHome)
	m = m.refresh()
	m.Update(runeMsg('c'))
	assert.Equal(t, workspace.ScreenChat, ctrl.Snapshot().Screen)
}

func TestEventMsgRefreshesSnapshotAndResubscribes(t *testing.T) {
	m, ctrl := newTestModel(t)
	ctrl.Uploads().Submit([]workspace.FileBlob{{Name: "a.pdf"}})

	updated, cmd := m.Update(eventMsg(workspace.Event{Kind: workspace.EventDocumentsChanged}))
	m = updated.(Model)

	require.Len(t, m.snap.Documents, 1)
	assert.Equal(t, "a.pdf", m.snap.Documents[0].Name)
	assert.NotNil(t, cmd, "the model must re-arm its event subscription")
}

func TestFileReadMsgSubmitsBlobs(t *testing.T) {
	m, ctrl := newTestModel(t)

	m.Update(fileReadMsg{blobs: []workspace.FileBlob{{Name: "picked.pdf", Data: []byte("x")}}})
	assert.Len(t, ctrl.Snapshot().Documents, 1)

	m.Update(fileReadMsg{err: io.ErrUnexpectedEOF})
	assert.Len(t, ctrl.Snapshot().Documents, 1, "a failed read submits nothing")
}

func TestDocumentCursorMovesAndClamps(t *testing.T) {
	m, ctrl := newTestModel(t)
	ctrl.Uploads().Submit([]workspace.FileBlob{{Name: "a.pdf"}, {Name: "b.pdf"}})
	ctrl.Navigate(workspace.ScreenDocuments)
	m = m.refresh()

	updated, _ := m.Update(runeMsg('j'))
	m = updated.(Model)
	assert.Equal(t, 1, m.docCursor)

	updated, _ = m.Update(runeMsg('j'))
	m = updated.(Model)
	assert.Equal(t, 1, m.docCursor, "cursor stops at the last row")

	updated, _ = m.Update(runeMsg('k'))
	m = updated.(Model)
	assert.Equal(t, 0, m.docCursor)

	// Deleting shrinks the set; the cursor clamps on the next snapshot.
	m.docCursor = 1
	ctrl.Uploads().Delete(m.snap.Documents[1].ID)
	updated, _ = m.Update(eventMsg(workspace.Event{Kind: workspace.EventDocumentsChanged}))
	m = updated.(Model)
	assert.Equal(t, 0, m.docCursor)
}

func TestDocumentsEnterSelectsActive(t *testing.T) {
	m, ctrl := newTestModel(t)
	ctrl.Uploads().Submit([]workspace.FileBlob{{Name: "a.pdf"}})
	ctrl.Navigate(workspace.ScreenDocuments)
	m = m.refresh()

	m.Update(keyMsg(tea.KeyEnter))
	snap := ctrl.Snapshot()
	require.NotNil(t, snap.ActiveDocument)
	assert.Equal(t, "a.pdf", snap.ActiveDocument.Name)
}

func TestChatPanelToggleShiftsFocus(t *testing.T) {
	m, ctrl := newTestModel(t)
	ctrl.Navigate(workspace.ScreenDocuments)
	m = m.refresh()

	updated, _ := m.Update(runeMsg('p'))
	m = updated.(Model)
	assert.True(t, ctrl.Snapshot().ChatPanelOpen)
	assert.Equal(t, FocusChatInput, m.focus)

	updated, _ = m.Update(keyMsg(tea.KeyEsc))
	m = updated.(Model)
	assert.Equal(t, FocusList, m.focus)
}

func TestChatEnterSendsTrimmedInput(t *testing.T) {
	m, ctrl := newTestModel(t)
	ctrl.Navigate(workspace.ScreenChat)
	m = m.refresh()

	m.input.SetValue("  hello  ")
	updated, _ := m.Update(keyMsg(tea.KeyEnter))
	m = updated.(Model)

	require.Eventually(t, func() bool {
		return len(ctrl.Snapshot().Messages) >= 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "hello", ctrl.Snapshot().Messages[0].Text)
	assert.Empty(t, m.input.Value())
}

func TestChatNewSessionKey(t *testing.T) {
	m, ctrl := newTestModel(t)
	ctrl.Navigate(workspace.ScreenChat)
	m = m.refresh()
	before := ctrl.Snapshot().ActiveSessionID

	m.Update(keyMsg(tea.KeyCtrlN))
	assert.NotEqual(t, before, ctrl.Snapshot().ActiveSessionID)
	assert.Empty(t, ctrl.Snapshot().Messages)
}

func TestSafeRenderMarkdownFallsBackToRawText(t *testing.T) {
	m, _ := newTestModel(t)
	m.renderer = nil
	assert.Equal(t, "plain **text**", m.safeRenderMarkdown("plain **text**"))
	assert.Equal(t, "", m.safeRenderMarkdown(""))
}

func TestReplyPending(t *testing.T) {
	m, _ := newTestModel(t)
	assert.False(t, m.replyPending())

	m.snap.Messages = []workspace.Message{{Sender: workspace.SenderUser, Text: "q"}}
	assert.True(t, m.replyPending())

	m.snap.Messages = append(m.snap.Messages, workspace.Message{Sender: workspace.SenderAssistant, Text: "a"})
	assert.False(t, m.replyPending())
}

func TestViewRendersEveryScreen(t *testing.T) {
	m, ctrl := newTestModel(t)
	for _, screen := range []workspace.Screen{
		workspace.ScreenAuth,
		workspace.ScreenLanding,
		workspace.ScreenHome,
		workspace.ScreenDocuments,
		workspace.ScreenChat,
	} {
		ctrl.Navigate(screen)
		m = m.refresh()
		assert.NotEmpty(t, m.View(), "screen %s should render", screen)
	}
}

// refresh pulls the latest snapshot the way an eventMsg would.
func (m Model) refresh() Model {
	m.snap = m.ctrl.Snapshot()
	m.clampCursors()
	return m
}
