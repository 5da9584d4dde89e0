package workspace

import (
	"context"
	"errors"
	"io"
	"sync"

	"docmanager/internal/api"
)

// stubBackend is a controllable api.Service for coordinator tests.
// Gate channels, when set, block the corresponding call until closed so
// tests can order completions deterministically.
type stubBackend struct {
	mu sync.Mutex

	files     []string
	filesErr  error
	filesGate chan struct{}

	uploadErrs map[string]error
	uploaded   []string
	uploadGate chan struct{}

	deleted   []string
	deleteErr error

	sessions    []string
	sessionsErr error

	history    map[string][]api.HistoryEntry
	historyErr error

	answer  api.Answer
	askErr  error
	askGate chan struct{}
	asked   []string
}

var errStub = errors.New("stub failure")

func newStubBackend() *stubBackend {
	return &stubBackend{
		uploadErrs: make(map[string]error),
		history:    make(map[string][]api.HistoryEntry),
	}
}

func waitGate(ctx context.Context, gate chan struct{}) {
	if gate == nil {
		return
	}
	select {
	case <-gate:
	case <-ctx.Done():
	}
}

func (s *stubBackend) ListFiles(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	gate, names, err := s.filesGate, append([]string(nil), s.files...), s.filesErr
	s.mu.Unlock()
	waitGate(ctx, gate)
	return names, err
}

func (s *stubBackend) Upload(ctx context.Context, filename string, r io.Reader) (err error) {
	s.mu.Lock()
	gate := s.uploadGate
	err = s.uploadErrs[filename]
	s.mu.Unlock()
	waitGate(ctx, gate)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.uploaded = append(s.uploaded, filename)
	s.mu.Unlock()
	return nil
}

func (s *stubBackend) DeleteFile(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, name)
	return nil
}

func (s *stubBackend) ListSessions(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sessions...), s.sessionsErr
}

func (s *stubBackend) History(ctx context.Context, sessionID string) ([]api.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return append([]api.HistoryEntry(nil), s.history[sessionID]...), nil
}

func (s *stubBackend) Ask(ctx context.Context, sessionID, question string) (api.Answer, error) {
	s.mu.Lock()
	gate := s.askGate
	s.asked = append(s.asked, question)
	answer, err := s.answer, s.askErr
	s.mu.Unlock()
	waitGate(ctx, gate)
	return answer, err
}

func (s *stubBackend) askedQuestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.asked...)
}

func (s *stubBackend) deletedNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}
