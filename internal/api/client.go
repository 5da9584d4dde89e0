// Package api implements the HTTP client for the DocManager backend.
// The backend owns all document intelligence; this client only moves
// bytes and JSON across the wire.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Service is the backend surface consumed by the workspace coordinators.
type Service interface {
	ListFiles(ctx context.Context) ([]string, error)
	Upload(ctx context.Context, filename string, r io.Reader) error
	DeleteFile(ctx context.Context, name string) error
	ListSessions(ctx context.Context) ([]string, error)
	History(ctx context.Context, sessionID string) ([]HistoryEntry, error)
	Ask(ctx context.Context, sessionID, question string) (Answer, error)
}

// HistoryEntry is one stored question/answer pair from /chat-history.
type HistoryEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Answer is the assistant reply returned by /chat.
type Answer struct {
	Text    string
	Sources []string
}

// DefaultTimeout bounds a single backend request when the caller's
// context carries no deadline.
const DefaultTimeout = 60 * time.Second

// Client talks to the DocManager REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a backend client. A zero timeout falls back to
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type filesResponse struct {
	Files []string `json:"files"`
}

type sessionsResponse struct {
	Sessions []string `json:"sessions"`
}

type historyResponse struct {
	History []HistoryEntry `json:"history"`
}

type chatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// ListFiles returns the names the server already knows about.
func (c *Client) ListFiles(ctx context.Context) ([]string, error) {
	var out filesResponse
	if err := c.getJSON(ctx, "/files", &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// Upload sends one file as a multipart form with field name "file".
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to read file contents: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(payload))
	}
	c.log.Debug("upload complete",
		zap.String("file", filename),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// DeleteFile removes a server-side file by name. Best-effort on the
// caller's side; a non-2xx status is still returned as an error.
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/files/"+url.PathEscape(name), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("delete failed with status %d", resp.StatusCode)
	}
	return nil
}

// ListSessions returns the ids of server-known conversations.
func (c *Client) ListSessions(ctx context.Context) ([]string, error) {
	var out sessionsResponse
	if err := c.getJSON(ctx, "/sessions", &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// History returns the stored question/answer pairs for one session in
// server order.
func (c *Client) History(ctx context.Context, sessionID string) ([]HistoryEntry, error) {
	var out historyResponse
	path := "/chat-history?session_id=" + url.QueryEscape(sessionID)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// Ask sends a question under a session id and returns the assistant
// answer with its optional source citations.
func (c *Client) Ask(ctx context.Context, sessionID, question string) (Answer, error) {
	payload, err := json.Marshal(chatRequest{Question: question, SessionID: sessionID})
	if err != nil {
		return Answer{}, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/chat", bytes.NewReader(payload))
	if err != nil {
		return Answer{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Answer{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Answer{}, fmt.Errorf("failed to read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Answer{}, fmt.Errorf("chat failed with status %d: %s", resp.StatusCode, string(body))
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return Answer{}, fmt.Errorf("failed to parse chat response: %w", err)
	}
	c.log.Debug("chat complete",
		zap.String("session", sessionID),
		zap.Int("answer_len", len(out.Answer)),
		zap.Duration("elapsed", time.Since(start)))
	return Answer{Text: out.Answer, Sources: out.Sources}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	// The http.Client timeout bounds the whole exchange; callers pass a
	// context only for early cancellation.
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
