// Package session tracks the conversation thread token issued by the
// reasoning gateway. The token is opaque: it is adopted from responses and
// echoed on subsequent calls, never synthesized client-side.
package session

import (
	"encoding/json"
	"os"
	"sync"
)

// Session holds the continuation token for one logical conversation.
// When created with a path, the token is persisted so a clarification
// dialogue survives across CLI invocations.
type Session struct {
	mu    sync.Mutex
	token string
	path  string // empty for in-memory sessions
}

// New creates an in-memory session with no thread.
func New() *Session {
	return &Session{}
}

// Load creates a session persisted at path, reading any existing token.
// A missing or unreadable file means "no thread".
func Load(path string) *Session {
	s := &Session{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var stored struct {
		ThreadID string `json:"threadId"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return s
	}
	s.token = stored.ThreadID
	return s
}

// Current returns the active token and whether one is held.
func (s *Session) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// Adopt overwrites the current token with one carried by a response. The
// remote side is the authority on thread continuation, so a non-empty token
// always wins. An empty token means the response carried none and the prior
// token is preserved.
func (s *Session) Adopt(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.persist()
}

// Reset clears the token, forcing the next call to start a new conversation
// with no carried context.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if s.path != "" {
		os.Remove(s.path)
	}
}

// persist writes the token file. Best effort: the session stays usable in
// memory if the write fails. Caller holds the lock.
func (s *Session) persist() {
	if s.path == "" {
		return
	}
	data, err := json.Marshal(struct {
		ThreadID string `json:"threadId"`
	}{ThreadID: s.token})
	if err != nil {
		return
	}
	os.WriteFile(s.path, data, 0600)
}
