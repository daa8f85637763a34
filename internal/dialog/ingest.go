package dialog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"taskwire/internal/service"
	"taskwire/internal/session"
	"taskwire/internal/store"
)

// Ingest drives the message-ingestion mode: unstructured text in, extracted
// tasks out. It owns the pending clarification questions and the last
// user-visible error, mirroring what a banner above the input would show.
type Ingest struct {
	svc     service.Service
	store   *store.Store
	session *session.Session

	mu         sync.Mutex
	submitting bool
	questions  []string
	lastErr    string
}

// NewIngest creates an ingestion driver.
func NewIngest(svc service.Service, st *store.Store, sess *session.Session) *Ingest {
	return &Ingest{svc: svc, store: st, session: sess}
}

// SubmitResult is the displayable outcome of one submission.
type SubmitResult struct {
	// NeedsContext is true when the gateway asked clarifying questions
	// instead of extracting tasks.
	NeedsContext bool

	// Tasks are the newly extracted tasks, already normalized and appended
	// to the store. Empty when NeedsContext is true.
	Tasks []service.Task

	// Questions are the clarifying questions to display verbatim.
	Questions []string
}

// Submit sends one message through the gateway and reconciles the response.
//
// Empty input and concurrent submissions are rejected up front. On success
// the extracted tasks are appended to the store and pending questions are
// cleared; on needs_context the questions are recorded and no task is
// touched; on transport failure tasks and thread token stay untouched and a
// user-visible error is recorded. The in-flight flag always clears on
// settlement, whichever path is taken.
func (g *Ingest) Submit(ctx context.Context, text string) (*SubmitResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	g.mu.Lock()
	if g.submitting {
		g.mu.Unlock()
		return nil, ErrBusy
	}
	g.submitting = true
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.submitting = false
		g.mu.Unlock()
	}()

	threadID, _ := g.session.Current()
	res, err := g.svc.ProcessMessage(ctx, text, threadID)
	if err != nil {
		g.mu.Lock()
		g.lastErr = "Failed to process message"
		g.mu.Unlock()
		return nil, fmt.Errorf("process message: %w", err)
	}

	if res.Status == service.ProcessNeedsContext {
		questions := append([]string(nil), res.Questions...)
		g.mu.Lock()
		g.questions = questions
		g.lastErr = ""
		g.mu.Unlock()
		g.session.Adopt(res.ThreadID)
		return &SubmitResult{NeedsContext: true, Questions: questions}, nil
	}

	tasks := make([]service.Task, len(res.Tasks))
	for i, t := range res.Tasks {
		tasks[i] = service.NormalizeTask(t)
	}
	g.store.AppendExtracted(tasks)
	g.mu.Lock()
	g.questions = nil
	g.lastErr = ""
	g.mu.Unlock()
	g.session.Adopt(res.ThreadID)
	return &SubmitResult{Tasks: tasks}, nil
}

// Questions returns the pending clarification questions, if any.
func (g *Ingest) Questions() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.questions...)
}

// Err returns the last user-visible error message, empty when the last
// submission settled cleanly.
func (g *Ingest) Err() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

// Submitting reports whether a submission is in flight.
func (g *Ingest) Submitting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.submitting
}
