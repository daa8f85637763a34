package dialog

import (
	"context"
	"strings"
	"sync"
	"time"

	"taskwire/internal/ids"
	"taskwire/internal/service"
	"taskwire/internal/session"
	"taskwire/internal/store"
)

// View drives the decomposition mode for one open task. It moves from
// notStarted through organizing to organized, then cycles follow-up
// questions one at a time. Views for different tasks are independent; their
// store partitions never overlap.
//
// Gateway failures never escape a view: they are converted into synthetic
// error turns at the dialogue boundary, and the store is left untouched.
type View struct {
	svc     service.Service
	store   *store.Store
	session *session.Session
	gen     ids.Generator
	task    service.Task

	now  func() time.Time
	logf func(format string, args ...any)

	mu        sync.Mutex
	turns     []Turn
	organized bool
	busy      bool // one in-flight call per view, organize or follow-up
	closed    bool
	cancel    context.CancelFunc // cancels the subtask prefetch
}

// NewView creates a decomposition view for the task.
func NewView(svc service.Service, st *store.Store, sess *session.Session, gen ids.Generator, task service.Task) *View {
	return &View{
		svc:     svc,
		store:   st,
		session: sess,
		gen:     gen,
		task:    task,
		now:     time.Now,
		logf:    func(string, ...any) {},
	}
}

// SetClock overrides the turn timestamp source. For tests.
func (v *View) SetClock(now func() time.Time) { v.now = now }

// SetLogf installs a debug log sink for best-effort operations.
func (v *View) SetLogf(logf func(format string, args ...any)) { v.logf = logf }

// Task returns the task this view decomposes.
func (v *View) Task() service.Task { return v.task }

// Open attempts to load previously saved subtasks for the task. If any
// exist the view opens directly organized, skipping the initial organize
// prompt. The load is cancelled by Close: a cancelled or late result is
// discarded and mutates nothing.
//
// Returns whether the view is organized. A read error is returned so the
// caller can mention it, but the view stays usable in the notStarted state.
func (v *View) Open(ctx context.Context) (bool, error) {
	pctx, cancel := context.WithCancel(ctx)
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		cancel()
		return false, ErrClosed
	}
	v.cancel = cancel
	v.mu.Unlock()
	defer cancel()

	subs, err := v.svc.ListSubtasks(pctx, v.task.ID)
	if err != nil {
		return false, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if pctx.Err() != nil || v.closed {
		// The view went away while the read was in flight.
		return false, nil
	}
	if len(subs) == 0 {
		return false, nil
	}
	v.store.ReplaceSubtasks(v.task.ID, subs)
	v.organized = true
	return true, nil
}

// Organize asks the gateway to decompose the task. On success the returned
// subtasks (if any) become the authoritative subtree and the response
// messages become turns; with no messages a single synthetic success turn is
// still emitted so the dialogue never appears empty. On gateway failure a
// single synthetic error turn is emitted and no subtask mutation occurs.
func (v *View) Organize(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.busy {
		v.mu.Unlock()
		return ErrBusy
	}
	v.busy = true
	v.mu.Unlock()
	defer func() {
		v.mu.Lock()
		v.busy = false
		v.mu.Unlock()
	}()

	threadID, _ := v.session.Current()
	res, err := v.svc.OrganizeTask(ctx, v.task, threadID)
	if err != nil {
		v.logf("organize %s: %v", v.task.ID, err)
		v.mu.Lock()
		v.turns = append(v.turns, Turn{
			Question: organizeQuestion,
			Answer:   organizeErrText,
			AskedAt:  v.now(),
		})
		v.mu.Unlock()
		return nil
	}

	v.applySubtasks(ctx, res.Subtasks)

	answer := organizedFallback
	var extra []string
	if len(res.Messages) > 0 {
		answer = res.Messages[0]
		extra = res.Messages[1:]
	}
	v.mu.Lock()
	v.turns = append(v.turns, Turn{
		Question: organizeQuestion,
		Answer:   answer,
		AskedAt:  v.now(),
	})
	for _, msg := range extra {
		v.turns = append(v.turns, Turn{
			Question: additionalInfo,
			Answer:   msg,
			AskedAt:  v.now(),
		})
	}
	v.organized = true
	v.mu.Unlock()

	v.session.Adopt(res.ThreadID)
	return nil
}

// Ask sends one follow-up question. The question is appended as an awaiting
// turn before the call resolves so the dialogue shows it immediately; on
// settlement the pending turn is resolved in place. A second follow-up while
// one is answering is rejected with ErrBusy.
func (v *View) Ask(ctx context.Context, question string) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyMessage
	}
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.busy {
		v.mu.Unlock()
		return ErrBusy
	}
	v.busy = true
	idx := len(v.turns)
	v.turns = append(v.turns, Turn{
		Question: question,
		AskedAt:  v.now(),
		Awaiting: true,
	})
	v.mu.Unlock()
	defer func() {
		v.mu.Lock()
		v.busy = false
		v.mu.Unlock()
	}()

	threadID, _ := v.session.Current()
	res, err := v.svc.AskFollowUp(ctx, v.task.ID, question, threadID)
	if err != nil {
		v.logf("follow-up %s: %v", v.task.ID, err)
		v.resolveTurn(idx, followUpErrText, nil)
		return nil
	}

	v.applySubtasks(ctx, res.Subtasks)

	answer := answerFallback
	var extra []string
	if len(res.Messages) > 0 {
		answer = res.Messages[0]
		extra = res.Messages[1:]
	}
	v.resolveTurn(idx, answer, extra)
	v.session.Adopt(res.ThreadID)
	return nil
}

// Close tears the view down: pending prefetch results are discarded and
// further calls are rejected. Turns live only while the view is open, so
// nothing is persisted.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	if v.cancel != nil {
		v.cancel()
	}
}

// Turns returns a copy of the dialogue so far.
func (v *View) Turns() []Turn {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Turn(nil), v.turns...)
}

// Organized reports whether the initial decomposition has completed.
func (v *View) Organized() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.organized
}

// applySubtasks replaces the subtree when the response carried subtasks and
// persists the adopted set through the gateway. Subtasks == nil means the
// response carried none and the current subtree stands.
func (v *View) applySubtasks(ctx context.Context, subtasks []service.Subtask) {
	if subtasks == nil {
		return
	}
	adopted := make([]service.Subtask, len(subtasks))
	for i, st := range subtasks {
		adopted[i] = v.adoptSubtask(st)
	}
	v.store.ReplaceSubtasks(v.task.ID, adopted)

	// Persistence is best effort; the in-memory subtree is already
	// authoritative for this view.
	for _, st := range adopted {
		if err := v.svc.SaveSubtask(ctx, v.task.ID, st); err != nil {
			v.logf("save subtask %s: %v", st.ID, err)
		}
	}
}

// adoptSubtask fills in identity and defaults for one generated subtask.
// The parent reference is set once here and never reassigned.
func (v *View) adoptSubtask(st service.Subtask) service.Subtask {
	if st.ID == "" {
		st.ID = v.gen.SubtaskID(v.task.ID)
	}
	st.ParentID = v.task.ID
	if st.Assignee == "" {
		st.Assignee = v.task.Assignee
	}
	if st.Assignee == "" {
		st.Assignee = service.DefaultAssignee
	}
	if st.Status == "" {
		st.Status = service.StatusPending
	}
	return st
}

// resolveTurn answers the pending turn in place and inserts any additional
// messages as new turns immediately after it, preserving arrival order.
func (v *View) resolveTurn(idx int, answer string, extra []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.turns[idx].Answer = answer
	v.turns[idx].Awaiting = false
	if len(extra) == 0 {
		return
	}
	inserted := make([]Turn, len(extra))
	for i, msg := range extra {
		inserted[i] = Turn{
			Question: additionalInfo,
			Answer:   msg,
			AskedAt:  v.now(),
		}
	}
	rest := append([]Turn(nil), v.turns[idx+1:]...)
	v.turns = append(v.turns[:idx+1], append(inserted, rest...)...)
}
