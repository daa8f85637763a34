package dialog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskwire/internal/dialog"
	"taskwire/internal/ids"
	"taskwire/internal/service"
	"taskwire/internal/session"
	"taskwire/internal/store"
	"taskwire/internal/testutil"
)

var fixedTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newView(svc *testutil.FakeGateway, task service.Task) (*dialog.View, *store.Store, *session.Session) {
	st := store.New()
	sess := session.New()
	v := dialog.NewView(svc, st, sess, &ids.Fixed{Prefix: "gen"}, task)
	v.SetClock(func() time.Time { return fixedTime })
	return v, st, sess
}

func TestView_OpenWithSavedSubtasks(t *testing.T) {
	svc := testutil.NewFakeGateway()
	svc.AddSubtasks("t1",
		service.Subtask{ID: "s1", Title: "Draft outline", ParentID: "t1"},
		service.Subtask{ID: "s2", Title: "Review draft", ParentID: "t1"},
	)
	v, st, _ := newView(svc, service.Task{ID: "t1", Title: "Write report"})

	organized, err := v.Open(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !organized {
		t.Error("expected view to open organized")
	}
	if !v.Organized() {
		t.Error("expected Organized() true")
	}
	if subs := st.Subtasks("t1"); len(subs) != 2 {
		t.Errorf("expected 2 subtasks loaded, got %d", len(subs))
	}
}

func TestView_OpenWithoutSavedSubtasks(t *testing.T) {
	svc := testutil.NewFakeGateway()
	v, st, _ := newView(svc, service.Task{ID: "t1"})

	organized, err := v.Open(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if organized {
		t.Error("expected view to stay unorganized")
	}
	if len(st.Subtasks("t1")) != 0 {
		t.Error("expected no subtasks in store")
	}
}

func TestView_OpenErrorLeavesViewUsable(t *testing.T) {
	svc := testutil.NewFakeGateway()
	svc.ListSubtasksErr = errors.New("boom")
	v, _, _ := newView(svc, service.Task{ID: "t1"})

	organized, err := v.Open(context.Background())
	if err == nil {
		t.Error("expected error surfaced to caller")
	}
	if organized {
		t.Error("expected view unorganized after failed load")
	}

	// The view stays usable: organize still works.
	svc.QueueOrganize(&service.OrganizeResult{
		Subtasks: []service.Subtask{{Title: "Step one"}},
	})
	if err := v.Organize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Organized() {
		t.Error("expected view organized after successful organize")
	}
}

func TestView_CloseDiscardsInFlightPrefetch(t *testing.T) {
	svc := testutil.NewFakeGateway()
	svc.AddSubtasks("t1", service.Subtask{ID: "s1", ParentID: "t1"})
	svc.ListSubtasksStarted = make(chan struct{})
	svc.ListSubtasksRelease = make(chan struct{})
	started := svc.ListSubtasksStarted
	v, st, _ := newView(svc, service.Task{ID: "t1"})

	done := make(chan struct{})
	var organized bool
	var openErr error
	go func() {
		organized, openErr = v.Open(context.Background())
		close(done)
	}()

	<-started
	v.Close()
	close(svc.ListSubtasksRelease)
	<-done

	if openErr != nil {
		t.Fatalf("unexpected error: %v", openErr)
	}
	if organized {
		t.Error("expected discarded prefetch not to organize the view")
	}
	if len(st.Subtasks("t1")) != 0 {
		t.Error("expected no store mutation from discarded prefetch")
	}
}

func TestView_OrganizeSuccess(t *testing.T) {
	svc := testutil.NewFakeGateway()
	svc.QueueOrganize(&service.OrganizeResult{
		Subtasks: []service.Subtask{
			{Title: "Draft outline"},
			{Title: "Review draft", Assignee: "Dana", Status: service.StatusInProgress},
		},
		Messages: []string{"Broke the task into two steps."},
		ThreadID: "thread-1",
	})
	v, st, sess := newView(svc, service.Task{ID: "t1", Title: "Write report", Assignee: "Alex"})

	if err := v.Organize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	turns := v.Turns()
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].Question != "Help me organize this task" {
		t.Errorf("unexpected question: %q", turns[0].Question)
	}
	if turns[0].Answer != "Broke the task into two steps." {
		t.Errorf("unexpected answer: %q", turns[0].Answer)
	}
	if turns[0].Awaiting {
		t.Error("expected turn answered")
	}

	subs := st.Subtasks("t1")
	if len(subs) != 2 {
		t.Fatalf("expected 2 subtasks, got %d", len(subs))
	}
	// Generated identity and defaults.
	if subs[0].ID != "t1-gen-1" {
		t.Errorf("expected generated ID t1-gen-1, got %q", subs[0].ID)
	}
	if subs[0].ParentID != "t1" {
		t.Errorf("expected parent t1, got %q", subs[0].ParentID)
	}
	if subs[0].Assignee != "Alex" {
		t.Errorf("expected assignee inherited from parent, got %q", subs[0].Assignee)
	}
	if subs[0].Status != service.StatusPending {
		t.Errorf("expected pending status, got %q", subs[0].Status)
	}
	// Present fields are untouched.
	if subs[1].Assignee != "Dana" || subs[1].Status != service.StatusInProgress {
		t.Errorf("expected fields preserved, got %+v", subs[1])
	}

	if len(svc.SavedSubtasks) != 2 {
		t.Errorf("expected 2 subtasks persisted, got %d", len(svc.SavedSubtasks))
	}
	if token, _ := sess.Current(); token != "thread-1" {
		t.Errorf("expected thread-1 adopted, got %q", token)
	}
}

func TestView_OrganizeNoMessagesEmitsFallbackTurn(t *testing.T) {
	svc := testutil.NewFakeGateway()
	svc.QueueOrganize(&service.OrganizeResult{
		Subtasks: []service.Subtask{{Title: "Step one"}},
	})
	v, _, _ := newView(svc, service.Task{ID: "t1"})

	if err := v.Organize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	turns := v.Turns()
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].Answer != "Task organized." {
		t.Errorf("expected fallback answer, got %q", turns[0].Answer)
	}
}

func TestView_OrganizeMultipleMessages(t *testing.T) {
	svc := testutil.NewFakeGateway()
	svc.QueueOrganize(&service.OrganizeResult{
		Subtasks: []service.Subtask{{Title: "Step one"}},
		Messages: []string{"Here is the breakdown.", "Watch the deadline.", "Dependencies noted."},
	})
	v, _, _ := newView(svc, service.Task{ID: "t1"})

	if err := v.Organize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	turns := v.Turns()
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[0].Answer != "Here is the breakdown." {
		t.Errorf("unexpected first answer: %q", turns[0].Answer)
	}
	for i, turn := range turns[1:] {
		if turn.Question != "Additional information" {
			t.Errorf("turn %d: unexpected question %q", i+1, turn.Question)
		}
	}
	if turns[1].Answer != "Watch the deadline." || turns[2].Answer != "Dependencies noted." {
		t.Error("expected extra messages in arrival order")
	}
}

func TestView_OrganizeFailureEmitsErrorTurn(t *testing.T) {
	svc := testutil.NewFakeGateway()
	svc.OrganizeErr = errors.New("boom")
	v, st, _ := newView(svc, service.Task{ID: "t1"})

	if err := v.Organize(context.Background()); err != nil {
		t.Fatalf("expected failure absorbed, got %v", err)
	}

	turns := v.Turns()
	if len(turns) != 1 {
		t.Fatalf("expected 1 error turn, got %d", len(turns))
	}
	if turns[0].Answer != "Sorry, I encountered an error while organizing the task." {
		t.Errorf("unexpected error text: %q", turns[0].Answer)
	}
	if v.Organized() {
		t.Error("expected view unorganized after failure")
	}
	if len(st.Subtasks("t1")) != 0 {
		t.Error("expected no subtask mutation on failure")
	}
}

func TestView_OrganizeNilSubtasksKeepsSubtree(t *testing.T) {
	svc := testutil.NewFakeGateway()
	svc.AddSubtasks("t1", service.Subtask{ID: "s1", ParentID: "t1"})
	svc.QueueOrganize(&service.OrganizeResult{
		Subtasks: nil,
		Messages: []string{"Nothing new to add."},
	})
	v, st, _ := newView(svc, service.Task{ID: "t1"})

	if _, err := v.Open(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Organize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	subs := st.Subtasks("t1")
	if len(subs) != 1 || subs[0].ID != "s1" {
		t.Errorf("expected prior subtree kept, got %+v", subs)
	}
}

func TestView_AskResolvesPendingTurn(t *testing.T) {
	svc := testutil.NewFakeGateway()
	svc.AddSubtasks("t1", service.Subtask{ID: "s1", ParentID: "t1"})
	svc.QueueFollowUp(&service.OrganizeResult{
		Subtasks: []service.Subtask{{ID: "s1", Title: "Refined step", ParentID: "t1"}},
		Messages: []string{"Refined the first step."},
		ThreadID: "thread-2",
	})
	v, st, sess := newView(svc, service.Task{ID: "t1"})

	if _, err := v.Open(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Ask(context.Background(), "Can you refine step one?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	turns := v.Turns()
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].Question != "Can you refine step one?" {
		t.Errorf("unexpected question: %q", turns[0].Question)
	}
	if turns[0].Awaiting {
		t.Error("expected turn resolved")
	}
	if turns[0].Answer != "Refined the first step." {
		t.Errorf("unexpected answer: %q", turns[0].Answer)
	}

	subs := st.Subtasks("t1")
	if len(subs) != 1 || subs[0].Title != "Refined step" {
		t.Errorf("expected replaced subtree, got %+v", subs)
	}
	if token, _ := sess.Current(); token != "thread-2" {
		t.Errorf("expected thread-2 adopted, got %q", token)
	}
	if len(svc.FollowCalls) != 1 || svc.FollowCalls[0].TaskID != "t1" {
		t.Errorf("unexpected follow-up calls: %+v", svc.FollowCalls)
	}
}

func TestView_AskFailureLeavesSubtreeIdentical(t *testing.T) {
	svc := testutil.NewFakeGateway()
	svc.AddSubtasks("t1",
		service.Subtask{ID: "s1", Title: "Step one", ParentID: "t1"},
		service.Subtask{ID: "s2", Title: "Step two", ParentID: "t1"},
	)
	svc.FollowErr = errors.New("boom")
	v, st, _ := newView(svc, service.Task{ID: "t1"})

	if _, err := v.Open(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := st.Subtasks("t1")

	if err := v.Ask(context.Background(), "What about risks?"); err != nil {
		t.Fatalf("expected failure absorbed, got %v", err)
	}

	turns := v.Turns()
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].Awaiting {
		t.Error("expected pending turn resolved")
	}
	if turns[0].Answer != "Sorry, I encountered an error while processing your request." {
		t.Errorf("unexpected error text: %q", turns[0].Answer)
	}

	after := st.Subtasks("t1")
	if len(after) != len(before) {
		t.Fatalf("subtree length changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if after[i].ID != before[i].ID || after[i].Title != before[i].Title {
			t.Errorf("subtree entry %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestView_AskMultipleMessagesInsertAfterPending(t *testing.T) {
	svc := testutil.NewFakeGateway()
	svc.QueueOrganize(&service.OrganizeResult{
		Subtasks: []service.Subtask{{Title: "Step one"}},
		Messages: []string{"Organized."},
	})
	svc.QueueFollowUp(&service.OrganizeResult{
		Messages: []string{"Main answer.", "Extra detail."},
	})
	v, _, _ := newView(svc, service.Task{ID: "t1"})

	if err := v.Organize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Ask(context.Background(), "Tell me more"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	turns := v.Turns()
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[1].Question != "Tell me more" || turns[1].Answer != "Main answer." {
		t.Errorf("unexpected follow-up turn: %+v", turns[1])
	}
	if turns[2].Question != "Additional information" || turns[2].Answer != "Extra detail." {
		t.Errorf("unexpected extra turn: %+v", turns[2])
	}
}

func TestView_AskNoMessagesUsesFallbackAnswer(t *testing.T) {
	svc := testutil.NewFakeGateway()
	svc.QueueOrganize(&service.OrganizeResult{
		Subtasks: []service.Subtask{{Title: "Step one"}},
		Messages: []string{"Organized."},
	})
	svc.QueueFollowUp(&service.OrganizeResult{})
	v, _, _ := newView(svc, service.Task{ID: "t1"})

	if err := v.Organize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Ask(context.Background(), "Did you get that?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	turns := v.Turns()
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[1].Answer != "Understood." {
		t.Errorf("expected fallback answer, got %q", turns[1].Answer)
	}
	if turns[1].Awaiting {
		t.Error("turn should be resolved")
	}
}

func TestView_AskEmptyQuestionRejected(t *testing.T) {
	svc := testutil.NewFakeGateway()
	v, _, _ := newView(svc, service.Task{ID: "t1"})

	if err := v.Ask(context.Background(), "  "); !errors.Is(err, dialog.ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
	if len(svc.FollowCalls) != 0 {
		t.Errorf("expected no gateway calls, got %d", len(svc.FollowCalls))
	}
}

func TestView_ClosedRejectsCalls(t *testing.T) {
	svc := testutil.NewFakeGateway()
	v, _, _ := newView(svc, service.Task{ID: "t1"})
	v.Close()

	if _, err := v.Open(context.Background()); !errors.Is(err, dialog.ErrClosed) {
		t.Errorf("Open: expected ErrClosed, got %v", err)
	}
	if err := v.Organize(context.Background()); !errors.Is(err, dialog.ErrClosed) {
		t.Errorf("Organize: expected ErrClosed, got %v", err)
	}
	if err := v.Ask(context.Background(), "question"); !errors.Is(err, dialog.ErrClosed) {
		t.Errorf("Ask: expected ErrClosed, got %v", err)
	}
}

func TestView_IndependentViewsDoNotShareSubtrees(t *testing.T) {
	svc := testutil.NewFakeGateway()
	svc.QueueOrganize(&service.OrganizeResult{
		Subtasks: []service.Subtask{{Title: "A step"}},
	})
	svc.QueueOrganize(&service.OrganizeResult{
		Subtasks: []service.Subtask{{Title: "B step one"}, {Title: "B step two"}},
	})

	st := store.New()
	sess := session.New()
	va := dialog.NewView(svc, st, sess, &ids.Fixed{Prefix: "a"}, service.Task{ID: "ta"})
	vb := dialog.NewView(svc, st, sess, &ids.Fixed{Prefix: "b"}, service.Task{ID: "tb"})

	if err := va.Organize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := vb.Organize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(st.Subtasks("ta")) != 1 {
		t.Errorf("expected 1 subtask for ta, got %d", len(st.Subtasks("ta")))
	}
	if len(st.Subtasks("tb")) != 2 {
		t.Errorf("expected 2 subtasks for tb, got %d", len(st.Subtasks("tb")))
	}
}

func TestView_SaveFailureDoesNotAffectSubtree(t *testing.T) {
	svc := testutil.NewFakeGateway()
	svc.SaveSubtaskErr = errors.New("persist failed")
	svc.QueueOrganize(&service.OrganizeResult{
		Subtasks: []service.Subtask{{Title: "Step one"}},
	})
	v, st, _ := newView(svc, service.Task{ID: "t1"})

	if err := v.Organize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Subtasks("t1")) != 1 {
		t.Error("expected in-memory subtree authoritative despite persist failure")
	}
	if !v.Organized() {
		t.Error("expected view organized despite persist failure")
	}
}
