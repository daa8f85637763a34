// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskwire/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// FakeGateway is an in-memory implementation of service.Service for
// testing. Reasoning calls are scripted: each call pops the next queued
// result. CRUD calls operate on in-memory state.
type FakeGateway struct {
	mu       sync.Mutex
	tasks    []service.Task
	subtasks map[string][]service.Subtask

	processQueue  []*service.ProcessResult
	organizeQueue []*service.OrganizeResult
	followQueue   []*service.OrganizeResult

	// Recorded inputs, in call order.
	ProcessCalls  []ProcessCall
	OrganizeCalls []OrganizeCall
	FollowCalls   []FollowCall
	SavedSubtasks []service.Subtask

	// Error injection.
	ProcessErr      error
	OrganizeErr     error
	FollowErr       error
	ListTasksErr    error
	GetTaskErr      error
	ListSubtasksErr error
	CreateTaskErr   error
	UpdateTaskErr   error
	DeleteTaskErr   error
	SaveSubtaskErr  error

	// ListSubtasksStarted is closed when ListSubtasks begins, and
	// ListSubtasksRelease blocks it until closed. Both are optional; leave
	// nil for immediate returns.
	ListSubtasksStarted chan struct{}
	ListSubtasksRelease chan struct{}
}

// ProcessCall records one ProcessMessage invocation.
type ProcessCall struct {
	Message  string
	ThreadID string
}

// OrganizeCall records one OrganizeTask invocation.
type OrganizeCall struct {
	Task     service.Task
	ThreadID string
}

// FollowCall records one AskFollowUp invocation.
type FollowCall struct {
	TaskID   string
	Question string
	ThreadID string
}

// NewFakeGateway creates an empty fake gateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{subtasks: make(map[string][]service.Subtask)}
}

// AddTask seeds a stored task.
func (f *FakeGateway) AddTask(t service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
}

// AddSubtasks seeds stored subtasks for a parent.
func (f *FakeGateway) AddSubtasks(parentID string, subs ...service.Subtask) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subtasks[parentID] = append(f.subtasks[parentID], subs...)
}

// QueueProcess scripts the next ProcessMessage result.
func (f *FakeGateway) QueueProcess(res *service.ProcessResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processQueue = append(f.processQueue, res)
}

// QueueOrganize scripts the next OrganizeTask result.
func (f *FakeGateway) QueueOrganize(res *service.OrganizeResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.organizeQueue = append(f.organizeQueue, res)
}

// QueueFollowUp scripts the next AskFollowUp result.
func (f *FakeGateway) QueueFollowUp(res *service.OrganizeResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followQueue = append(f.followQueue, res)
}

// ProcessMessage implements service.Service.
func (f *FakeGateway) ProcessMessage(ctx context.Context, message, threadID string) (*service.ProcessResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ProcessCalls = append(f.ProcessCalls, ProcessCall{Message: message, ThreadID: threadID})
	if f.ProcessErr != nil {
		return nil, f.ProcessErr
	}
	if len(f.processQueue) == 0 {
		return nil, fmt.Errorf("no scripted process result")
	}
	res := f.processQueue[0]
	f.processQueue = f.processQueue[1:]
	return res, nil
}

// OrganizeTask implements service.Service.
func (f *FakeGateway) OrganizeTask(ctx context.Context, task service.Task, threadID string) (*service.OrganizeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OrganizeCalls = append(f.OrganizeCalls, OrganizeCall{Task: task, ThreadID: threadID})
	if f.OrganizeErr != nil {
		return nil, f.OrganizeErr
	}
	if len(f.organizeQueue) == 0 {
		return nil, fmt.Errorf("no scripted organize result")
	}
	res := f.organizeQueue[0]
	f.organizeQueue = f.organizeQueue[1:]
	return res, nil
}

// AskFollowUp implements service.Service.
func (f *FakeGateway) AskFollowUp(ctx context.Context, taskID, question, threadID string) (*service.OrganizeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FollowCalls = append(f.FollowCalls, FollowCall{TaskID: taskID, Question: question, ThreadID: threadID})
	if f.FollowErr != nil {
		return nil, f.FollowErr
	}
	if len(f.followQueue) == 0 {
		return nil, fmt.Errorf("no scripted follow-up result")
	}
	res := f.followQueue[0]
	f.followQueue = f.followQueue[1:]
	return res, nil
}

// ListTasks implements service.Service.
func (f *FakeGateway) ListTasks(ctx context.Context) ([]service.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	if ctx.Err() != nil {
		return nil, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]service.Task(nil), f.tasks...), nil
}

// GetTask implements service.Service.
func (f *FakeGateway) GetTask(ctx context.Context, id string) (service.Task, error) {
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return service.Task{}, ErrNotFound
}

// ListSubtasks implements service.Service. When the Started/Release
// channels are set, the call signals start and blocks until released,
// letting tests race it against view closure.
func (f *FakeGateway) ListSubtasks(ctx context.Context, taskID string) ([]service.Subtask, error) {
	if f.ListSubtasksStarted != nil {
		close(f.ListSubtasksStarted)
		f.ListSubtasksStarted = nil
	}
	if f.ListSubtasksRelease != nil {
		select {
		case <-f.ListSubtasksRelease:
		case <-ctx.Done():
			return nil, nil
		}
	}
	if f.ListSubtasksErr != nil {
		return nil, f.ListSubtasksErr
	}
	if ctx.Err() != nil {
		return nil, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]service.Subtask(nil), f.subtasks[taskID]...), nil
}

// CreateTask implements service.Service.
func (f *FakeGateway) CreateTask(ctx context.Context, t service.Task) (service.Task, error) {
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service. Only status updates are modeled.
func (f *FakeGateway) UpdateTask(ctx context.Context, id string, updates map[string]any) (service.Task, error) {
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			if v, ok := updates["status"].(string); ok {
				f.tasks[i].Status = v
			}
			return f.tasks[i], nil
		}
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeGateway) DeleteTask(ctx context.Context, id string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// SaveSubtask implements service.Service.
func (f *FakeGateway) SaveSubtask(ctx context.Context, taskID string, st service.Subtask) error {
	if f.SaveSubtaskErr != nil {
		return f.SaveSubtaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SavedSubtasks = append(f.SavedSubtasks, st)
	return nil
}
