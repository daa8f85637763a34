package service

import "context"

// Service is the contract for the reasoning gateway and the task backend it
// fronts. All remote calls go through this interface; commands and the
// dialog core never import the HTTP client directly.
//
// Every call accepts a context. List and subtask reads treat cancellation as
// "no data, no error" so a closed view can discard an in-flight prefetch
// without surfacing a failure.
type Service interface {
	// ProcessMessage sends unstructured text for task extraction.
	// threadID may be empty to start a fresh conversation.
	ProcessMessage(ctx context.Context, message, threadID string) (*ProcessResult, error)

	// OrganizeTask asks the gateway to decompose a task into subtasks.
	OrganizeTask(ctx context.Context, task Task, threadID string) (*OrganizeResult, error)

	// AskFollowUp continues a decomposition dialogue with one question.
	AskFollowUp(ctx context.Context, taskID, question, threadID string) (*OrganizeResult, error)

	// ListTasks returns all top-level tasks.
	// Returns (nil, nil) when ctx is cancelled.
	ListTasks(ctx context.Context) ([]Task, error)

	// GetTask returns a single task by ID.
	GetTask(ctx context.Context, id string) (Task, error)

	// ListSubtasks returns the saved subtasks of a task.
	// Returns (nil, nil) when ctx is cancelled.
	ListSubtasks(ctx context.Context, taskID string) ([]Subtask, error)

	// CreateTask persists a new task.
	CreateTask(ctx context.Context, t Task) (Task, error)

	// UpdateTask applies a partial update to a task.
	UpdateTask(ctx context.Context, id string, updates map[string]any) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error

	// SaveSubtask persists one generated subtask under its parent.
	SaveSubtask(ctx context.Context, taskID string, st Subtask) error
}
