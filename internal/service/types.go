// Package service defines the backend-agnostic interface for the reasoning
// gateway, plus the canonical domain types. Wire shapes never leave the
// backend package; commands and the dialog core only see these types.
package service

// Task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Defaults applied when the gateway omits a field.
const (
	DefaultRequester = "Unknown"
	DefaultAssignee  = "Unassigned"
)

// Task is a unit of work extracted from a message.
type Task struct {
	ID          string
	Title       string
	Description string
	Requester   string
	Assignee    string
	Status      string // pending, in_progress, completed
	Deadline    string // date, backend-owned format
	ParentID    string // non-empty for subtasks; set once at creation
}

// Subtask is a refinement of a parent Task produced by the decomposition
// dialogue. ID may be empty when the gateway did not assign one; display
// then falls back to positional index.
type Subtask struct {
	ID           string
	Title        string
	Description  string
	Status       string
	DueDate      string
	Priority     string // Low, Medium, High
	BestApproach string
	Assignee     string
	Dependencies []string
	ParentID     string
}

// NormalizeTask fills in the documented defaults for fields the gateway may
// omit.
func NormalizeTask(t Task) Task {
	if t.Requester == "" {
		t.Requester = DefaultRequester
	}
	if t.Assignee == "" {
		t.Assignee = DefaultAssignee
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	return t
}

// ProcessResult statuses.
const (
	ProcessSuccess      = "success"
	ProcessNeedsContext = "needs_context"
)

// ProcessResult is the canonical outcome of a process-message call. Exactly
// one of Tasks or Questions is meaningful, selected by Status.
type ProcessResult struct {
	Status    string
	Tasks     []Task
	Questions []string
	ThreadID  string
}

// OrganizeResult is the canonical outcome of an organize-task or follow-up
// call. Subtasks == nil means the response carried no subtasks and the
// current subtree must be kept; an empty non-nil slice is an authoritative
// empty subtree.
type OrganizeResult struct {
	Subtasks []Subtask
	Messages []string
	ThreadID string
}
