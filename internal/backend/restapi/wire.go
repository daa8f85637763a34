package restapi

import "taskwire/internal/service"

// wireTask is the gateway's task representation.
type wireTask struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Requester   string `json:"requester,omitempty"`
	Assignee    string `json:"assigned_to,omitempty"`
	Status      string `json:"status,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
	ParentID    string `json:"parentId,omitempty"`
}

func (w wireTask) toTask() service.Task {
	return service.Task{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Requester:   w.Requester,
		Assignee:    w.Assignee,
		Status:      w.Status,
		Deadline:    w.Deadline,
		ParentID:    w.ParentID,
	}
}

func toWireTask(t service.Task) wireTask {
	return wireTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Requester:   t.Requester,
		Assignee:    t.Assignee,
		Status:      t.Status,
		Deadline:    t.Deadline,
		ParentID:    t.ParentID,
	}
}

func toTasks(wire []wireTask) []service.Task {
	out := make([]service.Task, len(wire))
	for i, w := range wire {
		out[i] = w.toTask()
	}
	return out
}

// wireSubtask is the gateway's subtask representation. Older responses name
// the title "task_name", newer ones "title"; both are accepted.
type wireSubtask struct {
	ID           string   `json:"id,omitempty"`
	TaskName     string   `json:"task_name,omitempty"`
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	Status       string   `json:"status,omitempty"`
	DueDate      string   `json:"due_date,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	BestApproach string   `json:"best_approach,omitempty"`
	Assignee     string   `json:"assigned_to,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	ParentID     string   `json:"parentId,omitempty"`
}

func (w wireSubtask) toSubtask() service.Subtask {
	title := w.TaskName
	if title == "" {
		title = w.Title
	}
	return service.Subtask{
		ID:           w.ID,
		Title:        title,
		Description:  w.Description,
		Status:       w.Status,
		DueDate:      w.DueDate,
		Priority:     w.Priority,
		BestApproach: w.BestApproach,
		Assignee:     w.Assignee,
		Dependencies: w.Dependencies,
		ParentID:     w.ParentID,
	}
}

func toWireSubtask(st service.Subtask) wireSubtask {
	return wireSubtask{
		ID:           st.ID,
		TaskName:     st.Title,
		Description:  st.Description,
		Status:       st.Status,
		DueDate:      st.DueDate,
		Priority:     st.Priority,
		BestApproach: st.BestApproach,
		Assignee:     st.Assignee,
		Dependencies: st.Dependencies,
		ParentID:     st.ParentID,
	}
}
