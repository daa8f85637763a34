// Package restapi implements the service.Service interface against the
// reasoning gateway's HTTP API. All wire-shape normalization happens here:
// the gateway is not guaranteed to wrap task sequences consistently, so
// every accepted shape is adapted into one canonical result per call type
// before it reaches the rest of the program.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskwire/internal/config"
	"taskwire/internal/service"
)

const (
	// APITimeout is the timeout for CRUD calls.
	APITimeout = 10 * time.Second

	// ReasoningTimeout is the timeout for extraction and decomposition
	// calls, which wait on the remote model.
	ReasoningTimeout = 90 * time.Second
)

// Client implements service.Service over the gateway's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a gateway client from config.
func New(cfg *config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.GatewayURL, "/"),
		http:    &http.Client{},
	}
}

// NewWithBaseURL creates a client against an explicit base URL (for testing).
func NewWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// ProcessMessage implements service.Service.
func (c *Client) ProcessMessage(ctx context.Context, message, threadID string) (*service.ProcessResult, error) {
	ctx, cancel := context.WithTimeout(ctx, ReasoningTimeout)
	defer cancel()

	req := map[string]any{"message": message}
	if threadID != "" {
		req["threadId"] = threadID
	}

	var resp struct {
		Status   string          `json:"status"`
		Data     json.RawMessage `json:"data"`
		ThreadID string          `json:"threadId"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/tasks/process-message", req, &resp); err != nil {
		return nil, wrapError(err)
	}

	result := &service.ProcessResult{Status: resp.Status, ThreadID: resp.ThreadID}
	switch resp.Status {
	case service.ProcessNeedsContext:
		var data struct {
			Questions []string `json:"questions"`
		}
		if len(resp.Data) > 0 {
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return nil, fmt.Errorf("malformed needs_context payload: %w", err)
			}
		}
		result.Questions = data.Questions
		return result, nil
	case service.ProcessSuccess:
		tasks, err := decodeTaskPayload(resp.Data)
		if err != nil {
			return nil, err
		}
		result.Tasks = tasks
		return result, nil
	default:
		return nil, fmt.Errorf("unexpected response status: %q", resp.Status)
	}
}

// OrganizeTask implements service.Service.
func (c *Client) OrganizeTask(ctx context.Context, task service.Task, threadID string) (*service.OrganizeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, ReasoningTimeout)
	defer cancel()

	req := map[string]any{"task": toWireTask(task)}
	if threadID != "" {
		req["threadId"] = threadID
	}
	return c.organizeCall(ctx, "/tasks/organize", req)
}

// AskFollowUp implements service.Service.
func (c *Client) AskFollowUp(ctx context.Context, taskID, question, threadID string) (*service.OrganizeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, ReasoningTimeout)
	defer cancel()

	req := map[string]any{"taskId": taskID, "question": question}
	if threadID != "" {
		req["threadId"] = threadID
	}
	return c.organizeCall(ctx, "/tasks/ask-followup", req)
}

// organizeCall performs a decomposition-shaped call and normalizes the
// response. Subtasks arrive either under "subtasks" or nested under
// "data.tasks"; messages arrive as a string list or a bare string.
func (c *Client) organizeCall(ctx context.Context, path string, req map[string]any) (*service.OrganizeResult, error) {
	var resp struct {
		Subtasks json.RawMessage `json:"subtasks"`
		Message  json.RawMessage `json:"message"`
		ThreadID string          `json:"threadId"`
		Data     struct {
			Tasks json.RawMessage `json:"tasks"`
		} `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, wrapError(err)
	}

	result := &service.OrganizeResult{ThreadID: resp.ThreadID}

	raw := resp.Subtasks
	if !present(raw) {
		raw = resp.Data.Tasks
	}
	if present(raw) {
		var wire []wireSubtask
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, fmt.Errorf("malformed subtasks payload: %w", err)
		}
		result.Subtasks = make([]service.Subtask, len(wire))
		for i, w := range wire {
			result.Subtasks[i] = w.toSubtask()
		}
	}

	msgs, err := decodeMessages(resp.Message)
	if err != nil {
		return nil, err
	}
	result.Messages = msgs
	return result, nil
}

// ListTasks implements service.Service. A cancelled read is no data, no
// error.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var wire []wireTask
	if err := c.doJSON(ctx, http.MethodGet, "/tasks", nil, &wire); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, nil
		}
		return nil, wrapError(err)
	}
	tasks := make([]service.Task, len(wire))
	for i, w := range wire {
		tasks[i] = service.NormalizeTask(w.toTask())
	}
	return tasks, nil
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, id string) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var wire wireTask
	if err := c.doJSON(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &wire); err != nil {
		return service.Task{}, wrapError(err)
	}
	return service.NormalizeTask(wire.toTask()), nil
}

// ListSubtasks implements service.Service. A cancelled read is no data, no
// error.
func (c *Client) ListSubtasks(ctx context.Context, taskID string) ([]service.Subtask, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var wire []wireSubtask
	err := c.doJSON(ctx, http.MethodGet, "/tasks/"+url.PathEscape(taskID)+"/subtasks", nil, &wire)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, nil
		}
		return nil, wrapError(err)
	}
	subs := make([]service.Subtask, len(wire))
	for i, w := range wire {
		subs[i] = w.toSubtask()
	}
	return subs, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, t service.Task) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var wire wireTask
	if err := c.doJSON(ctx, http.MethodPost, "/tasks", toWireTask(t), &wire); err != nil {
		return service.Task{}, wrapError(err)
	}
	return service.NormalizeTask(wire.toTask()), nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, updates map[string]any) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var wire wireTask
	if err := c.doJSON(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), updates, &wire); err != nil {
		return service.Task{}, wrapError(err)
	}
	return service.NormalizeTask(wire.toTask()), nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.doJSON(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil); err != nil {
		return wrapError(err)
	}
	return nil
}

// SaveSubtask implements service.Service.
func (c *Client) SaveSubtask(ctx context.Context, taskID string, st service.Subtask) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	path := "/tasks/" + url.PathEscape(taskID) + "/subtasks"
	if err := c.doJSON(ctx, http.MethodPost, path, toWireSubtask(st), nil); err != nil {
		return wrapError(err)
	}
	return nil
}

// doJSON performs one JSON request. out may be nil when the response body is
// irrelevant.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed response body: %w", err)
	}
	return nil
}

// decodeTaskPayload accepts both success shapes: a bare task array, or an
// object wrapping one under "tasks".
func decodeTaskPayload(data json.RawMessage) ([]service.Task, error) {
	if !present(data) {
		return nil, nil
	}

	var flat []wireTask
	if err := json.Unmarshal(data, &flat); err == nil {
		return toTasks(flat), nil
	}

	var wrapped struct {
		Tasks []wireTask `json:"tasks"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("malformed task payload: %w", err)
	}
	return toTasks(wrapped.Tasks), nil
}

// decodeMessages accepts a message list or a bare string.
func decodeMessages(raw json.RawMessage) ([]string, error) {
	if !present(raw) {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("malformed message payload: %w", err)
	}
	return []string{single}, nil
}

// present reports whether a raw JSON field was set to something other than
// null.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	return err
}
