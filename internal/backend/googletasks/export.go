// Package googletasks exports extracted tasks to Google Tasks so they show
// up in the user's regular task clients. Export is one-way: the reasoning
// gateway stays the source of truth.
package googletasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskwire/internal/config"
	"taskwire/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// APITimeout is the timeout for API calls.
	APITimeout = 10 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"
)

// Exporter pushes tasks into Google Tasks.
type Exporter struct {
	svc *tasks.Service
}

// New creates an exporter. Requires oauth_client.json and token.json in the
// config dir (see the login command).
func New(ctx context.Context, cfg *config.Config) (*Exporter, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Token source auto-refreshes; refreshed tokens live only in memory.
	tokenSource := oauthConfig.TokenSource(ctx, &token)
	httpClient := oauth2.NewClient(ctx, tokenSource)

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	return &Exporter{svc: svc}, nil
}

// Export inserts the given tasks into the named list, creating the list if
// it does not exist. An empty listName targets the default list. Returns the
// number of tasks inserted.
func (e *Exporter) Export(ctx context.Context, listName string, items []service.Task) (int, error) {
	listID := DefaultListID
	if listName != "" {
		id, err := e.resolveOrCreateList(ctx, listName)
		if err != nil {
			return 0, err
		}
		listID = id
	}

	inserted := 0
	for _, t := range items {
		gt := &tasks.Task{
			Title: t.Title,
			Notes: notes(t),
		}
		if due, ok := parseDeadline(t.Deadline); ok {
			gt.Due = due.Format(time.RFC3339)
		}
		if t.Status == service.StatusCompleted {
			gt.Status = "completed"
		}

		callCtx, cancel := context.WithTimeout(ctx, APITimeout)
		_, err := e.svc.Tasks.Insert(listID, gt).Context(callCtx).Do()
		cancel()
		if err != nil {
			return inserted, wrapError(err)
		}
		inserted++
	}
	return inserted, nil
}

// resolveOrCreateList finds a list by name (case-insensitive, trimmed) or
// creates it.
func (e *Exporter) resolveOrCreateList(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	nameLower := strings.ToLower(strings.TrimSpace(name))

	var found string
	err := e.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			if strings.ToLower(strings.TrimSpace(list.Title)) == nameLower {
				found = list.Id
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}
	if found != "" {
		return found, nil
	}

	created, err := e.svc.Tasklists.Insert(&tasks.TaskList{Title: name}).Context(ctx).Do()
	if err != nil {
		return "", wrapError(err)
	}
	return created.Id, nil
}

// notes renders the task's structured fields into the free-text notes.
func notes(t service.Task) string {
	var b strings.Builder
	if t.Description != "" {
		b.WriteString(t.Description)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Requested by: %s\n", t.Requester)
	fmt.Fprintf(&b, "Assigned to: %s\n", t.Assignee)
	fmt.Fprintf(&b, "Status: %s", t.Status)
	return b.String()
}

// parseDeadline accepts the date formats the gateway has been seen to emit.
func parseDeadline(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()
	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("token expired or revoked (run: taskwire login)")
	}
	if strings.Contains(errStr, "404") {
		return fmt.Errorf("not found")
	}
	return err
}
