package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"taskwire/internal/config"
	"taskwire/internal/exitcode"
	"taskwire/internal/service"
	"taskwire/internal/session"
)

// Task reference errors.
var (
	// ErrTaskNotFound indicates no task matched the reference.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAmbiguousTask indicates more than one task matched a prefix.
	ErrAmbiguousTask = errors.New("ambiguous task reference")
)

// ResolveTask resolves a task reference to a task. An exact ID match wins;
// otherwise the reference is treated as an ID prefix, which must be unique.
func ResolveTask(ctx context.Context, svc service.Service, ref string) (service.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return service.Task{}, ErrTaskNotFound
	}

	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		return service.Task{}, err
	}

	var matches []service.Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return service.Task{}, ErrTaskNotFound
	case 1:
		return matches[0], nil
	default:
		return service.Task{}, ErrAmbiguousTask
	}
}

// resolveOrReport resolves a task reference, printing the error and
// returning an exit code on failure. code is -1 on success.
func resolveOrReport(ctx context.Context, svc service.Service, ref string, errOut io.Writer) (service.Task, int) {
	task, err := ResolveTask(ctx, svc, ref)
	if err == nil {
		return task, -1
	}
	switch {
	case errors.Is(err, ErrTaskNotFound):
		fmt.Fprintf(errOut, "error: task not found: %s\n", ref)
		return service.Task{}, exitcode.UserError
	case errors.Is(err, ErrAmbiguousTask):
		fmt.Fprintf(errOut, "error: ambiguous task reference: %s\n", ref)
		return service.Task{}, exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return service.Task{}, exitcode.BackendError
	}
}

// newSession opens the persisted conversation session for this config dir.
func newSession(cfg *config.Config) *session.Session {
	return session.Load(cfg.ThreadPath())
}

// debugLogf returns a debug log sink: a stderr logger when --debug is set,
// a no-op otherwise.
func debugLogf(cfg *config.Config, errOut io.Writer) func(format string, args ...any) {
	if !cfg.Debug {
		return func(string, ...any) {}
	}
	logger := log.New(errOut, "taskwire: ", 0)
	return logger.Printf
}
