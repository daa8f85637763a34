package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskwire/internal/config"
	"taskwire/internal/dialog"
	"taskwire/internal/exitcode"
	"taskwire/internal/ids"
	"taskwire/internal/output"
	"taskwire/internal/service"
	"taskwire/internal/store"
)

func init() {
	Register(&AskCmd{})
}

// AskCmd implements the ask command: one follow-up question against a task
// that has already been organized.
type AskCmd struct{}

func (c *AskCmd) Name() string       { return "ask" }
func (c *AskCmd) Synopsis() string   { return "Ask a follow-up question about a task" }
func (c *AskCmd) Usage() string      { return "taskwire ask <task-id> <question...>" }
func (c *AskCmd) NeedsGateway() bool { return true }

func (c *AskCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AskCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: task reference required")
		return exitcode.UserError
	}
	question := strings.Join(args[1:], " ")
	if strings.TrimSpace(question) == "" {
		fmt.Fprintln(errOut, "error: question required")
		return exitcode.UserError
	}

	task, code := resolveOrReport(ctx, svc, args[0], errOut)
	if code >= 0 {
		return code
	}

	sess := newSession(cfg)
	st := store.New()
	view := dialog.NewView(svc, st, sess, ids.NewRandom(), task)
	view.SetLogf(debugLogf(cfg, errOut))
	defer view.Close()

	organized, err := view.Open(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to load saved subtasks: %v\n", err)
		return exitcode.BackendError
	}
	if !organized {
		fmt.Fprintf(errOut, "error: task has no subtasks yet (run: taskwire organize %s)\n", task.ID)
		return exitcode.UserError
	}

	if err := view.Ask(ctx, question); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	for _, turn := range view.Turns() {
		output.FormatTurn(out, turn)
	}
	if subs := st.Subtasks(task.ID); len(subs) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Subtasks:")
		for i, sub := range subs {
			output.FormatSubtask(out, i+1, sub)
		}
	}
	return exitcode.Success
}
