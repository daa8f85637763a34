package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskwire/internal/config"
	"taskwire/internal/exitcode"
	"taskwire/internal/output"
	"taskwire/internal/service"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command: one task with its saved subtasks.
type ShowCmd struct{}

func (c *ShowCmd) Name() string       { return "show" }
func (c *ShowCmd) Synopsis() string   { return "Show a task and its subtasks" }
func (c *ShowCmd) Usage() string      { return "taskwire show <task-id>" }
func (c *ShowCmd) NeedsGateway() bool { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: task reference required")
		return exitcode.UserError
	}

	task, code := resolveOrReport(ctx, svc, args[0], errOut)
	if code >= 0 {
		return code
	}

	output.FormatTaskDetail(out, task)

	subs, err := svc.ListSubtasks(ctx, task.ID)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	if len(subs) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Subtasks:")
		for i, sub := range subs {
			output.FormatSubtask(out, i+1, sub)
		}
	}
	return exitcode.Success
}
