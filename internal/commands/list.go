package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"taskwire/internal/config"
	"taskwire/internal/exitcode"
	"taskwire/internal/output"
	"taskwire/internal/service"
	"taskwire/internal/store"
)

// clockNow is the time source for urgency buckets.
var clockNow = time.Now

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command. It is also the default when taskwire
// runs with no arguments.
type ListCmd struct {
	status string
}

// SetStatus sets the status filter (for testing).
func (c *ListCmd) SetStatus(status string) {
	c.status = status
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "taskwire list [--status <status>]" }
func (c *ListCmd) NeedsGateway() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.status != "" && !validStatus(c.status) {
		fmt.Fprintf(errOut, "error: invalid status: %s\n", c.status)
		return exitcode.UserError
	}

	st := store.New()
	if err := st.LoadAll(ctx, svc); err != nil {
		fmt.Fprintf(errOut, "error: failed to load tasks: %v\n", err)
		return exitcode.BackendError
	}

	now := clockNow()
	shown := 0
	for _, t := range st.Tasks() {
		if c.status != "" && t.Status != c.status {
			continue
		}
		shown++
		output.FormatTask(out, shown, t, now)
	}
	if shown == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}

func validStatus(s string) bool {
	switch s {
	case service.StatusPending, service.StatusInProgress, service.StatusCompleted:
		return true
	}
	return false
}
