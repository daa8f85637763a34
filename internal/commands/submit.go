package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskwire/internal/config"
	"taskwire/internal/dialog"
	"taskwire/internal/exitcode"
	"taskwire/internal/output"
	"taskwire/internal/service"
	"taskwire/internal/store"
)

func init() {
	Register(&SubmitCmd{})
}

// SubmitCmd implements the submit command: paste text, get tasks.
type SubmitCmd struct{}

func (c *SubmitCmd) Name() string       { return "submit" }
func (c *SubmitCmd) Synopsis() string   { return "Extract tasks from pasted text" }
func (c *SubmitCmd) Usage() string      { return "taskwire submit <text...>" }
func (c *SubmitCmd) NeedsGateway() bool { return true }

func (c *SubmitCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SubmitCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(errOut, "error: message required")
		return exitcode.UserError
	}

	sess := newSession(cfg)
	st := store.New()
	// Fail open: a load failure is reported but does not block submission.
	if err := st.LoadAll(ctx, svc); err != nil {
		fmt.Fprintf(errOut, "warning: failed to load tasks: %v\n", err)
	}

	ingest := dialog.NewIngest(svc, st, sess)
	res, err := ingest.Submit(ctx, text)
	if err != nil {
		if errors.Is(err, dialog.ErrEmptyMessage) {
			fmt.Fprintln(errOut, "error: message required")
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: %s: %v\n", ingest.Err(), err)
		return exitcode.BackendError
	}

	if res.NeedsContext {
		output.FormatQuestions(out, res.Questions)
		if _, ok := sess.Current(); ok && !cfg.Quiet {
			fmt.Fprintln(out, "Reply with 'taskwire submit <answer>' to continue this conversation.")
		}
		return exitcode.Success
	}

	if len(res.Tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks extracted")
		}
		return exitcode.Success
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "extracted %d task(s):\n", len(res.Tasks))
	}
	now := clockNow()
	for i, t := range res.Tasks {
		output.FormatTask(out, i+1, t, now)
	}
	return exitcode.Success
}
