package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
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
	Register(&OrganizeCmd{})
}

// OrganizeCmd implements the organize command: an interactive decomposition
// dialogue for one task. Follow-up questions are read line by line from in;
// the dialogue ends on EOF or "quit".
type OrganizeCmd struct {
	in io.Reader // defaults to stdin; settable for testing
}

// SetInput sets the question source (for testing).
func (c *OrganizeCmd) SetInput(in io.Reader) {
	c.in = in
}

func (c *OrganizeCmd) Name() string       { return "organize" }
func (c *OrganizeCmd) Synopsis() string   { return "Decompose a task into subtasks" }
func (c *OrganizeCmd) Usage() string      { return "taskwire organize <task-id>" }
func (c *OrganizeCmd) NeedsGateway() bool { return true }

func (c *OrganizeCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *OrganizeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: task reference required")
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
		fmt.Fprintf(errOut, "warning: failed to load saved subtasks: %v\n", err)
	}
	if organized {
		if !cfg.Quiet {
			fmt.Fprintln(out, "loaded saved subtasks")
		}
	} else {
		if !cfg.Quiet {
			fmt.Fprintln(out, "organizing task...")
		}
		if err := view.Organize(ctx); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
	}
	c.render(out, st, view)

	if !cfg.Quiet {
		printSuggestions(out)
	}

	in := c.in
	if in == nil {
		in = os.Stdin
	}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		question, ok := expandSuggestion(line)
		if !ok {
			fmt.Fprintf(errOut, "error: unknown suggestion: %s\n", line)
			continue
		}
		if err := view.Ask(ctx, question); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			continue
		}
		c.render(out, st, view)
	}

	return exitcode.Success
}

// render prints the dialogue so far and the current subtask sidebar.
func (c *OrganizeCmd) render(out io.Writer, st *store.Store, view *dialog.View) {
	fmt.Fprintln(out, output.Separator)
	for _, turn := range view.Turns() {
		output.FormatTurn(out, turn)
	}
	subs := st.Subtasks(view.Task().ID)
	if len(subs) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Subtasks:")
		for i, sub := range subs {
			output.FormatSubtask(out, i+1, sub)
		}
	}
	fmt.Fprintln(out, output.Separator)
}

// printSuggestions lists the canned questions with their shorthand.
func printSuggestions(out io.Writer) {
	fmt.Fprintln(out, "Suggested questions (type ?1-?5, your own question, or quit):")
	for i, q := range dialog.SuggestedQuestions {
		fmt.Fprintf(out, "  ?%d  %s\n", i+1, q)
	}
}

// expandSuggestion maps ?N shorthand to the canned question; any other text
// passes through unchanged.
func expandSuggestion(line string) (string, bool) {
	if !strings.HasPrefix(line, "?") {
		return line, true
	}
	n, err := strconv.Atoi(line[1:])
	if err != nil || n < 1 || n > len(dialog.SuggestedQuestions) {
		return "", false
	}
	return dialog.SuggestedQuestions[n-1], true
}
