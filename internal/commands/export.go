package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskwire/internal/backend/googletasks"
	"taskwire/internal/config"
	"taskwire/internal/exitcode"
	"taskwire/internal/service"
)

func init() {
	Register(&ExportCmd{})
}

// ExporterFactory creates an Exporter from config. Overridable for testing.
type ExporterFactory func(ctx context.Context, cfg *config.Config) (Exporter, error)

// Exporter pushes tasks to an external task list.
type Exporter interface {
	Export(ctx context.Context, listName string, items []service.Task) (int, error)
}

// ExportCmd implements the export command: mirror extracted tasks into
// Google Tasks.
type ExportCmd struct {
	listName string
	factory  ExporterFactory
}

// SetFactory overrides the exporter factory (for testing).
func (c *ExportCmd) SetFactory(f ExporterFactory) { c.factory = f }

// SetListName sets the target list (for testing).
func (c *ExportCmd) SetListName(name string) { c.listName = name }

func (c *ExportCmd) Name() string       { return "export" }
func (c *ExportCmd) Synopsis() string   { return "Export tasks to Google Tasks" }
func (c *ExportCmd) Usage() string      { return "taskwire export [--list <list-name>]" }
func (c *ExportCmd) NeedsGateway() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() || !cfg.HasToken() {
		fmt.Fprintln(errOut, "error: not logged in (run: taskwire login)")
		return exitcode.AuthError
	}

	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks to export")
		}
		return exitcode.Success
	}

	factory := c.factory
	if factory == nil {
		factory = func(ctx context.Context, cfg *config.Config) (Exporter, error) {
			return googletasks.New(ctx, cfg)
		}
	}
	exporter, err := factory(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}

	n, err := exporter.Export(ctx, c.listName, tasks)
	if err != nil {
		fmt.Fprintf(errOut, "error: export failed after %d task(s): %v\n", n, err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "exported %d task(s)\n", n)
	}
	return exitcode.Success
}
