package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskwire/internal/config"
	"taskwire/internal/exitcode"
	"taskwire/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "taskwire help" }
func (c *HelpCmd) NeedsGateway() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskwire                                     List all known tasks
  taskwire submit [common flags] <message...>  Send a message for task extraction
  taskwire list [common flags] [--status <s>]  List tasks, optionally by status
  taskwire show [common flags] <ref>           Show one task and its subtasks
  taskwire organize [common flags] <ref>       Break a task into subtasks (interactive)
  taskwire ask [common flags] <ref> <question...>
  taskwire done [common flags] <ref>           Mark a task completed
  taskwire rm [common flags] <ref>             Delete a task
  taskwire reset [common flags]                Forget the current conversation
  taskwire export [common flags] [--list <list-name>]
  taskwire login [common flags]
  taskwire logout [common flags]
  taskwire help
  taskwire version

Common flags:
  --config <dir>    Override config directory
  --gateway <url>   Override gateway base URL
  --quiet           Suppress informational output
  --debug           Print debug logs to stderr
`
