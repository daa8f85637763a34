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
	Register(&ResetCmd{})
}

// ResetCmd implements the reset command: drop the current conversation
// thread so the next submission starts with no carried context.
type ResetCmd struct{}

func (c *ResetCmd) Name() string       { return "reset" }
func (c *ResetCmd) Synopsis() string   { return "Drop the current conversation thread" }
func (c *ResetCmd) Usage() string      { return "taskwire reset" }
func (c *ResetCmd) NeedsGateway() bool { return false }

func (c *ResetCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ResetCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	sess := newSession(cfg)
	_, had := sess.Current()
	sess.Reset()
	if !cfg.Quiet {
		if had {
			fmt.Fprintln(out, "conversation reset")
		} else {
			fmt.Fprintln(out, "no active conversation")
		}
	}
	return exitcode.Success
}
