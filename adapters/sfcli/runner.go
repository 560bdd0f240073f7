// Package sfcli invokes the platform deployment CLI as a subprocess. The
// tool is a black box: it takes a directory of descriptor files and an org
// alias, and reports success through its exit code.
package sfcli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/metagate/metagate/domain/deploy"
	"github.com/metagate/metagate/ports"
)

// Runner shells out to the deployment CLI. Settings can be swapped at
// runtime via UpdateConfig; in-flight deployments keep the values they
// started with.
type Runner struct {
	settings atomic.Pointer[settings]
	log      zerolog.Logger
}

type settings struct {
	bin         string
	waitMinutes int
	timeout     time.Duration
}

// Options configures the runner.
type Options struct {
	// Bin is the executable to invoke. Defaults to "sf" on PATH.
	Bin string

	// WaitMinutes bounds how long the tool itself polls the org for the
	// deployment to finish. Passed through as the tool's --wait flag.
	WaitMinutes int

	// Timeout is a process-level backstop on top of the tool's own wait.
	// Zero means no backstop.
	Timeout time.Duration
}

// New creates a runner for the deployment CLI.
func New(opts Options, log zerolog.Logger) *Runner {
	r := &Runner{log: log}
	r.UpdateConfig(opts)
	return r
}

// UpdateConfig swaps the tool invocation settings. Safe to call while
// deployments are running.
func (r *Runner) UpdateConfig(opts Options) {
	if opts.Bin == "" {
		opts.Bin = "sf"
	}
	if opts.WaitMinutes <= 0 {
		opts.WaitMinutes = 10
	}
	r.settings.Store(&settings{
		bin:         opts.Bin,
		waitMinutes: opts.WaitMinutes,
		timeout:     opts.Timeout,
	})
}

// Deploy runs the tool against a staged metadata directory. Arguments are
// passed as discrete values, never through a shell, because the object name
// and org alias originate from request data.
//
// The captured output is returned for both outcomes; on failure the caller
// gets whatever the tool printed before dying plus a non-nil error.
func (r *Runner) Deploy(ctx context.Context, metadataDir, orgAlias string) (deploy.ToolOutput, error) {
	s := r.settings.Load()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args := []string{
		"project", "deploy", "start",
		"--metadata-dir", metadataDir,
		"--target-org", orgAlias,
		"--wait", strconv.Itoa(s.waitMinutes),
	}

	r.log.Debug().
		Str("bin", s.bin).
		Strs("args", args).
		Msg("invoking deployment tool")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := deploy.ToolOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, fmt.Errorf("deployment tool timed out: %w", ctxErr)
		}
		return out, fmt.Errorf("deployment tool: %w", err)
	}

	return out, nil
}

// Ensure interface compliance.
var _ ports.ToolRunner = (*Runner)(nil)
