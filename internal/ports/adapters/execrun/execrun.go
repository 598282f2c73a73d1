// Package execrun runs external tools with captured output and a hard deadline.
package execrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/forPelevin/vidfill/internal/ports"
	"github.com/forPelevin/vidfill/internal/types"
)

// waitDelay bounds how long Wait blocks on stdio after the process is killed.
const waitDelay = 5 * time.Second

type Runner struct {
	log hclog.Logger
}

func New(logger hclog.Logger) *Runner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Runner{log: logger.Named("exec")}
}

// Invoke starts argv[0] with the remaining args and waits for it. When timeout
// elapses or ctx is cancelled the process is killed and awaited.
func (r *Runner) Invoke(ctx context.Context, argv []string, timeout time.Duration) (ports.InvokeResult, error) {
	if len(argv) == 0 {
		return ports.InvokeResult{}, errors.New("empty command")
	}
	if err := ctx.Err(); err != nil {
		return ports.InvokeResult{}, err
	}

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := ports.InvokeResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			r.log.Debug("tool not found", "cmd", argv[0])
			return res, fmt.Errorf("%s: %w", argv[0], types.ErrToolNotFound)
		case ctx.Err() != nil:
			r.log.Debug("invocation cancelled", "cmd", argv[0], "elapsed", elapsed)
			return res, ctx.Err()
		case runCtx.Err() != nil:
			r.log.Debug("invocation timed out", "cmd", argv[0], "timeout", timeout)
			return res, fmt.Errorf("%s after %s: %w", argv[0], timeout, types.ErrTimeout)
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			r.log.Debug("invocation failed", "cmd", argv[0], "error", err)
			return res, fmt.Errorf("run %s: %w", argv[0], err)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	r.log.Debug("invocation finished", "cmd", argv[0], "args", argv[1:], "exit", res.ExitCode, "elapsed", elapsed)
	return res, nil
}
