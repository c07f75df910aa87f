package slurm

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single query subprocess when the caller does not
// configure one.
const DefaultTimeout = 10 * time.Second

// Runner executes external query commands with a hard wall-clock timeout.
// On timeout the subprocess is killed before the failure is returned, so no
// orphaned processes or held descriptors survive a slow cluster.
type Runner struct {
	Timeout time.Duration
	Log     *slog.Logger
}

// NewRunner returns a Runner with the given per-invocation timeout.
func NewRunner(timeout time.Duration, log *slog.Logger) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner{Timeout: timeout, Log: log}
}

// Run executes args as a subprocess and returns its stdout. The query kind is
// only used to tag failures.
func (r *Runner) Run(ctx context.Context, kind QueryKind, args []string) (string, *Failure) {
	if len(args) == 0 {
		return "", &Failure{Kind: FailExec, Query: kind, Message: "empty command"}
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		r.Log.Warn("command timed out", "kind", kind, "cmd", args[0], "timeout", r.Timeout)
		return "", &Failure{
			Kind:    FailTimeout,
			Query:   kind,
			Message: fmt.Sprintf("%s did not finish within %s", args[0], r.Timeout),
		}
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		r.Log.Warn("command failed", "kind", kind, "cmd", args[0], "err", err)
		return "", &Failure{Kind: FailExec, Query: kind, Message: msg}
	}

	r.Log.Debug("command finished", "kind", kind, "cmd", args[0], "took", time.Since(start))
	return stdout.String(), nil
}
