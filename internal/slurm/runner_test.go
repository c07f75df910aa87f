package slurm

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestRunnerCapturesStdout(t *testing.T) {
	r := NewRunner(5*time.Second, nil)

	out, fail := r.Run(context.Background(), KindJobs, []string{"echo", "123|alice|RUNNING"})
	if fail != nil {
		t.Fatalf("unexpected failure: %v", fail)
	}
	if strings.TrimSpace(out) != "123|alice|RUNNING" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRunnerTimeoutKillsProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sleep")
	}
	r := NewRunner(100*time.Millisecond, nil)

	start := time.Now()
	_, fail := r.Run(context.Background(), KindJobs, []string{"sleep", "5"})
	took := time.Since(start)

	if fail == nil {
		t.Fatal("expected a timeout failure")
	}
	if fail.Kind != FailTimeout {
		t.Errorf("expected FailTimeout, got %v", fail.Kind)
	}
	// The subprocess must be killed at the deadline, not waited out.
	if took > 2*time.Second {
		t.Errorf("run blocked %s past the timeout", took)
	}
}

func TestRunnerNonZeroExitIsExecFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	r := NewRunner(5*time.Second, nil)

	_, fail := r.Run(context.Background(), KindNodes, []string{"sh", "-c", "echo broken >&2; exit 3"})
	if fail == nil {
		t.Fatal("expected an exec failure")
	}
	if fail.Kind != FailExec {
		t.Errorf("expected FailExec, got %v", fail.Kind)
	}
	if !strings.Contains(fail.Message, "broken") {
		t.Errorf("expected stderr in message, got %q", fail.Message)
	}
}

func TestRunnerMissingBinaryIsExecFailure(t *testing.T) {
	r := NewRunner(time.Second, nil)

	_, fail := r.Run(context.Background(), KindJobs, []string{"definitely-not-a-command-xyz"})
	if fail == nil {
		t.Fatal("expected a failure for a missing binary")
	}
	if fail.Kind != FailExec {
		t.Errorf("expected FailExec, got %v", fail.Kind)
	}
}

func TestRunnerEmptyCommand(t *testing.T) {
	r := NewRunner(time.Second, nil)

	_, fail := r.Run(context.Background(), KindJobs, nil)
	if fail == nil || fail.Kind != FailExec {
		t.Fatalf("expected FailExec for empty command, got %v", fail)
	}
}
