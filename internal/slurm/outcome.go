package slurm

import "fmt"

// FailureKind classifies why a poll tick did not produce a usable RecordSet.
type FailureKind int

const (
	// FailTimeout means the external command exceeded its wall-clock bound.
	FailTimeout FailureKind = iota
	// FailExec means the command exited non-zero.
	FailExec
	// FailParse means non-empty output yielded zero parseable records.
	FailParse
)

func (k FailureKind) String() string {
	switch k {
	case FailTimeout:
		return "timeout"
	case FailExec:
		return "execution error"
	case FailParse:
		return "parse failure"
	default:
		return "unknown"
	}
}

// Failure carries a poll-level error together with the query kind it applies
// to. Failures are surfaced to the UI, never fatal to the poll loop.
type Failure struct {
	Kind    FailureKind
	Query   QueryKind
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s query %s: %s", f.Query, f.Kind, f.Message)
}

// Outcome is the immutable result of one poll tick, delivered to the terminal
// session as a message value. Exactly one of Set/Err is meaningful.
type Outcome struct {
	Query QueryKind
	Set   RecordSet
	Err   *Failure
}
