package slurm

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"sync/atomic"
)

// IDPlaceholder marks where a target identity key is substituted into
// detail and cancel command templates.
const IDPlaceholder = "{id}"

// Query is one configured external query: base command line, optional
// pass-through options, and the schema its output is parsed under.
type Query struct {
	Command []string
	Options []string
	Schema  FieldSchema
}

// Args builds the full argv for the query, substituting id for every
// IDPlaceholder occurrence. When id is non-empty and the template carries no
// placeholder, the id is appended (scancel-style).
func (q Query) Args(id string) []string {
	args := make([]string, 0, len(q.Command)+len(q.Options)+1)
	args = append(args, q.Command...)
	args = append(args, q.Options...)
	return ExpandArgs(args, id)
}

// ExpandArgs substitutes id into an argv template.
func ExpandArgs(args []string, id string) []string {
	if id == "" {
		return args
	}
	out := make([]string, len(args))
	replaced := false
	for i, a := range args {
		if strings.Contains(a, IDPlaceholder) {
			out[i] = strings.ReplaceAll(a, IDPlaceholder, id)
			replaced = true
		} else {
			out[i] = a
		}
	}
	if !replaced {
		out = append(out, id)
	}
	return out
}

// Client issues the configured cluster queries through a Runner. The filter
// toggles are read by the poller goroutines and flipped from the UI thread,
// hence atomics; everything else is immutable after construction.
type Client struct {
	Runner *Runner

	Jobs   Query
	Nodes  Query
	Detail Query
	Cancel []string

	User string

	userOnly    atomic.Bool
	runningOnly atomic.Bool
}

// NewClient wires a Client from the configured queries.
func NewClient(runner *Runner, jobs, nodes, detail Query, cancel []string) *Client {
	return &Client{
		Runner: runner,
		Jobs:   jobs,
		Nodes:  nodes,
		Detail: detail,
		Cancel: cancel,
		User:   CurrentUser(),
	}
}

// ToggleUserFilter flips the user-only query filter and reports the new
// state. Toggles are only ever called from the UI thread.
func (c *Client) ToggleUserFilter() bool {
	v := !c.userOnly.Load()
	c.userOnly.Store(v)
	return v
}

// ToggleRunningFilter flips the running-only query filter and reports the new
// state.
func (c *Client) ToggleRunningFilter() bool {
	v := !c.runningOnly.Load()
	c.runningOnly.Store(v)
	return v
}

// UserFilter reports whether jobs queries are restricted to the current user.
func (c *Client) UserFilter() bool { return c.userOnly.Load() }

// RunningFilter reports whether jobs queries are restricted to running jobs.
func (c *Client) RunningFilter() bool { return c.runningOnly.Load() }

func (c *Client) jobArgs() []string {
	args := c.Jobs.Args("")
	if c.userOnly.Load() && c.User != "" {
		args = append(args, "-u", c.User)
	}
	if c.runningOnly.Load() {
		args = append(args, "--state", "RUNNING")
	}
	return args
}

// FetchJobs runs the job-list query and parses the result.
func (c *Client) FetchJobs(ctx context.Context, seq uint64) Outcome {
	return c.fetch(ctx, KindJobs, c.jobArgs(), c.Jobs.Schema, seq)
}

// FetchNodes runs the node/partition-list query and parses the result.
func (c *Client) FetchNodes(ctx context.Context, seq uint64) Outcome {
	return c.fetch(ctx, KindNodes, c.Nodes.Args(""), c.Nodes.Schema, seq)
}

func (c *Client) fetch(ctx context.Context, kind QueryKind, args []string, schema FieldSchema, seq uint64) Outcome {
	raw, fail := c.Runner.Run(ctx, kind, args)
	if fail != nil {
		return Outcome{Query: kind, Err: fail}
	}
	set, fail := Parse(raw, kind, schema, seq)
	if fail != nil {
		return Outcome{Query: kind, Err: fail}
	}
	return Outcome{Query: kind, Set: set}
}

// FetchDetail runs the on-demand single-job query for the given identity key
// and returns the first parsed record. Detail queries never touch the
// periodic record sets.
func (c *Client) FetchDetail(ctx context.Context, id string) (Record, *Failure) {
	out := c.fetch(ctx, KindDetail, c.Detail.Args(id), c.Detail.Schema, 0)
	if out.Err != nil {
		return nil, out.Err
	}
	if len(out.Set.Records) == 0 {
		return nil, &Failure{
			Kind:    FailParse,
			Query:   KindDetail,
			Message: fmt.Sprintf("no detail output for %s", id),
		}
	}
	return out.Set.Records[0], nil
}

// CancelJob invokes the cancellation command for one identity key.
func (c *Client) CancelJob(ctx context.Context, id string) *Failure {
	_, fail := c.Runner.Run(ctx, KindJobs, ExpandArgs(c.Cancel, id))
	return fail
}

// Check verifies at startup that the configured query and cancel commands can
// be located at all. Ongoing poll failures are survivable; a missing binary
// is not.
func (c *Client) Check() error {
	for _, args := range [][]string{c.Jobs.Command, c.Nodes.Command, c.Detail.Command, c.Cancel} {
		if len(args) == 0 {
			return fmt.Errorf("incomplete command configuration")
		}
		if _, err := exec.LookPath(args[0]); err != nil {
			return fmt.Errorf("unable to communicate with Slurm services: %w", err)
		}
	}
	return nil
}

// CurrentUser returns the invoking operator's username.
func CurrentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}
