package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"slurmvision/internal/slurm"
)

// cancelResult is the outcome of one cancellation attempt; a bulk cancel may
// partially fail.
type cancelResult struct {
	ID  string
	Err *slurm.Failure
}

type cancelResultsMsg []cancelResult

// cancelJobsCmd executes a confirmed cancellation for each target and reports
// per-target results. It never mutates displayed state: the records change
// only through the next successful poll. No implicit retry on failure.
func cancelJobsCmd(client *slurm.Client, targets []string, log *slog.Logger) tea.Cmd {
	ids := append([]string(nil), targets...)
	return func() tea.Msg {
		results := make([]cancelResult, 0, len(ids))
		for _, id := range ids {
			fail := client.CancelJob(context.Background(), id)
			if fail != nil {
				log.Warn("cancel failed", "job", id, "err", fail.Message)
			} else {
				log.Info("cancelled job", "job", id)
			}
			results = append(results, cancelResult{ID: id, Err: fail})
		}
		return cancelResultsMsg(results)
	}
}
