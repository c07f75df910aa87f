package tui

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"slurmvision/internal/config"
	"slurmvision/internal/poller"
	"slurmvision/internal/slurm"
)

// Run owns the terminal for its whole duration: it starts the pollers, hands
// the session model to bubbletea, and on exit stops the pollers and waits for
// their in-flight work before returning the terminal to the caller.
func Run(cfg *config.Config, client *slurm.Client, log *slog.Logger, warnings []string) error {
	m := NewModel(cfg, client, log, warnings)

	interval := cfg.PollInterval.Std()
	m.jobsPoller = poller.New(interval, client.FetchJobs, m.outcomes, log)
	m.nodesPoller = poller.New(interval, client.FetchNodes, m.outcomes, log)

	m.jobsPoller.Start()
	m.nodesPoller.Start()
	defer func() {
		m.jobsPoller.Stop()
		m.nodesPoller.Stop()
		m.jobsPoller.Wait()
		m.nodesPoller.Wait()
	}()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal session: %w", err)
	}
	return nil
}
