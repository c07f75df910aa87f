package tui

import (
	"context"
	"os"
	"strings"

	osc52 "github.com/aymanbagabas/go-osc52/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"slurmvision/internal/slurm"
)

type outcomeMsg slurm.Outcome

type detailMsg struct {
	id     string
	record slurm.Record
	err    *slurm.Failure
}

// waitForOutcome blocks on the shared outcome channel and converts the next
// delivery into a message. Re-issued after every receive, so outcomes apply
// to the session strictly in channel order.
func waitForOutcome(ch <-chan slurm.Outcome) tea.Cmd {
	return func() tea.Msg {
		out, ok := <-ch
		if !ok {
			return nil
		}
		return outcomeMsg(out)
	}
}

// fetchDetailCmd runs the on-demand single-job query.
func fetchDetailCmd(client *slurm.Client, id string) tea.Cmd {
	return func() tea.Msg {
		rec, fail := client.FetchDetail(context.Background(), id)
		return detailMsg{id: id, record: rec, err: fail}
	}
}

// osc52CopyCmd copies text to the system clipboard via the terminal.
func osc52CopyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		seq := osc52.New(text).Limit(100 * 1024)

		termName := strings.ToLower(os.Getenv("TERM"))
		if tmux := os.Getenv("TMUX"); tmux != "" || strings.HasPrefix(termName, "tmux") {
			seq = seq.Tmux()
		} else if strings.HasPrefix(termName, "screen") {
			seq = seq.Screen()
		}

		_, _ = seq.WriteTo(os.Stdout)
		return nil
	}
}

func initialWindowSizeCmd() tea.Cmd {
	return func() tea.Msg {
		width, height := detectTerminalSize()
		return tea.WindowSizeMsg{Width: width, Height: height}
	}
}

func detectTerminalSize() (int, int) {
	width, height, err := term.GetSize(os.Stdout.Fd())
	if err != nil || width <= 0 || height <= 0 {
		return 80, 24
	}
	return width, height
}
