package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keyboard command surface.
type KeyMap struct {
	Up             key.Binding
	Down           key.Binding
	ToggleSelect   key.Binding
	Detail         key.Binding
	Help           key.Binding
	Cancel         key.Binding
	ClearSelection key.Binding
	Search         key.Binding
	RunningFilter  key.Binding
	UserFilter     key.Binding
	MyJobsFirst    key.Binding
	AdvanceToggle  key.Binding
	JobsView       key.Binding
	NodesView      key.Binding
	Refresh        key.Binding
	Quit           key.Binding

	Confirm key.Binding
	Dismiss key.Binding
	Copy    key.Binding
}

var keys = KeyMap{
	Up:             key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:           key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
	ToggleSelect:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	Detail:         key.NewBinding(key.WithKeys("enter", "d"), key.WithHelp("enter/d", "details")),
	Help:           key.NewBinding(key.WithKeys("h", "?"), key.WithHelp("h", "help")),
	Cancel:         key.NewBinding(key.WithKeys("backspace", "x"), key.WithHelp("bksp/x", "cancel job(s)")),
	ClearSelection: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear selection")),
	Search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	RunningFilter:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "running only")),
	UserFilter:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "my jobs only")),
	MyJobsFirst:    key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "my jobs first")),
	AdvanceToggle:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "advance on select")),
	JobsView:       key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "jobs")),
	NodesView:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "partitions")),
	Refresh:        key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^r", "refresh")),
	Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

	Confirm: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
	Dismiss: key.NewBinding(key.WithKeys("esc", "n", "q"), key.WithHelp("esc/n", "dismiss")),
	Copy:    key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("^y", "copy")),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.ToggleSelect, k.Detail, k.Cancel, k.Search, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.ToggleSelect, k.Detail, k.Cancel, k.ClearSelection},
		{k.Search, k.RunningFilter, k.UserFilter, k.MyJobsFirst, k.AdvanceToggle},
		{k.JobsView, k.NodesView, k.Refresh, k.Help, k.Quit},
	}
}
