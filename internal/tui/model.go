// Package tui is the terminal session: a single bubbletea event loop that
// owns all application state. Poll results and keyboard input arrive as
// messages on the same ordered queue, so the renderer never observes a torn
// update.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"slurmvision/internal/config"
	"slurmvision/internal/poller"
	"slurmvision/internal/slurm"
)

type viewKind int

const (
	viewJobs viewKind = iota
	viewNodes
)

func (v viewKind) String() string {
	if v == viewNodes {
		return "Partitions"
	}
	return "Jobs"
}

// Model is the terminal session state. All mutation happens in Update on the
// bubbletea goroutine; background pollers only ever hand over immutable
// Outcome values through the outcomes channel.
type Model struct {
	cfg    *config.Config
	client *slurm.Client
	log    *slog.Logger

	outcomes    chan slurm.Outcome
	jobsPoller  *poller.Poller
	nodesPoller *poller.Poller

	view viewKind

	jobsAll  slurm.RecordSet
	jobsView slurm.RecordSet
	nodesAll slurm.RecordSet

	jobsSel  Selection
	nodesSel Selection

	myJobsFirst        bool
	advanceAfterSelect bool
	userFilterOn       bool
	runningFilterOn    bool

	searchInput textinput.Model
	searching   bool
	filter      string

	popup  popup
	banner string

	parseWarnings int
	lastRefresh   string

	help   help.Model
	keys   KeyMap
	styles Styles

	width  int
	height int
}

// NewModel wires the session. Pollers are attached separately by Run so tests
// can drive a Model without background goroutines.
func NewModel(cfg *config.Config, client *slurm.Client, log *slog.Logger, warnings []string) Model {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	ti := textinput.New()
	ti.Placeholder = "search"
	ti.CharLimit = 64
	ti.Width = 24
	ti.Prompt = "/"

	m := Model{
		cfg:                cfg,
		client:             client,
		log:                log,
		outcomes:           make(chan slurm.Outcome, 8),
		jobsSel:            NewSelection(),
		nodesSel:           NewSelection(),
		myJobsFirst:        cfg.MyJobsFirst,
		advanceAfterSelect: cfg.AdvanceAfterSelect,
		searchInput:        ti,
		help:               help.New(),
		keys:               keys,
		styles:             NewStyles(LoadTheme(cfg.Theme)),
		width:              80,
		height:             24,
	}
	if len(warnings) > 0 {
		m.banner = strings.Join(warnings, " · ")
	}
	return m
}

// Outcomes exposes the delivery channel the pollers write to.
func (m Model) Outcomes() chan slurm.Outcome { return m.outcomes }

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForOutcome(m.outcomes),
		initialWindowSizeCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		if msg.Height > 0 {
			m.height = msg.Height
		}
		m.help.Width = m.width - 2
		if m.popup.kind == popupDetail {
			m.sizeDetailViewport()
		}
		m.jobsSel.Offset = scrollIntoView(m.jobsSel.Offset, m.jobsSel.Row, len(m.jobsView.Records), m.bodyRows())
		m.nodesSel.Offset = scrollIntoView(m.nodesSel.Offset, m.nodesSel.Row, len(m.nodesAll.Records), m.bodyRows())
		return m, nil

	case outcomeMsg:
		return m.applyOutcome(slurm.Outcome(msg))

	case detailMsg:
		return m.applyDetail(msg), nil

	case cancelResultsMsg:
		return m.applyCancelResults(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// applyOutcome folds one poll delivery into the displayed state and re-arms
// the outcome wait. Failures never stop the loop; they surface and the next
// tick proceeds as scheduled.
func (m Model) applyOutcome(out slurm.Outcome) (tea.Model, tea.Cmd) {
	rearm := waitForOutcome(m.outcomes)

	if out.Err != nil {
		m.log.Warn("poll failed", "kind", out.Query, "err", out.Err.Message)
		if m.popup.active() {
			// A modal owns the screen; demote the failure to the banner.
			m.banner = out.Err.Error()
		} else {
			m.popup = errorPopup(fmt.Sprintf("%s query failed", out.Query), out.Err.Error())
		}
		return m, rearm
	}

	switch out.Query {
	case slurm.KindJobs:
		m.jobsAll = out.Set
		m.parseWarnings = out.Set.Warnings
		m.lastRefresh = out.Set.FetchedAt.Format("15:04:05")
		m.refreshJobsView()
	case slurm.KindNodes:
		m.nodesAll, m.nodesSel = Reconcile(m.nodesSel, out.Set, ReconcileOptions{
			Fallback:    FallbackSameRow,
			VisibleRows: m.bodyRows(),
		})
	}
	return m, rearm
}

// refreshJobsView recomputes the filtered projection and reconciles the
// selection against it. RecordSets replace wholesale; the selection is the
// only state that survives a refresh. Marks are pruned against the full set,
// not the projection: a filter hides rows, it does not deselect them.
func (m *Model) refreshJobsView() {
	view := filterSet(m.jobsAll, m.filter)
	m.jobsView, m.jobsSel = Reconcile(m.jobsSel, view, ReconcileOptions{
		MyJobsFirst: m.myJobsFirst,
		User:        m.client.User,
		UserField:   m.cfg.UserField,
		Fallback:    FallbackSameRow,
		VisibleRows: m.bodyRows(),
		MarkKeys:    m.jobsAll.Keys(),
	})
}

// filterSet keeps records where any field contains the query.
func filterSet(set slurm.RecordSet, query string) slurm.RecordSet {
	if query == "" {
		return set
	}
	query = strings.ToLower(query)
	out := set
	out.Records = nil
	for _, rec := range set.Records {
		for _, v := range rec {
			if strings.Contains(strings.ToLower(v), query) {
				out.Records = append(out.Records, rec)
				break
			}
		}
	}
	return out
}

func (m Model) applyDetail(msg detailMsg) Model {
	if m.popup.kind != popupDetail || m.popup.title != msg.id {
		// Selection moved on; stale reply.
		return m
	}
	if msg.err != nil {
		m.popup = errorPopup("Detail query failed", msg.err.Error())
		return m
	}
	m.popup.record = msg.record
	m.popup.loading = false
	m.sizeDetailViewport()
	return m
}

func (m *Model) sizeDetailViewport() {
	w, h := m.popupSize()
	m.popup.body = viewport.New(w, h)
	m.popup.body.SetContent(wordwrap.String(m.detailContent(), w))
}

func (m Model) popupSize() (int, int) {
	w := m.width - 12
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	h := m.height - 8
	if h > 24 {
		h = 24
	}
	if h < 5 {
		h = 5
	}
	return w, h
}

func (m Model) detailContent() string {
	if m.popup.loading {
		return "Fetching job details..."
	}
	var b strings.Builder
	for _, f := range m.popup.fields {
		value := m.popup.record.Get(f.Name)
		if value == "" {
			value = "(empty)"
		}
		fmt.Fprintf(&b, "%-12s %s\n", f.Name, value)
	}
	return b.String()
}

func (m Model) applyCancelResults(results cancelResultsMsg) (tea.Model, tea.Cmd) {
	ok := 0
	for _, r := range results {
		if r.Err == nil {
			ok++
			// The entity will drop out on the next poll; forget the mark now.
			delete(m.jobsSel.Marked, r.ID)
		}
	}
	m.banner = ""
	m.popup = popup{
		kind:    popupCancelResults,
		title:   "Cancellation results",
		message: fmt.Sprintf("%d of %d job(s) cancelled", ok, len(results)),
		results: results,
	}
	if m.jobsPoller != nil {
		m.jobsPoller.Kick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.popup.active() {
		return m.handlePopupKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Up):
		m.moveFocus(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveFocus(1)

	case key.Matches(msg, m.keys.ToggleSelect):
		m.toggleSelect()

	case key.Matches(msg, m.keys.Detail):
		if m.view == viewJobs && m.jobsSel.Focused != "" {
			id := m.jobsSel.Focused
			m.popup = popup{
				kind:    popupDetail,
				title:   id,
				fields:  m.client.Detail.Schema.Fields,
				loading: true,
			}
			m.sizeDetailViewport()
			return m, fetchDetailCmd(m.client, id)
		}

	case key.Matches(msg, m.keys.Cancel):
		if m.view == viewJobs {
			if targets := m.cancelTargets(); len(targets) > 0 {
				m.popup = popup{
					kind:    popupConfirmCancel,
					title:   "Warning",
					message: fmt.Sprintf("Cancel %d selected job(s)?", len(targets)),
					targets: targets,
				}
			}
		}

	case key.Matches(msg, m.keys.ClearSelection):
		if m.view == viewJobs && len(m.jobsSel.Marked) > 0 {
			m.popup = popup{
				kind:    popupConfirmClear,
				title:   "Warning",
				message: fmt.Sprintf("Clear selection of %d job(s)?", len(m.jobsSel.Marked)),
			}
		}

	case key.Matches(msg, m.keys.Help):
		m.popup = popup{kind: popupHelp, title: "Help"}

	case key.Matches(msg, m.keys.Search):
		if m.view == viewJobs {
			m.searching = true
			m.searchInput.Focus()
			return m, textinput.Blink
		}

	case key.Matches(msg, m.keys.JobsView):
		m.view = viewJobs
	case key.Matches(msg, m.keys.NodesView):
		m.view = viewNodes

	case key.Matches(msg, m.keys.UserFilter):
		m.userFilterOn = m.client.ToggleUserFilter()
		if m.jobsPoller != nil {
			m.jobsPoller.Kick()
		}
	case key.Matches(msg, m.keys.RunningFilter):
		m.runningFilterOn = m.client.ToggleRunningFilter()
		if m.jobsPoller != nil {
			m.jobsPoller.Kick()
		}

	case key.Matches(msg, m.keys.MyJobsFirst):
		m.myJobsFirst = !m.myJobsFirst
		m.refreshJobsView()
	case key.Matches(msg, m.keys.AdvanceToggle):
		m.advanceAfterSelect = !m.advanceAfterSelect

	case key.Matches(msg, m.keys.Refresh):
		switch m.view {
		case viewJobs:
			if m.jobsPoller != nil {
				m.jobsPoller.Kick()
			}
		case viewNodes:
			if m.nodesPoller != nil {
				m.nodesPoller.Kick()
			}
		}
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.filter = m.searchInput.Value()
	m.refreshJobsView()
	return m, cmd
}

// handlePopupKey routes input while a modal is open. Non-popup keys are
// inert; only the keys the popup defines do anything.
func (m Model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.popup.kind {
	case popupConfirmCancel:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			targets := m.popup.targets
			m.popup = popup{}
			m.banner = fmt.Sprintf("Cancelling %d job(s)...", len(targets))
			return m, cancelJobsCmd(m.client, targets, m.log)
		case key.Matches(msg, m.keys.Dismiss):
			m.popup = popup{}
		}
		return m, nil

	case popupConfirmClear:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.jobsSel.Marked = make(map[string]bool)
			m.popup = popup{}
		case key.Matches(msg, m.keys.Dismiss):
			m.popup = popup{}
		}
		return m, nil

	case popupDetail:
		switch {
		case key.Matches(msg, m.keys.Copy):
			if !m.popup.loading {
				return m, osc52CopyCmd(m.detailContent())
			}
			return m, nil
		case key.Matches(msg, m.keys.Dismiss), key.Matches(msg, m.keys.Detail):
			m.popup = popup{}
			return m, nil
		}
		var cmd tea.Cmd
		m.popup.body, cmd = m.popup.body.Update(msg)
		return m, cmd

	default: // help, error, cancel results
		if key.Matches(msg, m.keys.Dismiss) || key.Matches(msg, m.keys.Help) ||
			msg.String() == "enter" {
			m.popup = popup{}
		}
		return m, nil
	}
}

func (m *Model) moveFocus(delta int) {
	set, sel := m.currentView()
	n := len(set.Records)
	if n == 0 {
		return
	}
	row := sel.Row + delta
	if row < 0 {
		row = 0
	}
	if row >= n {
		row = n - 1
	}
	sel.Row = row
	sel.Focused = set.Key(row)
	sel.Offset = scrollIntoView(sel.Offset, row, n, m.bodyRows())
}

func (m *Model) toggleSelect() {
	if m.view != viewJobs || m.jobsSel.Focused == "" {
		return
	}
	key := m.jobsSel.Focused
	if m.jobsSel.Marked[key] {
		delete(m.jobsSel.Marked, key)
	} else {
		m.jobsSel.Marked[key] = true
	}
	if m.advanceAfterSelect {
		m.moveFocus(1)
	}
}

// cancelTargets returns the multi-selection when present, otherwise the
// focused job.
func (m Model) cancelTargets() []string {
	if targets := m.jobsSel.MarkedList(m.jobsView); len(targets) > 0 {
		return targets
	}
	if m.jobsSel.Focused != "" {
		return []string{m.jobsSel.Focused}
	}
	return nil
}

func (m *Model) currentView() (*slurm.RecordSet, *Selection) {
	if m.view == viewNodes {
		return &m.nodesAll, &m.nodesSel
	}
	return &m.jobsView, &m.jobsSel
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.jobsPoller != nil {
		m.jobsPoller.Stop()
	}
	if m.nodesPoller != nil {
		m.nodesPoller.Stop()
	}
	return m, tea.Quit
}

// bodyRows is the number of list rows the current window height can show.
func (m Model) bodyRows() int {
	rows := m.height - 6
	if rows < 3 {
		rows = 3
	}
	return rows
}
