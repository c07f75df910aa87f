package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"slurmvision/internal/config"
	"slurmvision/internal/slurm"
)

func testModel(t *testing.T) Model {
	t.Helper()
	cfg := config.Default()
	cfg.MyJobsFirst = false
	client := slurm.NewClient(
		slurm.NewRunner(0, nil),
		cfg.Jobs.Query(),
		cfg.Nodes.Query(),
		cfg.Detail.Query(),
		cfg.CancelCommand,
	)
	client.User = "alice"
	return NewModel(cfg, client, nil, nil)
}

func seedJobs(t *testing.T, m Model, rows ...[3]string) Model {
	t.Helper()
	out := slurm.Outcome{Query: slurm.KindJobs, Set: jobSet(rows...)}
	next, _ := m.Update(outcomeMsg(out))
	return next.(Model)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCancelRequiresConfirmation(t *testing.T) {
	m := testModel(t)
	m = seedJobs(t, m, [3]string{"123", "alice", "RUNNING"}, [3]string{"456", "bob", "PENDING"})

	m, cmd := press(t, m, runes("x"))
	if cmd != nil {
		t.Fatal("cancel key must never dispatch directly")
	}
	if m.popup.kind != popupConfirmCancel {
		t.Fatalf("expected confirmation popup, got kind %d", m.popup.kind)
	}
	if len(m.popup.targets) != 1 || m.popup.targets[0] != "123" {
		t.Errorf("expected focused job as target, got %v", m.popup.targets)
	}

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil {
		t.Error("dismissal must not dispatch anything")
	}
	if m.popup.active() {
		t.Error("popup should close on dismissal")
	}
	if len(m.jobsView.Records) != 2 {
		t.Error("displayed records must survive a dismissed cancellation")
	}
}

func TestCancelConfirmDispatches(t *testing.T) {
	m := testModel(t)
	m = seedJobs(t, m, [3]string{"123", "alice", "RUNNING"})

	m, _ = press(t, m, runes("x"))
	m, cmd := press(t, m, runes("y"))
	if cmd == nil {
		t.Fatal("confirmation should dispatch the cancel command")
	}
	if m.popup.active() {
		t.Error("confirmation popup should close on confirm")
	}
}

func TestCancelTargetsPreferMarkedSet(t *testing.T) {
	m := testModel(t)
	m = seedJobs(t, m,
		[3]string{"123", "alice", "RUNNING"},
		[3]string{"456", "alice", "PENDING"},
		[3]string{"789", "bob", "RUNNING"},
	)
	m.jobsSel.Marked["456"] = true
	m.jobsSel.Marked["789"] = true

	m, _ = press(t, m, runes("x"))
	if len(m.popup.targets) != 2 {
		t.Fatalf("expected the 2 marked jobs, got %v", m.popup.targets)
	}
	if m.popup.targets[0] != "456" || m.popup.targets[1] != "789" {
		t.Errorf("expected targets in display order, got %v", m.popup.targets)
	}
}

func TestPopupOwnsKeyboard(t *testing.T) {
	m := testModel(t)
	m = seedJobs(t, m, [3]string{"123", "alice", "RUNNING"})

	m, _ = press(t, m, runes("h"))
	if m.popup.kind != popupHelp {
		t.Fatal("expected help popup")
	}

	m, cmd := press(t, m, runes("x"))
	if cmd != nil {
		t.Error("keys behind a popup must be inert")
	}
	if m.popup.kind != popupHelp {
		t.Error("unrelated key should not replace the open popup")
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.popup.active() {
		t.Error("esc should dismiss the help popup")
	}
}

func TestToggleSelectAdvances(t *testing.T) {
	m := testModel(t)
	m.advanceAfterSelect = true
	m = seedJobs(t, m, [3]string{"123", "alice", "RUNNING"}, [3]string{"456", "bob", "PENDING"})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.jobsSel.Marked["123"] {
		t.Error("space should mark the focused job")
	}
	if m.jobsSel.Focused != "456" {
		t.Errorf("focus should advance after select, got %q", m.jobsSel.Focused)
	}

	// Toggling again from the new position marks, not unmarks.
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.jobsSel.Marked["456"] {
		t.Error("second space should mark the next job")
	}
}

func TestClearSelectionNeedsConfirmation(t *testing.T) {
	m := testModel(t)
	m = seedJobs(t, m, [3]string{"123", "alice", "RUNNING"}, [3]string{"456", "bob", "PENDING"})
	m.jobsSel.Marked["123"] = true
	m.jobsSel.Marked["456"] = true

	m, _ = press(t, m, runes("c"))
	if m.popup.kind != popupConfirmClear {
		t.Fatal("expected clear-selection confirmation")
	}

	m, _ = press(t, m, runes("n"))
	if len(m.jobsSel.Marked) != 2 {
		t.Error("dismissal must keep the selection")
	}

	m, _ = press(t, m, runes("c"))
	m, _ = press(t, m, runes("y"))
	if len(m.jobsSel.Marked) != 0 {
		t.Error("confirmation should clear the selection")
	}
}

func TestOutcomePreservesSelectionAcrossRefresh(t *testing.T) {
	m := testModel(t)
	m = seedJobs(t, m,
		[3]string{"123", "alice", "RUNNING"},
		[3]string{"456", "bob", "PENDING"},
	)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.jobsSel.Focused != "456" {
		t.Fatalf("setup: expected focus on 456, got %q", m.jobsSel.Focused)
	}

	// 123 finished; 456 is now row 0.
	m = seedJobs(t, m, [3]string{"456", "bob", "PENDING"}, [3]string{"789", "carol", "RUNNING"})
	if m.jobsSel.Focused != "456" || m.jobsSel.Row != 0 {
		t.Errorf("focus should follow identity across refresh, got %q at row %d",
			m.jobsSel.Focused, m.jobsSel.Row)
	}
}

func TestPollFailureBehindPopupGoesToBanner(t *testing.T) {
	m := testModel(t)
	m = seedJobs(t, m, [3]string{"123", "alice", "RUNNING"})
	m, _ = press(t, m, runes("h"))

	fail := &slurm.Failure{Kind: slurm.FailTimeout, Query: slurm.KindJobs, Message: "squeue stalled"}
	next, cmd := m.Update(outcomeMsg(slurm.Outcome{Query: slurm.KindJobs, Err: fail}))
	m = next.(Model)

	if cmd == nil {
		t.Error("outcome handling must re-arm the channel wait")
	}
	if m.popup.kind != popupHelp {
		t.Error("an open popup must not be replaced by a poll failure")
	}
	if m.banner == "" {
		t.Error("failure should surface in the banner instead")
	}
	if len(m.jobsView.Records) != 1 {
		t.Error("a failed poll must not clear displayed records")
	}
}

func TestPollFailureWithoutPopupOpensErrorPopup(t *testing.T) {
	m := testModel(t)
	fail := &slurm.Failure{Kind: slurm.FailExec, Query: slurm.KindNodes, Message: "sinfo: not found"}
	next, _ := m.Update(outcomeMsg(slurm.Outcome{Query: slurm.KindNodes, Err: fail}))
	m = next.(Model)

	if m.popup.kind != popupError {
		t.Errorf("expected error popup, got kind %d", m.popup.kind)
	}
}

func TestSearchFiltersJobsView(t *testing.T) {
	m := testModel(t)
	m = seedJobs(t, m,
		[3]string{"123", "alice", "RUNNING"},
		[3]string{"456", "bob", "PENDING"},
	)

	m, _ = press(t, m, runes("/"))
	if !m.searching {
		t.Fatal("slash should enter search mode")
	}

	m, _ = press(t, m, runes("bob"))
	if len(m.jobsView.Records) != 1 || m.jobsView.Key(0) != "456" {
		t.Fatalf("expected filter to keep only 456, got %d records", len(m.jobsView.Records))
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching {
		t.Error("enter should leave search mode")
	}
	if len(m.jobsView.Records) != 1 {
		t.Error("filter should persist after leaving search mode")
	}
}

func TestSearchKeepsMarksOnHiddenJobs(t *testing.T) {
	m := testModel(t)
	m = seedJobs(t, m,
		[3]string{"123", "alice", "RUNNING"},
		[3]string{"456", "bob", "PENDING"},
	)
	m.jobsSel.Marked["123"] = true
	m.jobsSel.Marked["456"] = true

	m, _ = press(t, m, runes("/"))
	m, _ = press(t, m, runes("bob"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(m.jobsView.Records) != 1 || m.jobsView.Key(0) != "456" {
		t.Fatalf("setup: expected filter to hide 123, got %d records", len(m.jobsView.Records))
	}
	if !m.jobsSel.Marked["123"] {
		t.Error("filtering out a job must not drop its mark")
	}
	if !m.jobsSel.Marked["456"] {
		t.Error("mark on a visible job was dropped")
	}

	// A refresh without 123 prunes the mark for real, filter or not.
	m = seedJobs(t, m, [3]string{"456", "bob", "PENDING"})
	if m.jobsSel.Marked["123"] {
		t.Error("mark should be pruned once the job leaves the record set")
	}
}

func TestCancelResultsPruneMarks(t *testing.T) {
	m := testModel(t)
	m = seedJobs(t, m, [3]string{"123", "alice", "RUNNING"}, [3]string{"456", "alice", "RUNNING"})
	m.jobsSel.Marked["123"] = true
	m.jobsSel.Marked["456"] = true

	results := cancelResultsMsg{
		{ID: "123"},
		{ID: "456", Err: &slurm.Failure{Kind: slurm.FailExec, Message: "denied"}},
	}
	next, _ := m.Update(results)
	m = next.(Model)

	if m.popup.kind != popupCancelResults {
		t.Fatal("expected results popup")
	}
	if m.jobsSel.Marked["123"] {
		t.Error("cancelled job should be unmarked")
	}
	if !m.jobsSel.Marked["456"] {
		t.Error("failed cancellation should keep its mark")
	}
}

func TestViewSwitchKeepsPerViewSelection(t *testing.T) {
	m := testModel(t)
	m = seedJobs(t, m, [3]string{"123", "alice", "RUNNING"}, [3]string{"456", "bob", "PENDING"})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})

	m, _ = press(t, m, runes("i"))
	if m.view != viewNodes {
		t.Fatal("i should switch to the partitions view")
	}
	m, _ = press(t, m, runes("j"))
	if m.view != viewJobs {
		t.Fatal("j should switch back to the jobs view")
	}
	if m.jobsSel.Focused != "456" {
		t.Errorf("jobs selection should survive a view switch, got %q", m.jobsSel.Focused)
	}
}
