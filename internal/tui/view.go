package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"slurmvision/internal/slurm"
)

const columnGap = 2

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteByte('\n')

	if m.popup.active() {
		b.WriteString(lipgloss.Place(
			m.width, m.bodyRows()+2,
			lipgloss.Center, lipgloss.Center,
			m.popupView(),
		))
	} else {
		b.WriteString(m.tableView())
	}
	b.WriteByte('\n')

	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	title := m.styles.Title.Render("slurmvision")
	view := m.styles.Header.Render(m.view.String())

	var pills []string
	if m.view == viewJobs {
		if m.userFilterOn {
			pills = append(pills, "user:"+m.client.User)
		}
		if m.runningFilterOn {
			pills = append(pills, "running")
		}
		if m.filter != "" {
			pills = append(pills, "search:"+m.filter)
		}
		if m.myJobsFirst {
			pills = append(pills, "mine-first")
		}
	}
	left := title + "  " + view
	if len(pills) > 0 {
		left += "  " + m.styles.Muted.Render("["+strings.Join(pills, " ")+"]")
	}

	right := ""
	if m.lastRefresh != "" {
		right = m.styles.Muted.Render("updated " + m.lastRefresh)
	}
	if m.parseWarnings > 0 {
		right += " " + m.styles.Warning.Render(fmt.Sprintf("%d malformed", m.parseWarnings))
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// tableView renders the column header and the visible window of rows.
func (m Model) tableView() string {
	set, sel := m.viewState()
	schema := m.viewSchema()

	var b strings.Builder
	b.WriteString("  " + m.styles.Header.Render(m.rowText(schema.Fields, headerRecord(schema))))
	b.WriteByte('\n')

	rows := m.bodyRows()
	n := len(set.Records)
	if n == 0 {
		b.WriteString(m.styles.Muted.Render("  (no records)"))
		b.WriteString(strings.Repeat("\n", rows-1))
		return b.String()
	}

	end := sel.Offset + rows
	if end > n {
		end = n
	}
	for i := sel.Offset; i < end; i++ {
		b.WriteString(m.renderRow(set, sel, schema.Fields, i))
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	// Pad so the footer stays anchored.
	for i := end - sel.Offset; i < rows; i++ {
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) renderRow(set slurm.RecordSet, sel Selection, fields []slurm.Field, i int) string {
	rec := set.Records[i]
	key := set.Key(i)
	text := m.rowText(fields, rec)

	marks := "  "
	if m.view == viewJobs && sel.Marked[key] {
		marks = m.styles.Selected.Render("✓ ")
	}

	switch {
	case i == sel.Row && key == sel.Focused:
		return marks + m.styles.Focus.Render(text)
	case m.view == viewJobs && sel.Marked[key]:
		return marks + m.styles.Selected.Render(text)
	default:
		style := m.styles.Standard
		if state := rec.Get("STATE"); state != "" {
			style = style.Foreground(m.styles.StateColor(slurm.StateCode(state)))
		}
		return marks + style.Render(text)
	}
}

// rowText lays out one record into fixed-width columns.
func (m Model) rowText(fields []slurm.Field, rec slurm.Record) string {
	var b strings.Builder
	for i, f := range fields {
		w := f.Width
		if w <= 0 {
			w = len(f.Name) + 4
		}
		cell := truncate.StringWithTail(rec.Get(f.Name), uint(w), "…")
		b.WriteString(runewidth.FillRight(cell, w))
		if i < len(fields)-1 {
			b.WriteString(strings.Repeat(" ", columnGap))
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// headerRecord turns a schema into a record of its own column names so the
// header row goes through the same layout path as data rows.
func headerRecord(schema slurm.FieldSchema) slurm.Record {
	rec := make(slurm.Record, len(schema.Fields))
	for _, f := range schema.Fields {
		rec[f.Name] = f.Name
	}
	return rec
}

func (m Model) footerView() string {
	if m.searching {
		return m.searchInput.View()
	}

	var parts []string
	if n := len(m.jobsSel.Marked); n > 0 && m.view == viewJobs {
		parts = append(parts, m.styles.Selected.Render(fmt.Sprintf("%d selected", n)))
	}
	if m.banner != "" {
		parts = append(parts, m.styles.Banner.Render(m.banner))
	}
	parts = append(parts, m.styles.Footer.Render(m.help.View(m.keys)))
	return strings.Join(parts, "  ")
}

func (m Model) popupView() string {
	switch m.popup.kind {
	case popupDetail:
		title := m.styles.Title.Render("Job " + m.popup.title)
		hint := m.styles.Muted.Render("esc dismiss · ^y copy")
		return m.styles.Detail.Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.popup.body.View(), "", hint),
		)

	case popupHelp:
		return m.styles.Help.Render(m.helpContent())

	case popupError:
		w, _ := m.popupSize()
		return m.styles.Error.Render(
			lipgloss.JoinVertical(lipgloss.Left,
				m.styles.Title.Render(m.popup.title),
				"",
				wordwrap.String(m.popup.message, w),
			),
		)

	case popupConfirmCancel, popupConfirmClear:
		return m.styles.Dialog.Render(
			lipgloss.JoinVertical(lipgloss.Center,
				m.styles.Selected.Render(m.popup.title),
				"",
				m.popup.message,
				"",
				m.styles.Muted.Render("y confirm · esc/n dismiss"),
			),
		)

	case popupCancelResults:
		var lines []string
		for _, r := range m.popup.results {
			if r.Err != nil {
				lines = append(lines, fmt.Sprintf("%s  failed: %s", r.ID, r.Err.Message))
			} else {
				lines = append(lines, fmt.Sprintf("%s  cancelled", r.ID))
			}
		}
		w, _ := m.popupSize()
		return m.styles.Detail.Render(
			lipgloss.JoinVertical(lipgloss.Left,
				m.styles.Title.Render(m.popup.title),
				"",
				wordwrap.String(m.popup.message, w),
				"",
				wordwrap.String(strings.Join(lines, "\n"), w),
				"",
				m.styles.Muted.Render("esc dismiss"),
			),
		)
	}
	return ""
}

func (m Model) helpContent() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Keys"))
	b.WriteByte('\n')
	for _, group := range m.keys.FullHelp() {
		b.WriteByte('\n')
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "%-10s %s\n", h.Key, h.Desc)
		}
	}
	return b.String()
}

func (m Model) viewState() (slurm.RecordSet, Selection) {
	if m.view == viewNodes {
		return m.nodesAll, m.nodesSel
	}
	return m.jobsView, m.jobsSel
}

func (m Model) viewSchema() slurm.FieldSchema {
	if m.view == viewNodes {
		return m.client.Nodes.Schema
	}
	return m.client.Jobs.Schema
}
