package tui

import "slurmvision/internal/slurm"

// Selection is the user's navigation intent: a focused identity key, the set
// of multi-selected keys, and the scroll offset. It is independent of any
// particular RecordSet; reconciliation resolves it against fresh data.
type Selection struct {
	Focused string
	Row     int
	Offset  int
	Marked  map[string]bool
}

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return Selection{Marked: make(map[string]bool)}
}

// MarkedList returns the selected identity keys in record-set order, using
// set for ordering; keys absent from set keep insertion-arbitrary order at
// the end.
func (s Selection) MarkedList(set slurm.RecordSet) []string {
	var ordered []string
	seen := make(map[string]bool, len(s.Marked))
	for i := range set.Records {
		if key := set.Key(i); s.Marked[key] {
			ordered = append(ordered, key)
			seen[key] = true
		}
	}
	for key := range s.Marked {
		if !seen[key] {
			ordered = append(ordered, key)
		}
	}
	return ordered
}

// FallbackPolicy decides which row inherits focus when the focused entity
// disappears between refreshes.
type FallbackPolicy int

const (
	// FallbackSameRow focuses whatever record now occupies the previous row
	// index, clamped to the last row.
	FallbackSameRow FallbackPolicy = iota
	// FallbackPrevious focuses the record just above the vanished one.
	FallbackPrevious
)

// ReconcileOptions tune how a fresh RecordSet is merged with the previous
// selection.
type ReconcileOptions struct {
	MyJobsFirst bool
	User        string
	UserField   string
	Fallback    FallbackPolicy
	VisibleRows int
	// MarkKeys is the set of identity keys marks are pruned against. Nil
	// means the keys of the reconciled set. Callers reconciling a display
	// projection pass the full set's keys here, so hiding a row never
	// discards its mark.
	MarkKeys map[string]bool
}

// Reconcile orders a fresh RecordSet and resolves the previous Selection
// against it. The focused identity stays focused wherever it moved; a
// vanished identity falls back per policy; multi-selected keys that no longer
// exist are dropped. The input set is not mutated.
func Reconcile(sel Selection, set slurm.RecordSet, opts ReconcileOptions) (slurm.RecordSet, Selection) {
	if opts.MyJobsFirst && opts.User != "" && opts.UserField != "" {
		set = OrderMineFirst(set, opts.User, opts.UserField)
	}

	next := Selection{Marked: make(map[string]bool)}
	keys := opts.MarkKeys
	if keys == nil {
		keys = set.Keys()
	}
	for key := range sel.Marked {
		if keys[key] {
			next.Marked[key] = true
		}
	}

	n := len(set.Records)
	switch {
	case n == 0:
		// Valid, expected: nothing to focus.
	case sel.Focused == "":
		// Initial entry into the view.
		next.Focused = set.Key(0)
		next.Row = 0
	default:
		if idx := set.Index(sel.Focused); idx >= 0 {
			next.Focused = sel.Focused
			next.Row = idx
		} else {
			row := sel.Row
			if opts.Fallback == FallbackPrevious {
				row--
			}
			if row >= n {
				row = n - 1
			}
			if row < 0 {
				row = 0
			}
			next.Focused = set.Key(row)
			next.Row = row
		}
	}

	next.Offset = scrollIntoView(sel.Offset, next.Row, n, opts.VisibleRows)
	return set, next
}

// OrderMineFirst stably moves records owned by user to the front: relative
// order within each half is untouched, so unrelated rows never reshuffle
// between ticks.
func OrderMineFirst(set slurm.RecordSet, user, field string) slurm.RecordSet {
	mine := make([]slurm.Record, 0, len(set.Records))
	rest := make([]slurm.Record, 0, len(set.Records))
	for _, rec := range set.Records {
		if rec.Get(field) == user {
			mine = append(mine, rec)
		} else {
			rest = append(rest, rec)
		}
	}
	if len(mine) == 0 {
		return set
	}
	out := set
	out.Records = append(mine, rest...)
	return out
}

// scrollIntoView nudges the offset just enough to keep row visible.
func scrollIntoView(offset, row, n, visible int) int {
	if n == 0 || visible <= 0 {
		return 0
	}
	if row < offset {
		offset = row
	}
	if row >= offset+visible {
		offset = row - visible + 1
	}
	if maxOff := n - visible; offset > maxOff {
		offset = maxOff
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}
