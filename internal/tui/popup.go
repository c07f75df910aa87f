package tui

import (
	"github.com/charmbracelet/bubbles/viewport"

	"slurmvision/internal/slurm"
)

// popupKind tags the modal overlay variants. Exactly one popup may be open;
// while open it owns keyboard focus completely.
type popupKind int

const (
	popupNone popupKind = iota
	popupDetail
	popupHelp
	popupError
	popupConfirmCancel
	popupConfirmClear
	popupCancelResults
)

// popup is a tagged variant over the modal overlays. Which payload fields are
// meaningful depends on kind; keeping one struct keeps the session's dispatch
// exhaustive.
type popup struct {
	kind    popupKind
	title   string
	message string

	// popupDetail
	record  slurm.Record
	fields  []slurm.Field
	body    viewport.Model
	loading bool

	// popupConfirmCancel / popupCancelResults
	targets []string
	results []cancelResult
}

func (p popup) active() bool { return p.kind != popupNone }

func errorPopup(title, message string) popup {
	return popup{kind: popupError, title: title, message: message}
}
