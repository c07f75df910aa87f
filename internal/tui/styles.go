package tui

import "github.com/charmbracelet/lipgloss"

// Styles are the named semantic regions the renderer draws with. The engine
// addresses rows and chrome by role; the palette behind each role is a pure
// presentation concern.
type Styles struct {
	Standard lipgloss.Style
	Header   lipgloss.Style
	Footer   lipgloss.Style
	Selected lipgloss.Style
	Warning  lipgloss.Style
	Help     lipgloss.Style
	Detail   lipgloss.Style
	Error    lipgloss.Style
	Focus    lipgloss.Style

	Title  lipgloss.Style
	Muted  lipgloss.Style
	Pill   lipgloss.Style
	Dialog lipgloss.Style
	Banner lipgloss.Style

	theme Theme
}

// NewStyles maps the theme's palette onto the semantic regions.
func NewStyles(t Theme) Styles {
	pill := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	return Styles{
		Standard: lipgloss.NewStyle().Foreground(t.Text),
		Header: lipgloss.NewStyle().
			Foreground(t.AccentOrange).
			Bold(true),
		Footer: lipgloss.NewStyle().
			Foreground(t.TextMuted),
		Selected: lipgloss.NewStyle().
			Foreground(t.Danger).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(t.TextOnAccent).
			Background(t.Danger).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(t.HelpFg).
			Background(t.HelpBg).
			Padding(1, 2),
		Detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 2),
		Error: lipgloss.NewStyle().
			Foreground(t.Danger).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Danger).
			Padding(1, 2),
		Focus: lipgloss.NewStyle().
			Foreground(t.SelectionFg).
			Background(t.SelectionBg),

		Title: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(t.TextMuted),
		Pill: pill,
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.AccentPink).
			Padding(2, 4).
			Align(lipgloss.Center).
			Width(54),
		Banner: lipgloss.NewStyle().
			Foreground(t.TextOnAccent).
			Background(t.AccentOrange).
			Padding(0, 1),

		theme: t,
	}
}

var stateColorRoles = map[string]string{
	"R":   "green",
	"CG":  "green",
	"PD":  "orange",
	"CF":  "orange",
	"PR":  "orange",
	"RQ":  "orange",
	"RS":  "orange",
	"S":   "orange",
	"ST":  "orange",
	"RH":  "orange",
	"RF":  "orange",
	"CD":  "blue",
	"CA":  "pink",
	"F":   "danger",
	"TO":  "danger",
	"NF":  "danger",
	"OOM": "danger",
}

// StateColor returns the color for a short job state code.
func (s Styles) StateColor(code string) lipgloss.TerminalColor {
	switch stateColorRoles[code] {
	case "green":
		return s.theme.AccentGreen
	case "orange":
		return s.theme.AccentOrange
	case "blue":
		return s.theme.AccentBlue
	case "pink":
		return s.theme.AccentPink
	case "danger":
		return s.theme.Danger
	default:
		return s.theme.TextMuted
	}
}
