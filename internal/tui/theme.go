package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const envPalette = "SLURMVISION_PALETTE"

// ThemeMode selects light/dark rendering, or terminal autodetection.
type ThemeMode string

const (
	ThemeAuto  ThemeMode = "auto"
	ThemeDark  ThemeMode = "dark"
	ThemeLight ThemeMode = "light"
)

// Theme holds the raw colors the semantic styles are built from. The engine
// never references colors directly, only the named regions in Styles.
type Theme struct {
	Mode ThemeMode

	Text         lipgloss.TerminalColor
	TextMuted    lipgloss.TerminalColor
	TextStrong   lipgloss.TerminalColor
	TextOnAccent lipgloss.TerminalColor

	Accent  lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Surface lipgloss.TerminalColor

	AccentOrange lipgloss.TerminalColor
	AccentGreen  lipgloss.TerminalColor
	AccentBlue   lipgloss.TerminalColor
	AccentPink   lipgloss.TerminalColor
	Danger       lipgloss.TerminalColor

	SelectionBg lipgloss.TerminalColor
	SelectionFg lipgloss.TerminalColor
	HelpBg      lipgloss.TerminalColor
	HelpFg      lipgloss.TerminalColor
}

// LoadTheme builds the Theme for the configured mode. The palette itself can
// be swapped with SLURMVISION_PALETTE; the engine only consumes role names.
func LoadTheme(mode string) Theme {
	m := parseThemeMode(mode)
	if m == ThemeDark {
		lipgloss.SetHasDarkBackground(true)
	} else if m == ThemeLight {
		lipgloss.SetHasDarkBackground(false)
	}

	switch strings.ToLower(strings.TrimSpace(os.Getenv(envPalette))) {
	case "classic":
		return classicTheme(m)
	default:
		return draculaSoftTheme(m)
	}
}

func parseThemeMode(value string) ThemeMode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dark":
		return ThemeDark
	case "light":
		return ThemeLight
	default:
		return ThemeAuto
	}
}

func classicTheme(mode ThemeMode) Theme {
	return Theme{
		Mode:         mode,
		Text:         lipgloss.NoColor{},
		TextMuted:    pickColor(mode, "#6B7394", "#9BA3BC"),
		TextStrong:   pickColor(mode, "#0B0D19", "#F8FBFF"),
		TextOnAccent: pickColor(mode, "#F8FBFF", "#0B0D19"),
		Accent:       pickColor(mode, "#6C63FF", "#A8A0FF"),
		Border:       pickColor(mode, "#D7DBF5", "#454B66"),
		Surface:      pickColor(mode, "#F7F8FE", "#11121C"),
		AccentOrange: lipgloss.Color("#FFB347"),
		AccentGreen:  lipgloss.Color("#2BD19F"),
		AccentBlue:   lipgloss.Color("#5D9CFF"),
		AccentPink:   lipgloss.Color("#F06A9B"),
		Danger:       lipgloss.Color("#FF5F6D"),
		SelectionBg:  pickColor(mode, "#E6E9F6", "#3B3F5C"),
		SelectionFg:  pickColor(mode, "#0B0D19", "#F5F7FF"),
		HelpBg:       lipgloss.Color("#FFD54F"),
		HelpFg:       lipgloss.Color("#1A1A1A"),
	}
}

func draculaSoftTheme(mode ThemeMode) Theme {
	return Theme{
		Mode:         mode,
		Text:         lipgloss.NoColor{},
		TextMuted:    pickColor(mode, "#6B7394", "#B6B8C9"),
		TextStrong:   pickColor(mode, "#0B0D19", "#F8F8F2"),
		TextOnAccent: pickColor(mode, "#F8FBFF", "#282A36"),
		Accent:       pickColor(mode, "#6C63FF", "#A78BFA"),
		Border:       pickColor(mode, "#D7DBF5", "#44475A"),
		Surface:      pickColor(mode, "#F7F8FE", "#282A36"),
		AccentOrange: lipgloss.Color("#FFB86C"),
		AccentGreen:  lipgloss.Color("#50FA7B"),
		AccentBlue:   lipgloss.Color("#6EA8FE"),
		AccentPink:   lipgloss.Color("#FF79C6"),
		Danger:       lipgloss.Color("#FF5555"),
		SelectionBg:  pickColor(mode, "#E6E9F6", "#44475A"),
		SelectionFg:  pickColor(mode, "#0B0D19", "#F8F8F2"),
		HelpBg:       lipgloss.Color("#F1FA8C"),
		HelpFg:       lipgloss.Color("#282A36"),
	}
}

func pickColor(mode ThemeMode, light, dark string) lipgloss.TerminalColor {
	switch mode {
	case ThemeDark:
		return lipgloss.Color(dark)
	case ThemeLight:
		return lipgloss.Color(light)
	default:
		return lipgloss.AdaptiveColor{Light: light, Dark: dark}
	}
}
