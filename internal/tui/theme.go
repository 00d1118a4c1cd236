package tui

import (
	"os"
	"strconv"
	"strings"

	"inkwell-cli/internal/review"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The TUI must stay readable on light and dark backgrounds, so colours are
// adaptive and "faint" is only applied on dark terminals.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted    lipgloss.TerminalColor = ac("240", "243")
	colorAccent   lipgloss.TerminalColor = ac("27", "62")
	colorAccentFg lipgloss.TerminalColor = ac("255", "235")
	colorAdded    lipgloss.TerminalColor = ac("28", "42")
	colorRemoved  lipgloss.TerminalColor = ac("160", "203")
	colorHunk     lipgloss.TerminalColor = ac("30", "80")
	colorDirty    lipgloss.TerminalColor = ac("166", "214")
	colorError    lipgloss.TerminalColor = ac("196", "160")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleTabActive() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(colorAccentFg).Background(colorAccent)
}

func styleTabInactive() lipgloss.Style {
	return lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted)
}

// diffLineStyle colours one classified diff line.
func diffLineStyle(k review.LineKind) lipgloss.Style {
	switch k {
	case review.Addition:
		return lipgloss.NewStyle().Foreground(colorAdded)
	case review.Removal:
		return lipgloss.NewStyle().Foreground(colorRemoved)
	case review.Hunk:
		return lipgloss.NewStyle().Foreground(colorHunk).Bold(true)
	default:
		return styleMuted()
	}
}

// applyColorProfilePreference sets Lip Gloss's colour profile. Only NO_COLOR
// is honoured; CLICOLOR would otherwise disable colours inside the TUI.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// Trust TERM/COLORTERM when they claim more than the detector found.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && profile != termenv.TrueColor {
		profile = termenv.ANSI256
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection.
//
// Priority:
// 1) INKWELL_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg", last segment is the background)
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("INKWELL_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
