package render

import (
	"log/slog"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	darkmode "github.com/thiagokokada/dark-mode-go"
)

type Theme int

const (
	ThemeAuto Theme = iota
	ThemeLight
	ThemeDark
)

func (t Theme) String() string {
	switch t {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "auto"
	}
}

func ParseTheme(raw string) Theme {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ThemeDark.String():
		return ThemeDark
	case ThemeLight.String():
		return ThemeLight
	default:
		return ThemeAuto
	}
}

var detectDarkMode = darkmode.IsDarkMode

// ResolveTheme turns ThemeAuto into the desktop's current preference,
// falling back to light when it cannot be detected.
func ResolveTheme(t Theme) Theme {
	if t != ThemeAuto {
		return t
	}
	if detectDarkMode != nil {
		dark, err := detectDarkMode()
		if err == nil {
			if dark {
				return ThemeDark
			}
			return ThemeLight
		}
		slog.Debug("detect dark-mode", slog.Any("error", err))
	}
	return ThemeLight
}

func (t Theme) chromaStyle() *chroma.Style {
	name := "github"
	if t == ThemeDark {
		name = "github-dark"
	}
	if st := styles.Get(name); st != nil {
		return st
	}
	return styles.Fallback
}

type palette struct {
	add       lipgloss.Color
	del       lipgloss.Color
	hunk      lipgloss.Color
	header    lipgloss.Color
	branch    lipgloss.Color
	dim       lipgloss.Color
	staged    lipgloss.Color
	unstaged  lipgloss.Color
	untracked lipgloss.Color
	failure   lipgloss.Color
}

var (
	lightPalette = palette{
		add:       "28",
		del:       "124",
		hunk:      "31",
		header:    "236",
		branch:    "90",
		dim:       "243",
		staged:    "28",
		unstaged:  "124",
		untracked: "130",
		failure:   "160",
	}
	darkPalette = palette{
		add:       "114",
		del:       "203",
		hunk:      "75",
		header:    "255",
		branch:    "141",
		dim:       "245",
		staged:    "114",
		unstaged:  "203",
		untracked: "179",
		failure:   "196",
	}
)

func (t Theme) palette() palette {
	if t == ThemeDark {
		return darkPalette
	}
	return lightPalette
}
