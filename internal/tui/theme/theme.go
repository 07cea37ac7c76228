// Package theme defines color themes for the edumetrics dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name         string
	Background   lipgloss.Color // Main app background
	Surface      lipgloss.Color // Card/panel backgrounds
	SurfaceHover lipgloss.Color // Active tab
	Border       lipgloss.Color
	BorderAccent lipgloss.Color // Loading and help overlays
	TextDim      lipgloss.Color // Hints, axes
	TextMuted    lipgloss.Color // Labels
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color
	AccentBright lipgloss.Color
	Green        lipgloss.Color
	Orange       lipgloss.Color
	Red          lipgloss.Color
	Blue         lipgloss.Color
	Yellow       lipgloss.Color
	Cyan         lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	SurfaceHover: lipgloss.Color("#282726"),
	Border:       lipgloss.Color("#403E3C"),
	BorderAccent: lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Green:        lipgloss.Color("#879A39"),
	Orange:       lipgloss.Color("#DA702C"),
	Red:          lipgloss.Color("#D14D41"),
	Blue:         lipgloss.Color("#4385BE"),
	Yellow:       lipgloss.Color("#D0A215"),
	Cyan:         lipgloss.Color("#24837B"),
}

// FlexokiLight is the paper-toned light variant, for projectors and bright rooms.
var FlexokiLight = Theme{
	Name:         "flexoki-light",
	Background:   lipgloss.Color("#FFFCF0"),
	Surface:      lipgloss.Color("#F2F0E5"),
	SurfaceHover: lipgloss.Color("#E6E4D9"),
	Border:       lipgloss.Color("#CECDC3"),
	BorderAccent: lipgloss.Color("#24837B"),
	TextDim:      lipgloss.Color("#B7B5AC"),
	TextMuted:    lipgloss.Color("#6F6E69"),
	TextPrimary:  lipgloss.Color("#100F0F"),
	Accent:       lipgloss.Color("#24837B"),
	AccentBright: lipgloss.Color("#3AA99F"),
	Green:        lipgloss.Color("#66800B"),
	Orange:       lipgloss.Color("#BC5215"),
	Red:          lipgloss.Color("#AF3029"),
	Blue:         lipgloss.Color("#205EA6"),
	Yellow:       lipgloss.Color("#AD8301"),
	Cyan:         lipgloss.Color("#24837B"),
}

// CatppuccinMocha is a pastel dark theme.
var CatppuccinMocha = Theme{
	Name:         "catppuccin-mocha",
	Background:   lipgloss.Color("#1E1E2E"),
	Surface:      lipgloss.Color("#313244"),
	SurfaceHover: lipgloss.Color("#45475A"),
	Border:       lipgloss.Color("#585B70"),
	BorderAccent: lipgloss.Color("#89B4FA"),
	TextDim:      lipgloss.Color("#6C7086"),
	TextMuted:    lipgloss.Color("#A6ADC8"),
	TextPrimary:  lipgloss.Color("#CDD6F4"),
	Accent:       lipgloss.Color("#89B4FA"),
	AccentBright: lipgloss.Color("#B4D0FB"),
	Green:        lipgloss.Color("#A6E3A1"),
	Orange:       lipgloss.Color("#FAB387"),
	Red:          lipgloss.Color("#F38BA8"),
	Blue:         lipgloss.Color("#89B4FA"),
	Yellow:       lipgloss.Color("#F9E2AF"),
	Cyan:         lipgloss.Color("#94E2D5"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	SurfaceHover: lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Green:        lipgloss.Color("2"),
	Orange:       lipgloss.Color("3"),
	Red:          lipgloss.Color("1"),
	Blue:         lipgloss.Color("4"),
	Yellow:       lipgloss.Color("3"),
	Cyan:         lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{FlexokiDark, FlexokiLight, CatppuccinMocha, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// ForStatus picks the color for a quality status, engagement tier or trend
// direction.
func (t Theme) ForStatus(status string) lipgloss.Color {
	switch status {
	case "healthy", "high", "increasing":
		return t.Green
	case "warning", "medium":
		return t.Orange
	case "critical", "low", "decreasing":
		return t.Red
	default:
		return t.TextMuted
	}
}
