package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme used by tables, plots and the browser.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeNight = Theme{
		Name:    "night",
		Primary: lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ff00ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Border:  lipgloss.Color("#444466"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemePaper = Theme{
		Name:    "paper",
		Primary: lipgloss.Color("#005f87"),
		Accent:  lipgloss.Color("#875f00"),
		Text:    lipgloss.Color("#1c1c1c"),
		Muted:   lipgloss.Color("#808080"),
		Border:  lipgloss.Color("#a8a8a8"),
		Success: lipgloss.Color("#008700"),
		Warning: lipgloss.Color("#af8700"),
		Error:   lipgloss.Color("#af0000"),
	}

	ThemeMono = Theme{
		Name:    "mono",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#cccccc"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Border:  lipgloss.Color("#555555"),
		Success: lipgloss.Color("#ffffff"),
		Warning: lipgloss.Color("#cccccc"),
		Error:   lipgloss.Color("#ffffff"),
	}

	CurrentTheme = ThemeNight

	Themes = []Theme{ThemeNight, ThemePaper, ThemeMono}
)

// GetTheme returns the named theme, or night when the name is unknown.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeNight
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
