package term

import "github.com/charmbracelet/lipgloss"

// Theme colors the viewer's stats panel.
type Theme struct {
	Name   string
	Title  lipgloss.Color
	Label  lipgloss.Color
	Value  lipgloss.Color
	Chart  lipgloss.Color
	Border lipgloss.Color
	Hint   lipgloss.Color
	Alert  lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:   "cyberpunk",
		Title:  lipgloss.Color("#ff00ff"),
		Label:  lipgloss.Color("#888899"),
		Value:  lipgloss.Color("#00ffff"),
		Chart:  lipgloss.Color("#ffff00"),
		Border: lipgloss.Color("#444466"),
		Hint:   lipgloss.Color("#666688"),
		Alert:  lipgloss.Color("#ff0000"),
	}

	ThemeRetro = Theme{
		Name:   "retro",
		Title:  lipgloss.Color("#00ff00"),
		Label:  lipgloss.Color("#00aa00"),
		Value:  lipgloss.Color("#88ff88"),
		Chart:  lipgloss.Color("#00cc00"),
		Border: lipgloss.Color("#005500"),
		Hint:   lipgloss.Color("#005500"),
		Alert:  lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Title:  lipgloss.Color("#ffffff"),
		Label:  lipgloss.Color("#888888"),
		Value:  lipgloss.Color("#cccccc"),
		Chart:  lipgloss.Color("#0088ff"),
		Border: lipgloss.Color("#444444"),
		Hint:   lipgloss.Color("#666666"),
		Alert:  lipgloss.Color("#ffaa00"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Title:  lipgloss.Color("#00a8cc"),
		Label:  lipgloss.Color("#4488aa"),
		Value:  lipgloss.Color("#e0f0ff"),
		Chart:  lipgloss.Color("#ffd700"),
		Border: lipgloss.Color("#0077be"),
		Hint:   lipgloss.Color("#4488aa"),
		Alert:  lipgloss.Color("#ff4444"),
	}

	ThemeSunset = Theme{
		Name:   "sunset",
		Title:  lipgloss.Color("#ff6b6b"),
		Label:  lipgloss.Color("#8b6b8c"),
		Value:  lipgloss.Color("#fff5f5"),
		Chart:  lipgloss.Color("#feca57"),
		Border: lipgloss.Color("#ff9ff3"),
		Hint:   lipgloss.Color("#8b6b8c"),
		Alert:  lipgloss.Color("#ff4757"),
	}

	Themes = []Theme{ThemeCyberpunk, ThemeRetro, ThemeMinimal, ThemeOcean, ThemeSunset}
)

// GetTheme returns the named theme, falling back to cyberpunk.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func nextTheme(current string) Theme {
	for i, t := range Themes {
		if t.Name == current {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
