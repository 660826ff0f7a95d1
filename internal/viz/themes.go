package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Theme defines the colors shared by styled output and plots.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	// Computed and Reference color the two plot series.
	Computed  asciigraph.AnsiColor
	Reference asciigraph.AnsiColor
}

var (
	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#00ffff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666688"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffcc00"),
		Error:     lipgloss.Color("#ff4444"),
		Computed:  asciigraph.Cyan,
		Reference: asciigraph.Fuchsia,
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff0000"),
		Computed:  asciigraph.White,
		Reference: asciigraph.Gray,
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#00a8cc"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffcc00"),
		Error:     lipgloss.Color("#ff4444"),
		Computed:  asciigraph.DeepSkyBlue,
		Reference: asciigraph.Gold,
	}

	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeMinimal,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

// SetTheme changes the current theme and restyles the package styles.
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
	t := CurrentTheme
	GradientTitle = GradientTitle.Foreground(t.Primary)
	Subtle = Subtle.Foreground(t.Muted)
	KeyHint = KeyHint.Foreground(t.Muted)
	MetricValue = MetricValue.Foreground(t.Primary)
	HeaderStyle = HeaderStyle.Foreground(t.Text)
	StatusOK = StatusOK.Foreground(t.Success)
	StatusFailed = StatusFailed.Foreground(t.Error)
	SparkHigh = SparkHigh.Foreground(t.Success)
	SparkMid = SparkMid.Foreground(t.Warning)
	SparkLow = SparkLow.Foreground(t.Error)
}

// NextTheme returns the name of the theme after the current one.
func NextTheme() string {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			return Themes[(i+1)%len(Themes)].Name
		}
	}
	return Themes[0].Name
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
