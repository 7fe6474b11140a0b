package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightness/tensorcalc/internal/report"
	"github.com/nightness/tensorcalc/internal/verify"
)

var polar = map[string][]report.TensorComponent{
	"christoffel": {
		{Indices: []int{0, 1, 1}, Expression: "-r"},
		{Indices: []int{1, 0, 1}, Expression: "1/r"},
		{Indices: []int{1, 1, 0}, Expression: "1/r"},
	},
	"ricci": {},
}

func TestIndexLabel(t *testing.T) {
	assert.Equal(t, "r theta theta", IndexLabel([]int{0, 1, 1}, []string{"r", "theta"}))
	assert.Equal(t, "scalar", IndexLabel(nil, nil))
	assert.Equal(t, "r 5", IndexLabel([]int{0, 5}, []string{"r"}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab…", Truncate("abcdef", 3))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
	assert.Equal(t, "θ…", Truncate("θθθ", 2))
}

func TestComponentTable(t *testing.T) {
	st := NewStyles(ThemeMono)
	out := ComponentTable("christoffel", polar["christoffel"], []string{"r", "theta"}, st, 0)
	assert.Contains(t, out, "christoffel")
	assert.Contains(t, out, "r theta theta")
	assert.Contains(t, out, "1/r")
	assert.Equal(t, 4, strings.Count(out, "\n"))

	empty := ComponentTable("ricci", nil, nil, st, 40)
	assert.Contains(t, empty, "all components vanish")
}

func TestStatusRendering(t *testing.T) {
	st := NewStyles(ThemeNight)
	assert.Contains(t, st.Status(verify.Satisfied), "satisfied")
	assert.Contains(t, st.Status(verify.Violated), "violated")
	assert.Contains(t, st.Status(verify.Indeterminate), "indeterminate")
}

func TestProfilePlot(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ys := []float64{1, 0.5, 0.33, 0.25}
	out := ProfilePlot(xs, ys, "christoffel:1,0,0", "r", 20, 5)
	assert.Contains(t, out, "christoffel:1,0,0 vs r in [1, 4]")
	assert.Empty(t, ProfilePlot(nil, nil, "x", "r", 0, 5))
}

func TestThemes(t *testing.T) {
	assert.Equal(t, "paper", GetTheme("paper").Name)
	assert.Equal(t, "night", GetTheme("neon").Name)
	assert.Equal(t, []string{"night", "paper", "mono"}, ThemeNames())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, b Browser, keys ...string) Browser {
	t.Helper()
	for _, k := range keys {
		m, _ := b.Update(key(k))
		var ok bool
		b, ok = m.(Browser)
		require.True(t, ok)
	}
	return b
}

func TestBrowserNavigation(t *testing.T) {
	b := NewBrowser("polar plane", polar, []string{"r", "theta"})
	assert.Equal(t, []string{"christoffel", "ricci"}, b.names)

	b = press(t, b, "down", "down", "down")
	assert.Equal(t, 2, b.cursor, "cursor stops at the last component")
	b = press(t, b, "up")
	assert.Equal(t, 1, b.cursor)

	b = press(t, b, "tab")
	assert.Equal(t, 1, b.tab)
	assert.Equal(t, 0, b.cursor)
	assert.Contains(t, b.View(), "all components vanish")

	b = press(t, b, "tab")
	assert.Equal(t, 0, b.tab)
	view := b.View()
	assert.Contains(t, view, "polar plane")
	assert.Contains(t, view, "christoffel (3)")
	assert.Contains(t, view, "-r")
}

func TestBrowserQuitAndResize(t *testing.T) {
	b := NewBrowser("x", polar, nil)
	_, cmd := b.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	m, _ := b.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.(Browser).width)

	m, _ = b.Update(key("t"))
	assert.Equal(t, 1, m.(Browser).theme)
}

func TestBrowserEmpty(t *testing.T) {
	b := NewBrowser("empty", nil, nil)
	b = press(t, b, "down", "tab")
	assert.Contains(t, b.View(), "nothing to show")
}
