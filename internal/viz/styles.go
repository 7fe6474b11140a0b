package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nightness/tensorcalc/internal/verify"
)

// Styles derived from a theme.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Index    lipgloss.Style
	Value    lipgloss.Style
	Subtle   lipgloss.Style
	Selected lipgloss.Style
	KeyHint  lipgloss.Style
	Panel    lipgloss.Style
	status   map[verify.Status]lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
		Index:    lipgloss.NewStyle().Foreground(t.Accent),
		Value:    lipgloss.NewStyle().Foreground(t.Text),
		Subtle:   lipgloss.NewStyle().Foreground(t.Muted),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		KeyHint:  lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		status: map[verify.Status]lipgloss.Style{
			verify.Satisfied:     lipgloss.NewStyle().Bold(true).Foreground(t.Success),
			verify.Violated:      lipgloss.NewStyle().Bold(true).Foreground(t.Error),
			verify.Indeterminate: lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		},
	}
}

// Status renders a verification status with its color and a marker.
func (s Styles) Status(st verify.Status) string {
	mark := map[verify.Status]string{
		verify.Satisfied:     "✓",
		verify.Violated:      "✗",
		verify.Indeterminate: "?",
	}[st]
	return s.status[st].Render(mark + " " + st.String())
}

// Separator is a muted rule of the given width.
func (s Styles) Separator(width int) string {
	if width < 1 {
		return ""
	}
	return s.Subtle.Render(strings.Repeat("─", width))
}
