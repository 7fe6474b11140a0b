package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nightness/tensorcalc/internal/report"
)

// IndexLabel names a component by its coordinates, e.g. "r theta theta".
func IndexLabel(idx []int, coords []string) string {
	if len(idx) == 0 {
		return "scalar"
	}
	parts := make([]string, len(idx))
	for i, v := range idx {
		if v >= 0 && v < len(coords) {
			parts[i] = coords[v]
		} else {
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, " ")
}

// Truncate shortens s to width runes with a trailing ellipsis.
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

// ComponentTable renders components as an index column and an expression
// column. Expressions longer than width are truncated; width <= 0 disables
// truncation.
func ComponentTable(title string, comps []report.TensorComponent, coords []string, st Styles, width int) string {
	var b strings.Builder
	b.WriteString(st.Title.Render(title))
	b.WriteByte('\n')
	if len(comps) == 0 {
		b.WriteString(st.Subtle.Render("all components vanish"))
		b.WriteByte('\n')
		return b.String()
	}

	labels := make([]string, len(comps))
	col := 0
	for i, c := range comps {
		labels[i] = fmt.Sprintf("%v  %s", c.Indices, IndexLabel(c.Indices, coords))
		col = max(col, lipgloss.Width(labels[i]))
	}
	exprWidth := 0
	if width > 0 {
		exprWidth = max(width-col-3, 8)
	}
	for i, c := range comps {
		label := st.Index.Render(labels[i] + strings.Repeat(" ", col-lipgloss.Width(labels[i])))
		b.WriteString(label)
		b.WriteString(st.Subtle.Render(" │ "))
		b.WriteString(st.Value.Render(Truncate(c.Expression, exprWidth)))
		b.WriteByte('\n')
	}
	return b.String()
}
