package viz

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nightness/tensorcalc/internal/report"
)

// Browser is a bubbletea model for paging through computed components, one
// tensor per tab.
type Browser struct {
	title         string
	coords        []string
	names         []string
	tensors       map[string][]report.TensorComponent
	tab, cursor   int
	offset        int
	width, height int
	theme         int
	styles        Styles
}

func NewBrowser(title string, tensors map[string][]report.TensorComponent, coords []string) Browser {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	theme := 0
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			theme = i
		}
	}
	return Browser{
		title:   title,
		coords:  coords,
		names:   names,
		tensors: tensors,
		width:   80,
		height:  24,
		theme:   theme,
		styles:  NewStyles(Themes[theme]),
	}
}

// Run starts the browser on the alternate screen and blocks until it quits.
func (b Browser) Run() error {
	_, err := tea.NewProgram(b, tea.WithAltScreen()).Run()
	return err
}

func (b Browser) Init() tea.Cmd { return nil }

func (b Browser) current() []report.TensorComponent {
	if len(b.names) == 0 {
		return nil
	}
	return b.tensors[b.names[b.tab]]
}

// rows available for the component list
func (b Browser) listHeight() int {
	return max(b.height-10, 3)
}

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return b, tea.Quit
		case "up", "k":
			if b.cursor > 0 {
				b.cursor--
			}
		case "down", "j":
			if b.cursor < len(b.current())-1 {
				b.cursor++
			}
		case "pgdown":
			b.cursor = min(b.cursor+b.listHeight(), max(len(b.current())-1, 0))
		case "pgup":
			b.cursor = max(b.cursor-b.listHeight(), 0)
		case "tab", "right", "l":
			if len(b.names) > 0 {
				b.tab = (b.tab + 1) % len(b.names)
				b.cursor, b.offset = 0, 0
			}
		case "shift+tab", "left", "h":
			if len(b.names) > 0 {
				b.tab = (b.tab + len(b.names) - 1) % len(b.names)
				b.cursor, b.offset = 0, 0
			}
		case "t":
			b.theme = (b.theme + 1) % len(Themes)
			b.styles = NewStyles(Themes[b.theme])
		}
	}
	if b.cursor < b.offset {
		b.offset = b.cursor
	}
	if h := b.listHeight(); b.cursor >= b.offset+h {
		b.offset = b.cursor - h + 1
	}
	return b, nil
}

func (b Browser) View() string {
	st := b.styles
	var s strings.Builder
	s.WriteString(st.Title.Render(b.title))
	s.WriteString(st.Subtle.Render("  (" + strings.Join(b.coords, ", ") + ")"))
	s.WriteString("\n\n")

	if len(b.names) == 0 {
		s.WriteString(st.Subtle.Render("nothing to show"))
		s.WriteString("\n\n")
		s.WriteString(st.KeyHint.Render("q quit"))
		return s.String()
	}

	tabs := make([]string, len(b.names))
	for i, name := range b.names {
		label := fmt.Sprintf(" %s (%d) ", name, len(b.tensors[name]))
		if i == b.tab {
			tabs[i] = st.Selected.Render("[" + label + "]")
		} else {
			tabs[i] = st.Subtle.Render(" " + label + " ")
		}
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	s.WriteString("\n")
	s.WriteString(st.Separator(b.width))
	s.WriteString("\n")

	comps := b.current()
	if len(comps) == 0 {
		s.WriteString(st.Subtle.Render("all components vanish"))
		s.WriteString("\n")
	}
	end := min(b.offset+b.listHeight(), len(comps))
	exprWidth := max(b.width-30, 10)
	for i := b.offset; i < end; i++ {
		c := comps[i]
		label := fmt.Sprintf("%-10v %-22s", c.Indices, IndexLabel(c.Indices, b.coords))
		line := label + " " + Truncate(c.Expression, exprWidth)
		if i == b.cursor {
			s.WriteString(st.Selected.Render("▸ " + line))
		} else {
			s.WriteString("  " + st.Index.Render(label) + " " + st.Value.Render(Truncate(c.Expression, exprWidth)))
		}
		s.WriteString("\n")
	}

	if len(comps) > 0 {
		c := comps[b.cursor]
		detail := st.Panel.Width(max(b.width-4, 20)).Render(
			st.Index.Render(fmt.Sprint(c.Indices)) + "\n" + c.Expression)
		s.WriteString("\n")
		s.WriteString(detail)
		s.WriteString("\n")
	}
	s.WriteString(st.KeyHint.Render("↑/↓ move  tab switch tensor  t theme  q quit"))
	return s.String()
}
