package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/pipeline"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/scene"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/view"
)

const exploreColumnWidth = 20

var (
	exploreCursorStyle    = lipgloss.NewStyle().Reverse(true)
	exploreSelectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	exploreBackwardsStyle = lipgloss.NewStyle().Foreground(colorBlue)
	exploreForwardsStyle  = lipgloss.NewStyle().Foreground(colorPurple)
	exploreNormalStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	exploreTermStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorGray)
	exploreTooltipStyle   = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags planFlags
	var termNames string

	cmd := &cobra.Command{
		Use:   "explore <file>",
		Short: "Browse a plan in the terminal",
		Long: `Explore shows a plan term by term. Moving the cursor highlights a course's
requisite chains; enter selects it and shows its metrics and longest path.

Keys: arrows or hjkl move, enter selects, esc clears, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.newExploreModel(cmd.Context(), args[0], &flags, termNames)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&termNames, "term-names", "", "term labels: index, quarter, semester (default from config)")
	return cmd
}

func (c *CLI) newExploreModel(ctx context.Context, path string, flags *planFlags, termNames string) (*exploreModel, error) {
	opts, err := c.options(flags)
	if err != nil {
		return nil, err
	}
	if termNames != "" {
		opts.TermNames = termNames
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	src, err := readSource(path)
	if err != nil {
		return nil, err
	}

	runner := c.newRunner(nil)
	defer runner.Close()

	p, err := runner.Parse(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	// The view recomputes metrics, but analyzing first reports cycles with
	// the courses involved.
	if _, err := runner.Analyze(ctx, p, opts); err != nil {
		return nil, err
	}
	layout, err := pipeline.NewLayout(ctx, p, opts)
	if err != nil {
		return nil, err
	}

	m := &exploreModel{title: src.Name, relations: make(map[int]view.RelationKind)}
	m.opts = opts.ViewOptions()
	style := m.opts.StyleLinkedNode
	m.opts.StyleLinkedNode = func(n *view.CourseNode, el *scene.Node, rel *view.Relation) {
		if style != nil {
			style(n, el, rel)
		}
		m.track(n, rel)
	}
	m.view = view.New(layout, m.opts)
	if err := m.view.SetPlan(p); err != nil {
		return nil, err
	}
	m.hover()
	return m, nil
}

// exploreModel is the bubbletea model of the explore command. The view owns
// highlight state; the model only moves a cursor over it.
type exploreModel struct {
	view      *view.View
	opts      view.Options
	title     string
	term, row int
	relations map[int]view.RelationKind
	err       error
}

func (m *exploreModel) track(n *view.CourseNode, rel *view.Relation) {
	if rel == nil {
		delete(m.relations, n.ID)
		return
	}
	m.relations[n.ID] = rel.Kind
}

// cursor returns the course under the cursor.
func (m *exploreModel) cursor() (*view.CourseNode, bool) {
	terms := m.view.Terms()
	if m.term >= len(terms) || m.row >= len(terms[m.term]) {
		return nil, false
	}
	return terms[m.term][m.row], true
}

func (m *exploreModel) hover() {
	m.view.Leave()
	if n, ok := m.cursor(); ok {
		m.err = m.view.Hover(n.ID)
	}
}

func (m *exploreModel) move(dterm, drow int) {
	terms := m.view.Terms()
	if len(terms) == 0 {
		return
	}
	m.term = max(0, min(len(terms)-1, m.term+dterm))
	m.row = max(0, min(len(terms[m.term])-1, m.row+drow))
	m.hover()
}

func (m *exploreModel) Init() tea.Cmd {
	return nil
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.move(-1, 0)
	case "right", "l":
		m.move(1, 0)
	case "up", "k":
		m.move(0, -1)
	case "down", "j":
		m.move(0, 1)
	case "enter", " ":
		n, ok := m.cursor()
		if !ok {
			break
		}
		if sel, ok := m.view.Selected(); ok && sel.ID == n.ID {
			m.view.Clear()
			m.hover()
			break
		}
		m.err = m.view.Select(n.ID)
	case "esc":
		m.view.Clear()
		m.hover()
	}
	return m, nil
}

func (m *exploreModel) courseStyle(n *view.CourseNode) lipgloss.Style {
	kind, ok := m.relations[n.ID]
	switch {
	case !ok:
		return exploreNormalStyle
	case kind == view.RelationBackwards:
		return exploreBackwardsStyle
	case kind == view.RelationForwards:
		return exploreForwardsStyle
	}
	return exploreSelectedStyle
}

func (m *exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→/↑/↓ move  ⏎ select  esc clear  q quit"))
	b.WriteString("\n\n")

	onPath := make(map[int]bool)
	for _, id := range m.view.LongestPath() {
		onPath[id] = true
	}

	terms := m.view.Terms()
	columns := make([]string, len(terms))
	for i, term := range terms {
		lines := []string{exploreTermStyle.Render(truncate(m.opts.TermName(term, i), exploreColumnWidth))}
		for j, n := range term {
			marker := " "
			if onPath[n.ID] {
				marker = "•"
			}
			label := fmt.Sprintf("%s %-*s", marker, exploreColumnWidth-2, truncate(n.Name(), exploreColumnWidth-2))
			style := m.courseStyle(n)
			if i == m.term && j == m.row {
				style = style.Inherit(exploreCursorStyle)
			}
			lines = append(lines, style.Render(label))
		}
		if m.opts.TermSummary != nil {
			lines = append(lines, StyleDim.Render(truncate(m.opts.TermSummary(term, i), exploreColumnWidth)))
		}
		columns[i] = lipgloss.NewStyle().Width(exploreColumnWidth + 2).Render(strings.Join(lines, "\n"))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	b.WriteString("\n")

	if tip := m.view.Tooltip(); tip.Visible {
		b.WriteString(exploreTooltipStyle.Render(m.tooltip(tip)))
		b.WriteString("\n")
	}
	if path := m.view.LongestPath(); len(path) > 1 {
		names := make([]string, len(path))
		for i, id := range path {
			if n, ok := m.view.Course(id); ok {
				names[i] = n.Name()
			}
		}
		b.WriteString(StyleDim.Render("Longest path: "))
		b.WriteString(strings.Join(names, " "+iconArrow+" "))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError + " " + m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *exploreModel) tooltip(tip view.Tooltip) string {
	lines := []string{StyleTitle.Render(tip.Title)}
	for _, row := range tip.Rows {
		lines = append(lines, fmt.Sprintf("%-16s %s", row[0], StyleNumber.Render(row[1])))
	}
	if len(tip.Requisites) > 0 {
		lines = append(lines, StyleDim.Render("Requisites"))
		for _, r := range tip.Requisites {
			text := view.RequisiteText(r)
			if r.Redundant {
				text = StyleWarning.Render(text)
			}
			lines = append(lines, "  "+text)
		}
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
