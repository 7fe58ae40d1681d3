package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/simtrans/simtrans/pkg/model"
	"github.com/simtrans/simtrans/pkg/tmpl"
)

var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	detailBox    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// linkBrowser is the bubbletea model behind inspect --interactive: a
// scrolling table of links with the selected link's details below it.
type linkBrowser struct {
	body   *model.Body
	cursor int
	offset int
	height int
}

func newLinkBrowser(body *model.Body) linkBrowser {
	return linkBrowser{body: body, height: 12}
}

func (m linkBrowser) Init() tea.Cmd {
	return nil
}

func (m linkBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.body.Links)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "home", "g":
			m.cursor, m.offset = 0, 0
		case "end", "G":
			m.cursor = max(len(m.body.Links)-1, 0)
			m.offset = max(m.cursor-m.height+1, 0)
		}
	case tea.WindowSizeMsg:
		// Leave room for the title and the detail pane.
		m.height = max(msg.Height-18, 5)
		if m.cursor >= m.offset+m.height {
			m.offset = m.cursor - m.height + 1
		}
	}
	return m, nil
}

func (m linkBrowser) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.body.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.body.Links) == 0 {
		b.WriteString(listDimStyle.Render("  no links"))
		return b.String()
	}

	end := min(m.offset+m.height, len(m.body.Links))
	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		l := m.body.Links[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		mass := "-"
		if l.Inertial != nil {
			mass = tmpl.Num(l.Inertial.Mass)
		}
		rows = append(rows, []string{cursor, l.Name, mass, fmt.Sprint(len(l.Visuals)), m.parentJoint(l.Name)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Link", "Mass", "Visuals", "Joint").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if m.offset+row == m.cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col == 2 || col == 3 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(detailBox.Render(m.details(m.body.Links[m.cursor])))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.body.Links))))

	return b.String()
}

// parentJoint names the joint that moves link, or "-" for a root.
func (m linkBrowser) parentJoint(link string) string {
	for _, j := range m.body.Joints {
		if j.Child == link {
			return fmt.Sprintf("%s (%s)", j.Name, j.Type)
		}
	}
	return "-"
}

func (m linkBrowser) details(l *model.Link) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", StyleHighlight.Render(l.Name))
	fmt.Fprintf(&b, "pose      %s\n", tmpl.RPY(l.Pose))
	if in := l.Inertial; in != nil {
		fmt.Fprintf(&b, "mass      %s\n", tmpl.Num(in.Mass))
		fmt.Fprintf(&b, "com       %s\n", tmpl.Vec(in.CenterOfMass))
		r := in.Inertia.Rows()
		fmt.Fprintf(&b, "inertia   %s %s %s / %s %s / %s\n",
			tmpl.Num(r[0]), tmpl.Num(r[1]), tmpl.Num(r[2]), tmpl.Num(r[4]), tmpl.Num(r[5]), tmpl.Num(r[8]))
	}
	for _, v := range l.Visuals {
		fmt.Fprintf(&b, "visual    %s (%s)\n", v.Name, shapeDetail(v))
	}
	var children []string
	for _, j := range m.body.Joints {
		if j.Parent == l.Name {
			children = append(children, j.Child)
		}
	}
	if len(children) > 0 {
		fmt.Fprintf(&b, "children  %s\n", strings.Join(children, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func shapeDetail(s *model.Shape) string {
	switch p := s.Primitive.(type) {
	case *model.Box:
		return "box " + tmpl.Vec(p.Size())
	case *model.Cylinder:
		return fmt.Sprintf("cylinder r=%s h=%s", tmpl.Num(p.Radius), tmpl.Num(p.Height))
	case *model.Sphere:
		return "sphere r=" + tmpl.Num(p.Radius)
	case *model.Mesh:
		if p.Data != nil {
			return fmt.Sprintf("mesh %d triangles", len(p.Data.Triangles))
		}
		return "mesh"
	}
	return s.Kind().String()
}
