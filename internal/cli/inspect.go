package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/simtrans/simtrans/pkg/kinematics"
	"github.com/simtrans/simtrans/pkg/model"
	"github.com/simtrans/simtrans/pkg/tmpl"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		interactive bool
		strict      bool
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <model.sdf>",
		Short: "Show the kinematic tree and joint summary of a model",
		Long: `Read a model and print its kinematic tree, followed by a table of joints.

With --interactive, browse the links in a terminal UI instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strict {
				c.config().Read.Strict = true
			}
			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(loggerFromContext(cmd.Context()))
			body, err := runner.Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			prog.done("Read " + body.Name)

			if interactive {
				_, err := tea.NewProgram(newLinkBrowser(body), tea.WithContext(cmd.Context())).Run()
				return err
			}
			printInspect(body)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse links interactively")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on joints that reference unknown links")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not read or write the mesh cache")

	return cmd
}

func printInspect(body *model.Body) {
	fmt.Fprintln(stdout, StyleTitle.Render(body.Name))
	printKeyValue("links", strconv.Itoa(len(body.Links)))
	printKeyValue("joints", strconv.Itoa(len(body.Joints)))
	printKeyValue("mass", tmpl.Num(totalMass(body)))
	fmt.Fprintln(stdout)

	root, err := kinematics.Convert(body)
	if err != nil {
		printWarning("not a kinematic tree: %s", describeError(err))
		for _, l := range body.Links {
			printDetail("%s", linkSummary(l))
		}
	} else {
		fmt.Fprintln(stdout, linkTree(root))
	}

	if len(body.Joints) > 0 {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, jointTable(body.Joints))
	}
}

// linkTree renders the kinematic tree, one node per link.
func linkTree(n *kinematics.Node) *tree.Tree {
	t := tree.Root(nodeLabel(n)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)
	for _, c := range n.Children {
		t.Child(linkTree(c))
	}
	return t
}

func nodeLabel(n *kinematics.Node) string {
	label := StyleValue.Render(linkSummary(n.Link))
	if n.IsRoot() {
		return label
	}
	return label + StyleDim.Render(fmt.Sprintf(" via %s (%s)", n.Joint.Name, n.Joint.Type))
}

func linkSummary(l *model.Link) string {
	var parts []string
	if l.Inertial != nil {
		parts = append(parts, tmpl.Num(l.Inertial.Mass)+" kg")
	}
	for _, v := range l.Visuals {
		parts = append(parts, v.Kind().String())
	}
	if len(parts) == 0 {
		return l.Name
	}
	return fmt.Sprintf("%s [%s]", l.Name, strings.Join(parts, ", "))
}

func jointTable(joints []*model.Joint) *table.Table {
	rows := make([][]string, 0, len(joints))
	for _, j := range joints {
		axis, limit := "-", "-"
		if j.Axis != nil {
			axis = tmpl.Vec(*j.Axis)
		}
		if j.Limit != nil {
			limit = fmt.Sprintf("[%s, %s]", tmpl.Num(j.Limit.Lower), tmpl.Num(j.Limit.Upper))
		}
		rows = append(rows, []string{j.Name, j.Type.String(), j.Parent, j.Child, axis, limit})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Joint", "Type", "Parent", "Child", "Axis", "Limit").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func totalMass(body *model.Body) float64 {
	var m float64
	for _, l := range body.Links {
		if l.Inertial != nil {
			m += l.Inertial.Mass
		}
	}
	return m
}
