package kinematics

import (
	"slices"
	"strings"

	"github.com/simtrans/simtrans/pkg/errors"
	"github.com/simtrans/simtrans/pkg/model"
)

// Node is one link of a kinematic tree together with the joint that
// attaches it to its parent. The root's joint is a synthetic fixed joint
// named after the root link with no parent.
type Node struct {
	Link     *model.Link
	Joint    *model.Joint
	Children []*Node
}

// IsRoot reports whether n carries the synthetic root joint.
func (n *Node) IsRoot() bool { return n.Joint.Parent == "" }

// Walk visits n and its descendants depth-first, parents before children.
// A non-nil error from fn stops the walk and is returned.
func (n *Node) Walk(fn func(n *Node, depth int) error) error {
	return n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) error, depth int) error {
	if err := fn(n, depth); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.walk(fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	total := 0
	_ = n.Walk(func(*Node, int) error { total++; return nil })
	return total
}

// BuildTree nests the body under its root link. Children keep joint order.
func (g *Graph) BuildTree() (*Node, error) {
	root, err := g.Root()
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{root.Name: true}
	node := &Node{
		Link:  root,
		Joint: &model.Joint{Name: root.Name, Type: model.Fixed, Pose: model.IdentityPose()},
	}
	if node.Children, err = g.convertChildren(root.Name, visited); err != nil {
		return nil, err
	}

	if len(visited) < len(g.body.Links) {
		var unreached []string
		for _, l := range g.body.Links {
			if !visited[l.Name] {
				unreached = append(unreached, l.Name)
			}
		}
		return nil, errors.WithToken(errors.ErrCodeAmbiguousRoot, strings.Join(unreached, ","),
			"links not reachable from root %q: %s", root.Name, strings.Join(unreached, ", "))
	}
	return node, nil
}

func (g *Graph) convertChildren(link string, visited map[string]bool) ([]*Node, error) {
	joints := g.children[link]
	if len(joints) == 0 {
		return nil, nil
	}
	nodes := make([]*Node, 0, len(joints))
	for _, j := range joints {
		if visited[j.Child] {
			return nil, errors.WithToken(errors.ErrCodeNotATree, j.Child,
				"link %q is reached more than once (via joint %q)", j.Child, j.Name)
		}
		visited[j.Child] = true
		children, err := g.convertChildren(j.Child, visited)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, &Node{Link: g.links[j.Child], Joint: j, Children: children})
	}
	return slices.Clip(nodes), nil
}

// Convert indexes body and builds its tree.
func Convert(body *model.Body) (*Node, error) {
	g, err := NewGraph(body)
	if err != nil {
		return nil, err
	}
	return g.BuildTree()
}
