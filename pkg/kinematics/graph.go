// Package kinematics turns the flat link/joint graph of a [model.Body] into
// a strictly nested tree.
//
// Graph-style formats list links and joints side by side and connect them
// by name. Tree-style formats nest every link inside the joint that moves
// it. [Graph] indexes a body once; [Graph.BuildTree] walks it from the
// single root link and fails if the graph is not a tree:
//
//   - no root candidate (every link is some joint's child): NO_ROOT_FOUND
//   - several candidates, or links not reachable from the root: AMBIGUOUS_ROOT
//   - a link reached along two paths: NOT_A_TREE
//   - a joint naming an unknown link: DANGLING_REFERENCE
//
// The root candidates are the parent links that are never a child, in order
// of first appearance among the joints. A body without joints has every link
// as a candidate, so a single-link body converts to a one-node tree.
package kinematics

import (
	"strings"

	"github.com/simtrans/simtrans/pkg/errors"
	"github.com/simtrans/simtrans/pkg/model"
)

// Graph is a name-indexed view of a body. It does not copy or modify the
// body and is not safe for concurrent mutation of that body.
type Graph struct {
	body     *model.Body
	links    map[string]*model.Link
	children map[string][]*model.Joint // parent link -> joints, in joint order
}

// NewGraph indexes body. It fails with PARSE_ERROR when two links share a
// name and with DANGLING_REFERENCE when a joint's parent or child names no
// link.
func NewGraph(body *model.Body) (*Graph, error) {
	g := &Graph{
		body:     body,
		links:    make(map[string]*model.Link, len(body.Links)),
		children: make(map[string][]*model.Joint),
	}
	for _, l := range body.Links {
		if _, dup := g.links[l.Name]; dup {
			return nil, errors.WithToken(errors.ErrCodeParse, l.Name, "duplicate link name %q", l.Name)
		}
		g.links[l.Name] = l
	}
	for _, j := range body.Joints {
		for _, ref := range [2]string{j.Parent, j.Child} {
			if _, ok := g.links[ref]; !ok {
				return nil, errors.WithToken(errors.ErrCodeDanglingReference, ref,
					"joint %q refers to unknown link %q", j.Name, ref)
			}
		}
		g.children[j.Parent] = append(g.children[j.Parent], j)
	}
	return g, nil
}

// Body returns the indexed body.
func (g *Graph) Body() *model.Body { return g.body }

// Link returns the link named name, or nil.
func (g *Graph) Link(name string) *model.Link { return g.links[name] }

// Children returns the joints whose parent is link, in joint order.
func (g *Graph) Children(link string) []*model.Joint { return g.children[link] }

// Roots returns the names of the links that are a parent of some joint but
// the child of none, in order of first appearance.
func (g *Graph) Roots() []string {
	if len(g.body.Joints) == 0 {
		names := make([]string, len(g.body.Links))
		for i, l := range g.body.Links {
			names[i] = l.Name
		}
		return names
	}

	isChild := make(map[string]bool, len(g.body.Joints))
	for _, j := range g.body.Joints {
		isChild[j.Child] = true
	}
	var roots []string
	seen := make(map[string]bool)
	for _, j := range g.body.Joints {
		if isChild[j.Parent] || seen[j.Parent] {
			continue
		}
		seen[j.Parent] = true
		roots = append(roots, j.Parent)
	}
	return roots
}

// Root returns the single root link.
func (g *Graph) Root() (*model.Link, error) {
	roots := g.Roots()
	switch len(roots) {
	case 0:
		return nil, errors.New(errors.ErrCodeNoRootFound, "no root link: every link is the child of a joint")
	case 1:
		return g.links[roots[0]], nil
	}
	return nil, errors.WithToken(errors.ErrCodeAmbiguousRoot, strings.Join(roots, ","),
		"%d root candidates: %s", len(roots), strings.Join(roots, ", "))
}
