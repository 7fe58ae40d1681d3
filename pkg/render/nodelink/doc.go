// Package nodelink renders the link/joint graph of a robot model as a
// node-link diagram.
//
// Every link becomes a box and every joint an arrow from its parent link to
// its child link, labelled "name (type)". The diagram shows the graph as
// the document describes it, so bodies that are not trees (cycles, several
// roots) can still be drawn for diagnosis.
//
//	dot := nodelink.ToDOT(body, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// With Detailed set, link labels include mass and visual count, and edge
// labels include the joint axis and limits.
//
// SVG rendering runs Graphviz in-process through
// [github.com/goccy/go-graphviz]. PDF and PNG output go through
// rsvg-convert (see the render package).
package nodelink
