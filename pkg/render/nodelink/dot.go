package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/simtrans/simtrans/pkg/model"
	"github.com/simtrans/simtrans/pkg/render"
	"github.com/simtrans/simtrans/pkg/tmpl"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds mass, visual count, axis and limits to the labels.
	Detailed bool
}

// ToDOT converts a body to Graphviz DOT source. Links appear in document
// order, then one edge per joint in document order.
func ToDOT(b *model.Body, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", b.Name)
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=14];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, l := range b.Links {
		attrs := []string{fmt.Sprintf("label=%q", linkLabel(l, opts.Detailed))}
		if l.Inertial == nil {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", l.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, j := range b.Joints {
		attrs := []string{fmt.Sprintf("label=%q", jointLabel(j, opts.Detailed))}
		if j.Type == model.Fixed {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", j.Parent, j.Child, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func linkLabel(l *model.Link, detailed bool) string {
	if !detailed {
		return l.Name
	}
	parts := []string{l.Name}
	if l.Inertial != nil {
		parts = append(parts, "mass: "+tmpl.Num(l.Inertial.Mass))
	}
	if n := len(l.Visuals); n > 0 {
		parts = append(parts, fmt.Sprintf("visuals: %d", n))
	}
	return strings.Join(parts, "\n")
}

func jointLabel(j *model.Joint, detailed bool) string {
	label := fmt.Sprintf("%s (%s)", j.Name, j.Type)
	if !detailed {
		return label
	}
	if j.Axis != nil {
		label += "\naxis: " + tmpl.Vec(*j.Axis)
	}
	if j.Limit != nil {
		label += fmt.Sprintf("\nlimit: [%s, %s]", tmpl.Num(j.Limit.Lower), tmpl.Num(j.Limit.Upper))
	}
	return label
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg tag with one that scales from
// a zero-origin viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders DOT source as PDF via SVG. Requires rsvg-convert.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG at the given scale. Requires
// rsvg-convert.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
