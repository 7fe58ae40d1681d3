// Package render converts rendered diagrams between output formats.
//
// Diagrams are produced as SVG by the [nodelink] subpackage. [ToPDF] and
// [ToPNG] convert any SVG with the external rsvg-convert tool (librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// Install librsvg with "brew install librsvg" (macOS) or
// "apt install librsvg2-bin" (Debian, Ubuntu).
package render
