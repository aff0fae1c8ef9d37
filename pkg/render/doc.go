// Package render turns recorded steps into pictures.
//
// # Overview
//
// Every step carries a snapshot that projects into a [trace.Frame]: nodes and
// edges for the tree and graph engines, named lists for the expression engine,
// a table for the LCS engine. The subpackages render that frame:
//
//   - [dot]: Graphviz DOT source and in-process SVG
//   - [text]: terminal output styled with lipgloss
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := dot.RenderSVG(ctx, dot.ToDOT(step, dot.Options{}))
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [dot]: github.com/matzehuels/algotrace/pkg/render/dot
// [text]: github.com/matzehuels/algotrace/pkg/render/text
// [trace.Frame]: github.com/matzehuels/algotrace/pkg/trace.Frame
package render
