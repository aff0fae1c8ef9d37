// Package dot renders a single step as a Graphviz diagram.
//
// # Overview
//
// [ToDOT] converts the frame of a step into DOT source. Structure nodes
// become rounded boxes connected by arrows; the nodes named in the step's
// focus are filled, marked nodes (word ends, placed vertices, unbalanced AVL
// nodes) get a double border. Named lists render as one-row tables and an
// LCS table renders as an HTML-like grid with highlighted cells.
//
// # Usage
//
//	src := dot.ToDOT(step, dot.Options{Narrative: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// The generated DOT uses top-to-bottom layout (rankdir=TB), which matches how
// trees are usually drawn.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion goes through the parent render package.
package dot
