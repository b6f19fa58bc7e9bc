// Package render draws subgraph views as node-link diagrams.
//
// # Usage
//
// Convert a view to DOT format, then render to SVG:
//
//	dot := render.ToDOT(v, render.Options{Detailed: false})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # DOT Format
//
// The generated DOT uses top-to-bottom layout (rankdir=TB). Every layer of
// the view becomes a rank=same group, so the drawing keeps the view's
// topological layering. SNP bubble nodes are drawn dashed and grey and are
// labelled with the segments they replace.
//
// The DOT source can be rendered with [RenderSVG], saved for external
// Graphviz tools, or edited before rendering.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is needed.
package render
