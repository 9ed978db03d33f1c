// Package nodelink renders a family tree as a node-link diagram.
//
// # Overview
//
// Members appear as rounded boxes. Edges are drawn by kind:
//
//   - father and mother edges point from parent to child, so generations
//     stack top to bottom
//   - spouse pairs are joined once by an undirected dashed line on the same rank
//   - every other kind is a dotted, labelled arrow from the owner to the target
//
// Edges whose target is missing from the tree are skipped.
//
// # Usage
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is needed.
package nodelink
