// Package render turns a family tree into views for people.
//
// The core packages ([github.com/matzehuels/famtree/pkg/family] and
// [github.com/matzehuels/famtree/pkg/family/hierarchy]) only know about
// members and edges. The subpackages here produce presentation:
//
//   - [text]: the sorted member list and the grouped relationship list
//   - [nodelink]: a Graphviz diagram of the whole family (DOT and SVG)
//
// The indented hierarchy view lives with the traversal in the hierarchy
// package because its shape is part of the tree semantics.
//
//	fmt.Print(text.MemberList(tree))
//	dot := nodelink.ToDOT(tree, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
package render
