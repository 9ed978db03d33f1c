package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/famtree/pkg/family"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the member id and gender to node labels.
	// When false, only the name is shown.
	Detailed bool
}

// Fill colours by gender.
var genderFill = map[family.Gender]string{
	family.GenderMale:   "#dbeafe",
	family.GenderFemale: "#fce7f3",
	family.GenderOther:  "#ecfccb",
}

// ToDOT converts a family tree to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(t *family.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph family {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, m := range t.Members() {
		fmt.Fprintf(&buf, "  %q [%s];\n", m.ID, strings.Join(fmtAttrs(m, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	seen := make(map[[2]string]bool)
	for _, l := range t.Relations() {
		if _, ok := t.Member(l.To); !ok {
			continue
		}
		switch {
		case l.Kind.IsParent():
			// from has father/mother "to": draw parent -> child
			fmt.Fprintf(&buf, "  %q -> %q;\n", l.To, l.From)
		case l.Kind.IsSymmetric():
			pair := [2]string{l.From, l.To}
			if l.To < l.From {
				pair = [2]string{l.To, l.From}
			}
			if seen[pair] {
				continue
			}
			seen[pair] = true
			fmt.Fprintf(&buf, "  { rank=same; %q; %q; }\n", pair[0], pair[1])
			fmt.Fprintf(&buf, "  %q -> %q [dir=none, style=dashed, constraint=false];\n", pair[0], pair[1])
		default:
			fmt.Fprintf(&buf, "  %q -> %q [style=dotted, label=%q, fontsize=10];\n", l.From, l.To, string(l.Kind))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(m *family.Member, detailed bool) string {
	if !detailed {
		return m.Name
	}
	return m.Name + "\n" + m.ID + " · " + string(m.Gender)
}

func fmtAttrs(m *family.Member, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(m, detailed))}
	if fill, ok := genderFill[m.Gender]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
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

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// pixel-sized one so browsers scale the diagram consistently.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
