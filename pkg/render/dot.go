package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/view"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds length, depth and genome names to node labels.
	// When false, only the node id is shown.
	Detailed bool
}

// ToDOT converts a view to Graphviz DOT source.
func ToDOT(v *view.View, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	for _, l := range v.Layers {
		buf.WriteString("\n")
		names := make([]string, len(l.Nodes))
		for i, n := range l.Nodes {
			names[i] = strconv.Quote(nodeName(n.ID))
			label := fmtLabel(v, n, l.Depth, opts.Detailed)
			fmt.Fprintf(&buf, "  %s [%s];\n", names[i], strings.Join(fmtAttrs(n, label), ", "))
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(names, "; "))
	}

	buf.WriteString("\n")
	for _, e := range v.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", nodeName(e.From), nodeName(e.To))
	}
	if _, ok := v.Node(v.Center); ok {
		fmt.Fprintf(&buf, "  %q [penwidth=3];\n", nodeName(v.Center))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id int) string {
	if id < 0 {
		return "snp" + strconv.Itoa(-id)
	}
	return strconv.Itoa(id)
}

func fmtLabel(v *view.View, n view.Node, depth int, detailed bool) string {
	title := strconv.Itoa(n.ID)
	if n.IsBubble() {
		members := make([]string, len(n.Members()))
		for i, m := range n.Members() {
			members[i] = strconv.Itoa(m)
		}
		title = "SNP " + strings.Join(members, "|")
	}
	if !detailed {
		return title
	}

	parts := []string{
		fmt.Sprintf("depth: %d", depth),
		fmt.Sprintf("length: %d", n.Length),
	}
	if names := genomeNames(v, n.Genomes); len(names) > 0 {
		parts = append(parts, "genomes: "+strings.Join(names, ", "))
	}
	return title + "\n" + strings.Join(parts, "\n")
}

func genomeNames(v *view.View, idx []int) []string {
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		if i >= 0 && i < len(v.Genomes) {
			out = append(out, v.Genomes[i])
		} else {
			out = append(out, "#"+strconv.Itoa(i))
		}
	}
	return out
}

func fmtAttrs(n view.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.IsBubble() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the drawing scales from its
// origin regardless of the offsets Graphviz emits.
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
