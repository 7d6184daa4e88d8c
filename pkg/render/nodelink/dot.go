package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/planeseg/pkg/render"
	"github.com/matzehuels/planeseg/pkg/segmentation"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds size, area and normal to node labels and weights to edges.
	// When false, only the region ID and item count are shown.
	Detailed bool
}

// ToDOT converts the region adjacency of a segmentation to Graphviz DOT.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(s segmentation.Segmentation, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	unit := "items"
	if s.Kind == segmentation.KindMesh {
		unit = "faces"
	}
	for _, r := range s.Regions {
		fmt.Fprintf(&buf, "  r%d [label=%q, fillcolor=%q];\n", r.ID, fmtLabel(r, unit, opts.Detailed), render.Color(r.ID).Hex())
	}

	buf.WriteString("\n")
	for _, e := range s.Adjacency {
		attrs := []string{fmt.Sprintf("penwidth=%.1f", penWidth(e.Weight))}
		if opts.Detailed {
			attrs = append(attrs, fmt.Sprintf("label=%q", strconv.Itoa(e.Weight)))
		}
		fmt.Fprintf(&buf, "  r%d -- r%d [%s];\n", e.A, e.B, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(r segmentation.Region, unit string, detailed bool) string {
	label := fmt.Sprintf("R%d\n%d %s", r.ID, len(r.Items), unit)
	if !detailed {
		return label
	}
	parts := []string{label}
	if r.Area > 0 {
		parts = append(parts, fmt.Sprintf("area: %.3g", r.Area))
	}
	if r.Plane != nil {
		n := r.Plane.Normal
		parts = append(parts, fmt.Sprintf("n: (%.2f, %.2f, %.2f)", n[0], n[1], n[2]))
	}
	return strings.Join(parts, "\n")
}

func penWidth(weight int) float64 {
	return min(1+float64(weight)/4, 6)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the drawing scales with its container.
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
