package dot

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/algotrace/pkg/trace"
)

// Colors used for emphasis.
const (
	FocusColor = "#ffd866"
	MarkColor  = "#a9dc76"
)

// Options configures step rendering.
type Options struct {
	// Narrative adds "index. kind: narrative" as the diagram title.
	Narrative bool
}

// ToDOT converts the frame of step to Graphviz DOT source. The result can be
// rendered using [RenderSVG].
func ToDOT(step trace.Step, opts Options) string {
	var f trace.Frame
	if step.Snapshot != nil {
		f = step.Snapshot.Frame()
	}

	var buf bytes.Buffer
	buf.WriteString("digraph step {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=12];\n")
	if opts.Narrative {
		title := fmt.Sprintf("%d. %s: %s", step.Index, step.Kind, step.Narrative)
		fmt.Fprintf(&buf, "  labelloc=t;\n  label=%q;\n", title)
	}
	buf.WriteString("\n")

	for _, n := range f.Nodes {
		attrs := fmtAttrs(n, slices.Contains(step.Focus, n.ID))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	if len(f.Edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range f.Edges {
		if e.Label != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, e.Label)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	for i, l := range f.Lists {
		fmt.Fprintf(&buf, "\n  \"list_%d\" [shape=plaintext, style=\"\", label=<%s>];\n", i, listHTML(l))
	}
	if f.Table != nil {
		fmt.Fprintf(&buf, "\n  \"table\" [shape=plaintext, style=\"\", label=<%s>];\n", tableHTML(*f.Table))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n trace.FrameNode, focused bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.Label)}
	switch {
	case focused:
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", FocusColor), "penwidth=2")
	case n.Marked:
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", MarkColor))
	}
	if n.Marked {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

func listHTML(l trace.List) string {
	var b strings.Builder
	b.WriteString(`<table border="0" cellborder="1" cellspacing="0" cellpadding="4"><tr>`)
	fmt.Fprintf(&b, `<td border="0"><b>%s</b></td>`, html.EscapeString(l.Name))
	if len(l.Items) == 0 {
		b.WriteString(`<td border="0"><i>empty</i></td>`)
	}
	for _, item := range l.Items {
		// The expression engine brackets the token under the cursor.
		if strings.HasPrefix(item, "[") && strings.HasSuffix(item, "]") && len(item) > 2 {
			fmt.Fprintf(&b, `<td bgcolor="%s">%s</td>`, FocusColor, html.EscapeString(item[1:len(item)-1]))
			continue
		}
		fmt.Fprintf(&b, `<td>%s</td>`, html.EscapeString(item))
	}
	b.WriteString(`</tr></table>`)
	return b.String()
}

func tableHTML(t trace.Table) string {
	marked := make(map[[2]int]bool, len(t.Marks))
	for _, m := range t.Marks {
		marked[m] = true
	}

	var b strings.Builder
	b.WriteString(`<table border="0" cellborder="1" cellspacing="0" cellpadding="4">`)
	if len(t.Headers) > 0 {
		b.WriteString("<tr>")
		for _, h := range t.Headers {
			fmt.Fprintf(&b, `<td><b>%s</b></td>`, html.EscapeString(h))
		}
		b.WriteString("</tr>")
	}
	for r, row := range t.Rows {
		b.WriteString("<tr>")
		for c, cell := range row {
			if marked[[2]int{r, c}] {
				fmt.Fprintf(&b, `<td bgcolor="%s">%s</td>`, FocusColor, html.EscapeString(cell))
			} else {
				fmt.Fprintf(&b, `<td>%s</td>`, html.EscapeString(cell))
			}
		}
		b.WriteString("</tr>")
	}
	b.WriteString(`</table>`)
	return b.String()
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

// normalizeViewBox replaces the Graphviz root element with one whose viewBox
// starts at the origin, so the picture scales cleanly when embedded.
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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
