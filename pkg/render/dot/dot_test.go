package dot

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/algotrace/pkg/engine/bst"
	"github.com/matzehuels/algotrace/pkg/trace"
)

func frameStep(f trace.Frame, focus ...string) trace.Step {
	return trace.Step{Index: 3, Kind: "visit", Focus: focus, Snapshot: f, Narrative: "visit B"}
}

func TestToDOTNodesAndEdges(t *testing.T) {
	f := trace.Frame{
		Root: "n1",
		Nodes: []trace.FrameNode{
			{ID: "n1", Label: "A"},
			{ID: "n2", Label: "B", Marked: true},
			{ID: "n3", Label: "C"},
		},
		Edges: []trace.FrameEdge{
			{From: "n1", To: "n2", Label: "L"},
			{From: "n1", To: "n3"},
		},
	}
	out := ToDOT(frameStep(f, "n2"), Options{})

	for _, want := range []string{
		"digraph step {",
		`"n1" [label="A"];`,
		`"n2" [label="B", fillcolor="#ffd866", penwidth=2, peripheries=2];`,
		`"n1" -> "n2" [label="L"];`,
		`"n1" -> "n3";`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "labelloc") {
		t.Error("title should only be emitted with Options.Narrative")
	}
}

func TestToDOTNarrative(t *testing.T) {
	out := ToDOT(frameStep(trace.Frame{}), Options{Narrative: true})
	if !strings.Contains(out, `label="3. visit: visit B";`) {
		t.Errorf("missing title:\n%s", out)
	}
}

func TestToDOTMarkedWithoutFocus(t *testing.T) {
	f := trace.Frame{Nodes: []trace.FrameNode{{ID: "x", Label: "x", Marked: true}}}
	out := ToDOT(frameStep(f), Options{})
	if !strings.Contains(out, `"x" [label="x", fillcolor="#a9dc76", peripheries=2];`) {
		t.Errorf("marked node not emphasized:\n%s", out)
	}
}

func TestToDOTListsAndTable(t *testing.T) {
	f := trace.Frame{
		Lists: []trace.List{
			{Name: "input", Items: []string{"3", "[+]", "4"}},
			{Name: "stack", Items: nil},
		},
		Table: &trace.Table{
			Headers: []string{"", "a"},
			Rows:    [][]string{{"b", "<1>"}},
			Marks:   [][2]int{{0, 1}},
		},
	}
	out := ToDOT(frameStep(f), Options{})

	if !strings.Contains(out, `<td bgcolor="#ffd866">+</td>`) {
		t.Errorf("cursor token not highlighted:\n%s", out)
	}
	if !strings.Contains(out, "<i>empty</i>") {
		t.Errorf("empty list not labelled:\n%s", out)
	}
	if !strings.Contains(out, `<td bgcolor="#ffd866">&lt;1&gt;</td>`) {
		t.Errorf("table cell not escaped or highlighted:\n%s", out)
	}
}

func TestToDOTNilSnapshot(t *testing.T) {
	out := ToDOT(trace.Step{Kind: "noop"}, Options{})
	if !strings.HasPrefix(out, "digraph step {") || !strings.HasSuffix(out, "}\n") {
		t.Errorf("unexpected output for empty step:\n%s", out)
	}
}

func TestToDOTEngineStep(t *testing.T) {
	tr := bst.New()
	tr.Load(50, 30, 70)
	_, log := tr.Delete(30)
	last, _ := log.Last()

	out := ToDOT(last, Options{Narrative: true})
	if strings.Contains(out, `label="30"`) {
		t.Errorf("deleted node still drawn:\n%s", out)
	}
	if !strings.Contains(out, `label="70"`) {
		t.Errorf("remaining node missing:\n%s", out)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := normalizeViewBox(in)
	if !bytes.Contains(out, []byte(`viewBox="0 0 62.00 116.00" width="62" height="116"`)) {
		t.Errorf("viewBox not normalized: %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	f := trace.Frame{
		Nodes: []trace.FrameNode{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}},
		Edges: []trace.FrameEdge{{From: "a", To: "b"}},
	}
	svg, err := RenderSVG(context.Background(), ToDOT(frameStep(f, "a"), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("output is not SVG: %.80s", svg)
	}
}

func TestRenderSVGInvalid(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("RenderSVG should fail on malformed DOT")
	}
}
