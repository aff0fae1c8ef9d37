// Package text renders steps for the terminal.
//
// Trees print as an indented outline rooted at the frame's root, graphs as
// adjacency lines, lists on one line each and tables as a bordered grid. The
// nodes a step focuses on are highlighted; marked nodes carry a trailing "*".
// Styling goes through lipgloss, which drops colors when the output is not a
// terminal.
package text

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/algotrace/pkg/trace"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

// headerRow is the row index lipgloss/table passes for the header.
const headerRow = -1

var (
	styleKind   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleIndex  = lipgloss.NewStyle().Foreground(colorGray)
	styleFocus  = lipgloss.NewStyle().Bold(true).Foreground(colorAmber)
	styleMarked = lipgloss.NewStyle().Foreground(colorGreen)
	styleNode   = lipgloss.NewStyle().Foreground(colorWhite)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
)

// Step renders the header, narrative and frame of s.
func Step(s trace.Step) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", styleIndex.Render("#"+strconv.Itoa(s.Index)), styleKind.Render(string(s.Kind)))
	b.WriteString(s.Narrative)
	b.WriteString("\n")
	if s.Snapshot != nil {
		if body := Frame(s.Snapshot.Frame(), s.Focus); body != "" {
			b.WriteString("\n")
			b.WriteString(body)
		}
	}
	return b.String()
}

// Frame renders f, highlighting the nodes in focus.
func Frame(f trace.Frame, focus []string) string {
	var parts []string
	if len(f.Nodes) > 0 {
		if f.Root != "" {
			parts = append(parts, outline(f, focus))
		} else {
			parts = append(parts, adjacency(f, focus))
		}
	}
	if len(f.Lists) > 0 {
		parts = append(parts, lists(f.Lists))
	}
	if f.Table != nil {
		parts = append(parts, Table(*f.Table))
	}
	return strings.Join(parts, "\n")
}

func nodeLabel(n trace.FrameNode, focus []string) string {
	label := n.Label
	if n.Marked {
		label += "*"
	}
	switch {
	case slices.Contains(focus, n.ID):
		return styleFocus.Render(label)
	case n.Marked:
		return styleMarked.Render(label)
	}
	return styleNode.Render(label)
}

// outline prints the tree below f.Root with box-drawing guides.
func outline(f trace.Frame, focus []string) string {
	nodes := make(map[string]trace.FrameNode, len(f.Nodes))
	for _, n := range f.Nodes {
		nodes[n.ID] = n
	}
	children := make(map[string][]trace.FrameEdge)
	for _, e := range f.Edges {
		children[e.From] = append(children[e.From], e)
	}

	var b strings.Builder
	var walk func(id, prefix string)
	walk = func(id, prefix string) {
		kids := children[id]
		for i, e := range kids {
			branch, next := "├── ", "│   "
			if i == len(kids)-1 {
				branch, next = "└── ", "    "
			}
			b.WriteString(styleDim.Render(prefix + branch))
			if e.Label != "" {
				b.WriteString(styleDim.Render(e.Label + ": "))
			}
			b.WriteString(nodeLabel(nodes[e.To], focus))
			b.WriteString("\n")
			walk(e.To, prefix+next)
		}
	}

	b.WriteString(nodeLabel(nodes[f.Root], focus))
	b.WriteString("\n")
	walk(f.Root, "")
	return b.String()
}

// adjacency prints one line per node with its successors.
func adjacency(f trace.Frame, focus []string) string {
	succ := make(map[string][]string)
	for _, e := range f.Edges {
		succ[e.From] = append(succ[e.From], e.To)
	}
	byID := make(map[string]trace.FrameNode, len(f.Nodes))
	for _, n := range f.Nodes {
		byID[n.ID] = n
	}

	var b strings.Builder
	for _, n := range f.Nodes {
		b.WriteString(nodeLabel(n, focus))
		if to := succ[n.ID]; len(to) > 0 {
			names := make([]string, len(to))
			for i, id := range to {
				names[i] = id
				if m, ok := byID[id]; ok && slices.Contains(focus, m.ID) {
					names[i] = styleFocus.Render(id)
				}
			}
			b.WriteString(styleDim.Render(" → "))
			b.WriteString(strings.Join(names, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func lists(ls []trace.List) string {
	width := 0
	for _, l := range ls {
		width = max(width, len(l.Name))
	}
	name := lipgloss.NewStyle().Foreground(colorGray).Width(width + 1)

	var b strings.Builder
	for _, l := range ls {
		items := make([]string, len(l.Items))
		for i, item := range l.Items {
			if strings.HasPrefix(item, "[") && strings.HasSuffix(item, "]") && len(item) > 2 {
				items[i] = styleFocus.Render(item)
			} else {
				items[i] = styleNode.Render(item)
			}
		}
		if len(items) == 0 {
			items = []string{styleDim.Render("(empty)")}
		}
		b.WriteString(name.Render(l.Name+":") + " " + strings.Join(items, " ") + "\n")
	}
	return b.String()
}

// Table renders t as a bordered grid with marked cells highlighted.
func Table(t trace.Table) string {
	marked := make(map[[2]int]bool, len(t.Marks))
	for _, m := range t.Marks {
		marked[m] = true
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader.Padding(0, 1)
			case marked[[2]int{row, col}]:
				return styleFocus.Padding(0, 1)
			case col == 0:
				return styleHeader.Padding(0, 1)
			}
			return styleCell
		})
	return tbl.Render() + "\n"
}

// Log renders a one-line-per-step summary of l as a table.
func Log(l trace.Log) string {
	rows := make([][]string, 0, l.Len())
	for i, s := range l.All() {
		rows = append(rows, []string{strconv.Itoa(i), string(s.Kind), s.Narrative})
	}
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Kind", "Narrative").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader.Padding(0, 1)
			case col == 1:
				return styleKind.Padding(0, 1)
			}
			return styleCell
		})
	return tbl.Render() + "\n"
}
