package lcs

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/matzehuels/algotrace/pkg/trace"
)

// Step kinds emitted by the LCS engine.
const (
	KindInit          trace.Kind = "init"
	KindFillMatch     trace.Kind = "fill_match"
	KindFillMax       trace.Kind = "fill_max"
	KindBacktrackDiag trace.Kind = "backtrack_match"
	KindBacktrackUp   trace.Kind = "backtrack_up"
	KindBacktrackLeft trace.Kind = "backtrack_left"
	KindDone          trace.Kind = "done"
)

// Snapshot is the table at one step, the backtrack path so far and the
// subsequence recovered so far.
type Snapshot struct {
	A        string  `json:"a"`
	B        string  `json:"b"`
	Table    [][]int `json:"table"`
	Cursor   *Cell   `json:"cursor,omitempty"`
	Path     []Cell  `json:"path,omitempty"`
	Sequence string  `json:"sequence"`
}

func (s Snapshot) clone() Snapshot {
	c := s
	c.Table = make([][]int, len(s.Table))
	for i, row := range s.Table {
		c.Table[i] = slices.Clone(row)
	}
	if s.Cursor != nil {
		cur := *s.Cursor
		c.Cursor = &cur
	}
	c.Path = slices.Clone(s.Path)
	return c
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() trace.Snapshot { return s.clone() }

// Frame renders the table with a header row over b and a header column over
// a. The cursor and the backtrack path are marked.
func (s Snapshot) Frame() trace.Frame {
	a, b := []rune(s.A), []rune(s.B)
	t := &trace.Table{Headers: []string{"", "∅"}}
	for _, r := range b {
		t.Headers = append(t.Headers, string(r))
	}
	for i, row := range s.Table {
		label := "∅"
		if i > 0 {
			label = string(a[i-1])
		}
		cells := []string{label}
		for _, v := range row {
			cells = append(cells, strconv.Itoa(v))
		}
		t.Rows = append(t.Rows, cells)
	}
	// marks address data cells, offset by the header column
	for _, c := range s.Path {
		t.Marks = append(t.Marks, [2]int{c.I, c.J + 1})
	}
	if s.Cursor != nil {
		t.Marks = append(t.Marks, [2]int{s.Cursor.I, s.Cursor.J + 1})
	}
	return trace.Frame{
		Table: t,
		Lists: []trace.List{{Name: "lcs", Items: splitRunes(s.Sequence)}},
	}
}

func splitRunes(s string) []string {
	out := []string{}
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Compute fills the table for a and b and backtracks with [PreferUp].
func Compute(a, b string) (Result, trace.Log) {
	return ComputeWith(a, b, DefaultOptions())
}

// ComputeWith is [Compute] with an explicit tie-break.
func ComputeWith(a, b string, opts Options) (Result, trace.Log) {
	ar, br := []rune(a), []rune(b)
	m, n := len(ar), len(br)
	rec := trace.NewRecorder()
	state := Snapshot{A: a, B: b, Table: make([][]int, m+1)}
	for i := range state.Table {
		state.Table[i] = make([]int, n+1)
	}
	dp := state.Table
	record := func(kind trace.Kind, cell Cell, p trace.Payload, narrative string) {
		c := cell
		state.Cursor = &c
		rec.Record(kind, []string{cellID(cell)}, p, state.clone(), narrative)
	}

	rec.Record(KindInit, nil, trace.Payload{"rows": m + 1, "cols": n + 1}, state.clone(),
		fmt.Sprintf("%dx%d table, row 0 and column 0 are 0", m+1, n+1))

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			cell := Cell{I: i, J: j}
			if ar[i-1] == br[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
				record(KindFillMatch, cell, trace.Payload{"i": i, "j": j, "value": dp[i][j], "char": string(ar[i-1])},
					fmt.Sprintf("%c == %c: dp[%d][%d] = dp[%d][%d] + 1 = %d", ar[i-1], br[j-1], i, j, i-1, j-1, dp[i][j]))
				continue
			}
			dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			record(KindFillMax, cell, trace.Payload{"i": i, "j": j, "value": dp[i][j], "up": dp[i-1][j], "left": dp[i][j-1]},
				fmt.Sprintf("%c != %c: dp[%d][%d] = max(%d, %d) = %d", ar[i-1], br[j-1], i, j, dp[i-1][j], dp[i][j-1], dp[i][j]))
		}
	}

	var seq []rune
	i, j := m, n
	for i > 0 && j > 0 {
		cell := Cell{I: i, J: j}
		state.Path = append(state.Path, cell)
		switch {
		case ar[i-1] == br[j-1]:
			seq = append([]rune{ar[i-1]}, seq...)
			state.Sequence = string(seq)
			record(KindBacktrackDiag, cell, trace.Payload{"i": i, "j": j, "char": string(ar[i-1])},
				fmt.Sprintf("%c matches at (%d, %d): take it and move diagonally", ar[i-1], i, j))
			i--
			j--
		case moveUp(dp[i-1][j], dp[i][j-1], opts.TieBreak):
			record(KindBacktrackUp, cell, trace.Payload{"i": i, "j": j, "up": dp[i-1][j], "left": dp[i][j-1]},
				fmt.Sprintf("up %d vs left %d at (%d, %d): move up", dp[i-1][j], dp[i][j-1], i, j))
			i--
		default:
			record(KindBacktrackLeft, cell, trace.Payload{"i": i, "j": j, "up": dp[i-1][j], "left": dp[i][j-1]},
				fmt.Sprintf("up %d vs left %d at (%d, %d): move left", dp[i-1][j], dp[i][j-1], i, j))
			j--
		}
	}

	res := Result{Length: dp[m][n], Sequence: string(seq)}
	state.Cursor = nil
	rec.Record(KindDone, nil, trace.Payload{"length": res.Length, "sequence": res.Sequence}, state.clone(),
		fmt.Sprintf("LCS is %q with length %d", res.Sequence, res.Length))
	return res, rec.Log()
}

func moveUp(up, left int, tb TieBreak) bool {
	if up != left {
		return up > left
	}
	return tb == PreferUp
}

func cellID(c Cell) string {
	return fmt.Sprintf("c%d_%d", c.I, c.J)
}
