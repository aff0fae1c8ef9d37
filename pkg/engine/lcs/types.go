// Package lcs fills the longest-common-subsequence table step by step and
// reconstructs one subsequence by backtracking from the bottom-right cell.
//
// The recurrence over the (m+1)x(n+1) table is
//
//	dp[i][j] = dp[i-1][j-1] + 1              if a[i-1] == b[j-1]
//	dp[i][j] = max(dp[i-1][j], dp[i][j-1])   otherwise
//
// Backtracking moves diagonally on a match and otherwise toward the larger
// neighbour. When up and left hold the same value the [TieBreak] decides;
// [PreferUp] is the default.
//
// The algorithm records steps only. Pacing them for display is the job of
// the playback package.
package lcs

// TieBreak selects the backtrack move when dp[i-1][j] == dp[i][j-1].
type TieBreak int

const (
	// PreferUp moves to dp[i-1][j] on a tie.
	PreferUp TieBreak = iota
	// PreferLeft moves to dp[i][j-1] on a tie.
	PreferLeft
)

// String returns "up" or "left".
func (t TieBreak) String() string {
	if t == PreferLeft {
		return "left"
	}
	return "up"
}

// ParseTieBreak maps "up" or "left" to a TieBreak. Anything else is PreferUp.
func ParseTieBreak(s string) TieBreak {
	if s == "left" {
		return PreferLeft
	}
	return PreferUp
}

// Options configures [ComputeWith].
type Options struct {
	TieBreak TieBreak
}

// DefaultOptions returns options with the PreferUp tie-break.
func DefaultOptions() Options {
	return Options{TieBreak: PreferUp}
}

// Result holds the LCS length and the reconstructed subsequence.
type Result struct {
	Length   int    `json:"length"`
	Sequence string `json:"sequence"`
}

// Cell is a table coordinate (row i over a, column j over b).
type Cell struct {
	I int `json:"i"`
	J int `json:"j"`
}
