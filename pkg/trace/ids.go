package trace

import "strconv"

// IDs generates deterministic node identifiers: prefix1, prefix2, ...
// Two engines built from the same inputs produce the same ids.
type IDs struct {
	prefix string
	next   int
}

// NewIDs returns a generator whose ids start with prefix.
// An empty prefix defaults to "n".
func NewIDs(prefix string) *IDs {
	if prefix == "" {
		prefix = "n"
	}
	return &IDs{prefix: prefix}
}

// Next returns a fresh id.
func (g *IDs) Next() string {
	g.next++
	return g.prefix + strconv.Itoa(g.next)
}

// Issued returns how many ids have been handed out.
func (g *IDs) Issued() int { return g.next }
