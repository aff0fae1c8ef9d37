package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/algotrace/pkg/pipeline"
)

// traceOpts holds the command-line flags for the trace command. Each engine
// reads only its own flags.
type traceOpts struct {
	op string // operation (default: the engine's first)

	// btree, bst, avl
	degree  int   // B-Tree minimum degree
	keys    []int // loaded without a trace
	targets []int // traced one after another

	// trie
	words []string // loaded without a trace
	word  string   // operand or prefix

	// segtree
	array []int
	index int
	value int
	left  int
	right int

	// topo
	edges     []string // "FROM->TO"
	algorithm string   // kahn or dfs

	// expr
	expr string

	// lcs
	a        string
	b        string
	tieBreak string // up or left

	out outputOpts
}

func (o *traceOpts) options(engine string) pipeline.Options {
	return pipeline.Options{
		Engine:    engine,
		Operation: o.op,
		Degree:    o.degree,
		Keys:      o.keys,
		Targets:   o.targets,
		Words:     o.words,
		Word:      o.word,
		Array:     o.array,
		Index:     o.index,
		Value:     o.value,
		Left:      o.left,
		Right:     o.right,
		Edges:     o.edges,
		Algorithm: o.algorithm,
		Expr:      o.expr,
		A:         o.a,
		B:         o.b,
		TieBreak:  o.tieBreak,
		Refresh:   o.out.refresh,
	}
}

// traceCommand creates the trace command, which runs one engine operation
// described by flags.
func (c *CLI) traceCommand() *cobra.Command {
	var opts traceOpts

	cmd := &cobra.Command{
		Use:   "trace <engine>",
		Short: "Run an engine operation and print its steps",
		Long: `Run an engine operation and print every recorded step.

Engines: ` + strings.Join(pipeline.EngineNames(), ", ") + `

Keys and words are loaded silently; the operation is traced once per --key
(tree engines) or once for --word (trie).`,
		Example: `  algotrace trace btree --degree 2 --key 10,20,5,6,12,30,7,17
  algotrace trace bst --op delete --keys 50,30,70,60,80 --key 50
  algotrace trace trie --op collect --words car,cat,dog --word ca
  algotrace trace segtree --op query --array 1,3,5,7 --left 1 --right 2
  algotrace trace topo --edges "a->b,b->c,a->c" --algorithm dfs
  algotrace trace expr --expr "3+4*2/(1-5)^2"
  algotrace trace lcs --a ABCBDAB --b BDCABA -f json -o lcs.json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: pipeline.EngineNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.out.validate(); err != nil {
				return err
			}
			return c.runAndWrite(cmd, opts.options(args[0]), &opts.out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.op, "op", "", "operation (see 'algotrace engines')")
	f.IntVar(&opts.degree, "degree", 0, "B-Tree minimum degree (default 2)")
	f.IntSliceVar(&opts.keys, "keys", nil, "keys loaded before tracing (comma-separated)")
	f.IntSliceVar(&opts.targets, "key", nil, "keys to trace (comma-separated)")
	f.StringSliceVar(&opts.words, "words", nil, "trie words loaded before tracing")
	f.StringVar(&opts.word, "word", "", "trie word or prefix to trace")
	f.IntSliceVar(&opts.array, "array", nil, "segment tree input array")
	f.IntVar(&opts.index, "index", 0, "segment tree update index")
	f.IntVar(&opts.value, "value", 0, "segment tree update value")
	f.IntVar(&opts.left, "left", 0, "segment tree query left bound (inclusive)")
	f.IntVar(&opts.right, "right", 0, "segment tree query right bound (inclusive)")
	f.StringSliceVar(&opts.edges, "edges", nil, `graph edges as "FROM->TO" (comma-separated)`)
	f.StringVar(&opts.algorithm, "algorithm", "", "topological sort: kahn (default), dfs")
	f.StringVar(&opts.expr, "expr", "", "infix expression of single digits and + - * / ^ ( )")
	f.StringVar(&opts.a, "a", "", "first LCS sequence")
	f.StringVar(&opts.b, "b", "", "second LCS sequence")
	f.StringVar(&opts.tieBreak, "tie-break", "", "LCS backtrack tie break: up (default), left")
	opts.out.register(cmd)

	return cmd
}
