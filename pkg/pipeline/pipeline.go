// Package pipeline runs one engine operation from a declarative configuration.
//
// This package is shared by the CLI and the HTTP server. An [Options] value
// names an engine, an operation and its inputs; [Run] executes it and wraps
// the step log in a [trace.Document]. The [Runner] adds caching and
// observability hooks on top, and renders single steps to DOT, SVG, PNG or PDF.
//
// # Errors
//
// Configuration problems (unknown engine, degree below two, empty array,
// malformed edge) are reported by [Options.ValidateAndSetDefaults] before any
// step is recorded. Everything that goes wrong inside an algorithm (a missing
// key, a cycle, an unbalanced parenthesis) is a regular outcome recorded as
// the final step of the log.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Engine:  "btree",
//	    Degree:  2,
//	    Targets: []int{10, 20, 5, 6, 12},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for i, step := range result.Document.Steps.All() {
//	    fmt.Println(i, step.Narrative)
//	}
package pipeline

import (
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/algotrace/pkg/engine/lcs"
	"github.com/matzehuels/algotrace/pkg/engine/topo"
	"github.com/matzehuels/algotrace/pkg/errors"
)

// Engine names.
const (
	EngineBTree   = "btree"
	EngineBST     = "bst"
	EngineAVL     = "avl"
	EngineTrie    = "trie"
	EngineSegTree = "segtree"
	EngineTopo    = "topo"
	EngineExpr    = "expr"
	EngineLCS     = "lcs"
)

// Operation names. Not every engine supports every operation; see [Engines].
const (
	OpInsert   = "insert"
	OpSearch   = "search"
	OpDelete   = "delete"
	OpCollect  = "collect"
	OpUpdate   = "update"
	OpQuery    = "query"
	OpSort     = "sort"
	OpEvaluate = "evaluate"
	OpPostfix  = "postfix"
	OpCompute  = "compute"
)

// DefaultDegree is the B-Tree minimum degree used when Options.Degree is zero.
const DefaultDegree = 2

// EngineInfo describes one engine and the operations it supports. The first
// operation is the default.
type EngineInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Operations  []string `json:"operations"`
}

// Engines lists every engine the pipeline can run.
var Engines = []EngineInfo{
	{EngineBTree, "B-Tree insertion with proactive splitting, and search", []string{OpInsert, OpSearch}},
	{EngineBST, "binary search tree insertion, search and three-case deletion", []string{OpDelete, OpInsert, OpSearch}},
	{EngineAVL, "AVL tree insertion and deletion with rotations", []string{OpInsert, OpDelete}},
	{EngineTrie, "trie insertion, search, prefix collection and pruning deletion", []string{OpSearch, OpInsert, OpCollect, OpDelete}},
	{EngineSegTree, "segment tree point update and range sum query", []string{OpUpdate, OpQuery}},
	{EngineTopo, "topological sort with Kahn's algorithm or depth-first search", []string{OpSort}},
	{EngineExpr, "Shunting-Yard conversion and postfix evaluation", []string{OpEvaluate, OpPostfix}},
	{EngineLCS, "longest common subsequence table fill and backtrack", []string{OpCompute}},
}

// LookupEngine returns the description of the named engine.
func LookupEngine(name string) (EngineInfo, bool) {
	for _, e := range Engines {
		if e.Name == name {
			return e, true
		}
	}
	return EngineInfo{}, false
}

// EngineNames returns the names of all engines.
func EngineNames() []string {
	names := make([]string, len(Engines))
	for i, e := range Engines {
		names[i] = e.Name
	}
	return names
}

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options configures one engine run. Only the fields of the selected engine
// are read. It serializes to JSON for API requests and to TOML for scenario
// files.
type Options struct {
	Engine    string `json:"engine" toml:"engine"`
	Operation string `json:"operation,omitempty" toml:"operation"`

	// Tree engines (btree, bst, avl). Keys are loaded without a trace;
	// the operation is then traced once per target, in order.
	Degree  int   `json:"degree,omitempty" toml:"degree"`
	Keys    []int `json:"keys,omitempty" toml:"keys"`
	Targets []int `json:"targets,omitempty" toml:"targets"`

	// Trie. Word is the operand; for collect it is the prefix.
	Words []string `json:"words,omitempty" toml:"words"`
	Word  string   `json:"word,omitempty" toml:"word"`

	// Segment tree. Update sets Array[Index] = Value; query sums [Left, Right].
	Array []int `json:"array,omitempty" toml:"array"`
	Index int   `json:"index,omitempty" toml:"index"`
	Value int   `json:"value,omitempty" toml:"value"`
	Left  int   `json:"left,omitempty" toml:"left"`
	Right int   `json:"right,omitempty" toml:"right"`

	// Topological sort.
	Edges     []string `json:"edges,omitempty" toml:"edges"`
	Algorithm string   `json:"algorithm,omitempty" toml:"algorithm"`

	// Expression.
	Expr string `json:"expr,omitempty" toml:"expr"`

	// LCS.
	A        string `json:"a,omitempty" toml:"a"`
	B        string `json:"b,omitempty" toml:"b"`
	TieBreak string `json:"tie_break,omitempty" toml:"tie_break"`

	// Runtime options (not serialized)
	Refresh bool        `json:"-" toml:"-"` // Bypass the cache read
	Logger  *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the configuration of the selected engine and
// fills in defaults. It is idempotent. All failures are *errors.Error values
// with an INVALID_* code.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.Engine = strings.ToLower(strings.TrimSpace(o.Engine))
	o.Operation = strings.ToLower(strings.TrimSpace(o.Operation))

	if o.Engine == "" {
		return errors.New(errors.ErrCodeInvalidEngine, "engine is required (one of: %s)", strings.Join(EngineNames(), ", "))
	}
	info, ok := LookupEngine(o.Engine)
	if !ok {
		return errors.New(errors.ErrCodeInvalidEngine, "unknown engine %q (one of: %s)", o.Engine, strings.Join(EngineNames(), ", "))
	}
	if o.Operation == "" {
		o.Operation = info.Operations[0]
	}
	if !slices.Contains(info.Operations, o.Operation) {
		return errors.New(errors.ErrCodeInvalidOperation, "engine %s does not support %q (one of: %s)",
			o.Engine, o.Operation, strings.Join(info.Operations, ", "))
	}

	if err := o.validateEngine(); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

func (o *Options) validateEngine() error {
	switch o.Engine {
	case EngineBTree:
		if o.Degree == 0 {
			o.Degree = DefaultDegree
		}
		if err := errors.ValidateDegree(o.Degree); err != nil {
			return err
		}
		return o.validateTreeKeys()

	case EngineBST, EngineAVL:
		return o.validateTreeKeys()

	case EngineTrie:
		for _, w := range o.Words {
			if err := errors.ValidateWord(w); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "initial words")
			}
		}
		if len(o.Words) == 0 && o.needsStructure() {
			return errors.New(errors.ErrCodeInvalidConfig, "trie %s needs at least one initial word", o.Operation)
		}
		return nil

	case EngineSegTree:
		return errors.ValidateArray(o.Array)

	case EngineTopo:
		if o.Algorithm == "" {
			o.Algorithm = topo.AlgorithmKahn
		}
		if _, err := topo.ByName(o.Algorithm); err != nil {
			return err
		}
		if len(o.Edges) == 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "topo sort needs at least one edge")
		}
		return errors.ValidateEdges(o.Edges)

	case EngineExpr:
		return errors.ValidateExpression(o.Expr)

	case EngineLCS:
		if o.TieBreak == "" {
			o.TieBreak = lcs.PreferUp.String()
		}
		if o.TieBreak != lcs.PreferUp.String() && o.TieBreak != lcs.PreferLeft.String() {
			return errors.New(errors.ErrCodeInvalidConfig, "invalid tie_break %q (must be up or left)", o.TieBreak)
		}
		if err := errors.ValidateSequence("a", o.A); err != nil {
			return err
		}
		return errors.ValidateSequence("b", o.B)
	}
	return nil
}

// needsStructure reports whether the operation reads from or removes from an
// existing structure. Insertion builds its own and may start empty.
func (o *Options) needsStructure() bool {
	switch o.Operation {
	case OpSearch, OpDelete, OpCollect:
		return true
	}
	return false
}

func (o *Options) validateTreeKeys() error {
	if err := errors.ValidateKeys(o.Keys); err != nil {
		return err
	}
	if len(o.Keys) == 0 && o.needsStructure() {
		return errors.New(errors.ErrCodeInvalidConfig, "%s %s needs at least one initial key", o.Engine, o.Operation)
	}
	if len(o.Targets) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s %s needs at least one target key", o.Engine, o.Operation)
	}
	return errors.ValidateKeys(o.Targets)
}
