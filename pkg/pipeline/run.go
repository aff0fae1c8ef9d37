package pipeline

import (
	"time"

	"github.com/matzehuels/algotrace/pkg/engine/avl"
	"github.com/matzehuels/algotrace/pkg/engine/bst"
	"github.com/matzehuels/algotrace/pkg/engine/btree"
	"github.com/matzehuels/algotrace/pkg/engine/expr"
	"github.com/matzehuels/algotrace/pkg/engine/lcs"
	"github.com/matzehuels/algotrace/pkg/engine/segtree"
	"github.com/matzehuels/algotrace/pkg/engine/topo"
	"github.com/matzehuels/algotrace/pkg/engine/trie"
	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/trace"
)

// KeyOutcome reports one traced tree operation. OK is true when the key was
// found, inserted or deleted.
type KeyOutcome struct {
	Key int  `json:"key"`
	OK  bool `json:"ok"`
}

// TreeResult is the result of a btree, bst or avl run.
type TreeResult struct {
	Outcomes []KeyOutcome `json:"outcomes"`
	Contents []int        `json:"contents"`         // In-order keys after the run
	Height   int          `json:"height,omitempty"` // btree and avl only
}

// TrieResult is the result of a trie run.
type TrieResult struct {
	Word      string   `json:"word"`
	OK        bool     `json:"ok"`
	Collected []string `json:"collected,omitempty"`
	Words     []string `json:"words"`
}

// SegTreeResult is the result of a segment tree run. Sum is the query result
// for a query and the root sum after an update.
type SegTreeResult struct {
	OK     bool  `json:"ok"`
	Sum    int   `json:"sum"`
	Leaves []int `json:"leaves"`
}

// Run validates opts, executes the operation and returns the finished
// document. The document has no ID; stores assign one when they persist it.
func Run(opts Options) (*trace.Document, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	var (
		result any
		log    trace.Log
		err    error
	)
	switch opts.Engine {
	case EngineBTree:
		result, log, err = runBTree(opts)
	case EngineBST:
		result, log = runBST(opts)
	case EngineAVL:
		result, log = runAVL(opts)
	case EngineTrie:
		result, log = runTrie(opts)
	case EngineSegTree:
		result, log, err = runSegTree(opts)
	case EngineTopo:
		result, log, err = runTopo(opts)
	case EngineExpr:
		result, log = runExpr(opts)
	case EngineLCS:
		result, log = runLCS(opts)
	default:
		err = errors.New(errors.ErrCodeInvalidEngine, "unknown engine %q", opts.Engine)
	}
	if err != nil {
		return nil, err
	}

	return &trace.Document{
		Engine:    opts.Engine,
		Operation: opts.Operation,
		Result:    result,
		Steps:     log,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func runBTree(opts Options) (TreeResult, trace.Log, error) {
	tr, err := btree.New(opts.Degree)
	if err != nil {
		return TreeResult{}, trace.Log{}, err
	}
	tr.Load(opts.Keys...)

	logs := make([]trace.Log, 0, len(opts.Targets))
	res := TreeResult{}
	for _, k := range opts.Targets {
		switch opts.Operation {
		case OpInsert:
			logs = append(logs, tr.Insert(k))
			res.Outcomes = append(res.Outcomes, KeyOutcome{Key: k, OK: true})
		case OpSearch:
			sr, l := tr.Search(k)
			logs = append(logs, l)
			res.Outcomes = append(res.Outcomes, KeyOutcome{Key: k, OK: sr.Found})
		}
	}
	res.Contents = tr.Keys()
	res.Height = tr.Height()
	return res, trace.Join(logs...), nil
}

func runBST(opts Options) (TreeResult, trace.Log) {
	tr := bst.New()
	tr.Load(opts.Keys...)

	logs := make([]trace.Log, 0, len(opts.Targets))
	res := TreeResult{}
	for _, k := range opts.Targets {
		ok := true
		var l trace.Log
		switch opts.Operation {
		case OpInsert:
			l = tr.Insert(k)
		case OpSearch:
			ok, l = tr.Search(k)
		case OpDelete:
			ok, l = tr.Delete(k)
		}
		logs = append(logs, l)
		res.Outcomes = append(res.Outcomes, KeyOutcome{Key: k, OK: ok})
	}
	res.Contents = tr.InOrder()
	return res, trace.Join(logs...)
}

func runAVL(opts Options) (TreeResult, trace.Log) {
	tr := avl.New()
	tr.Load(opts.Keys...)

	logs := make([]trace.Log, 0, len(opts.Targets))
	res := TreeResult{}
	for _, k := range opts.Targets {
		var ok bool
		var l trace.Log
		switch opts.Operation {
		case OpInsert:
			ok, l = tr.Insert(k)
		case OpDelete:
			ok, l = tr.Delete(k)
		}
		logs = append(logs, l)
		res.Outcomes = append(res.Outcomes, KeyOutcome{Key: k, OK: ok})
	}
	res.Contents = tr.InOrder()
	res.Height = tr.Height()
	return res, trace.Join(logs...)
}

func runTrie(opts Options) (TrieResult, trace.Log) {
	t := trie.New()
	t.Load(opts.Words...)

	res := TrieResult{Word: opts.Word}
	var log trace.Log
	switch opts.Operation {
	case OpInsert:
		res.OK, log = t.Insert(opts.Word)
	case OpSearch:
		res.OK, log = t.Search(opts.Word)
	case OpDelete:
		res.OK, log = t.Delete(opts.Word)
	case OpCollect:
		res.Collected, log = t.CollectPrefix(opts.Word)
		res.OK = len(res.Collected) > 0
	}
	res.Words = t.Words()
	return res, log
}

func runSegTree(opts Options) (SegTreeResult, trace.Log, error) {
	tr, err := segtree.Build(opts.Array)
	if err != nil {
		return SegTreeResult{}, trace.Log{}, err
	}

	var res SegTreeResult
	var log trace.Log
	switch opts.Operation {
	case OpUpdate:
		res.OK, log = tr.Update(opts.Index, opts.Value)
		res.Sum = tr.Sum()
	case OpQuery:
		res.Sum, res.OK, log = tr.Query(opts.Left, opts.Right)
	}
	res.Leaves = tr.Leaves()
	return res, log, nil
}

func runTopo(opts Options) (topo.Result, trace.Log, error) {
	g, err := topo.ParseEdges(opts.Edges)
	if err != nil {
		return topo.Result{}, trace.Log{}, err
	}
	sort, err := topo.ByName(opts.Algorithm)
	if err != nil {
		return topo.Result{}, trace.Log{}, err
	}
	res, log := sort(g)
	return res, log, nil
}

func runExpr(opts Options) (expr.Result, trace.Log) {
	if opts.Operation == OpPostfix {
		return expr.ToPostfix(opts.Expr)
	}
	return expr.Evaluate(opts.Expr)
}

func runLCS(opts Options) (lcs.Result, trace.Log) {
	return lcs.ComputeWith(opts.A, opts.B, lcs.Options{TieBreak: lcs.ParseTieBreak(opts.TieBreak)})
}
