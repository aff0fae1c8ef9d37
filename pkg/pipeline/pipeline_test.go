package pipeline

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/algotrace/pkg/cache"
	"github.com/matzehuels/algotrace/pkg/engine/btree"
	"github.com/matzehuels/algotrace/pkg/engine/expr"
	"github.com/matzehuels/algotrace/pkg/engine/lcs"
	"github.com/matzehuels/algotrace/pkg/engine/topo"
	"github.com/matzehuels/algotrace/pkg/engine/trie"
	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/observability"
	"github.com/matzehuels/algotrace/pkg/trace"
)

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing engine", Options{}, errors.ErrCodeInvalidEngine},
		{"unknown engine", Options{Engine: "heap"}, errors.ErrCodeInvalidEngine},
		{"unsupported operation", Options{Engine: "avl", Operation: "search", Targets: []int{1}}, errors.ErrCodeInvalidOperation},
		{"degree below two", Options{Engine: "btree", Degree: 1, Targets: []int{1}}, errors.ErrCodeInvalidConfig},
		{"no targets", Options{Engine: "bst"}, errors.ErrCodeInvalidConfig},
		{"empty array", Options{Engine: "segtree"}, errors.ErrCodeInvalidConfig},
		{"malformed edge", Options{Engine: "topo", Edges: []string{"A-B"}}, errors.ErrCodeInvalidConfig},
		{"unknown algorithm", Options{Engine: "topo", Algorithm: "random"}, errors.ErrCodeInvalidOperation},
		{"empty expression", Options{Engine: "expr", Expr: "  "}, errors.ErrCodeInvalidConfig},
		{"bad tie break", Options{Engine: "lcs", A: "ab", B: "ba", TieBreak: "diagonal"}, errors.ErrCodeInvalidConfig},
		{"sequence too long", Options{Engine: "lcs", A: strings.Repeat("a", errors.MaxSequenceLength+1)}, errors.ErrCodeInvalidConfig},
		{"bad initial word", Options{Engine: "trie", Words: []string{"two words"}}, errors.ErrCodeInvalidConfig},
		{"topo without edges", Options{Engine: "topo"}, errors.ErrCodeInvalidConfig},
		{"topo dfs without edges", Options{Engine: "topo", Algorithm: "dfs", Edges: []string{}}, errors.ErrCodeInvalidConfig},
		{"bst delete from empty tree", Options{Engine: "bst", Operation: "delete", Targets: []int{1}}, errors.ErrCodeInvalidConfig},
		{"bst search in empty tree", Options{Engine: "bst", Operation: "search", Targets: []int{1}}, errors.ErrCodeInvalidConfig},
		{"avl delete from empty tree", Options{Engine: "avl", Operation: "delete", Targets: []int{1}}, errors.ErrCodeInvalidConfig},
		{"btree search in empty tree", Options{Engine: "btree", Operation: "search", Targets: []int{1}}, errors.ErrCodeInvalidConfig},
		{"trie search without words", Options{Engine: "trie", Word: "car"}, errors.ErrCodeInvalidConfig},
		{"trie delete without words", Options{Engine: "trie", Operation: "delete", Word: "car"}, errors.ErrCodeInvalidConfig},
		{"trie collect without words", Options{Engine: "trie", Operation: "collect", Word: "c"}, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Engine: " BTree ", Targets: []int{1}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}
	if opts.Engine != EngineBTree {
		t.Errorf("Engine should be normalized, got %q", opts.Engine)
	}
	if opts.Operation != OpInsert {
		t.Errorf("Operation should default to %s, got %s", OpInsert, opts.Operation)
	}
	if opts.Degree != DefaultDegree {
		t.Errorf("Degree should be %d, got %d", DefaultDegree, opts.Degree)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	topoOpts := Options{Engine: "topo", Edges: []string{"A->B"}}
	if err := topoOpts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if topoOpts.Algorithm != topo.AlgorithmKahn {
		t.Errorf("Algorithm should default to kahn, got %s", topoOpts.Algorithm)
	}

	lcsOpts := Options{Engine: "lcs", A: "ab", B: "b"}
	if err := lcsOpts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if lcsOpts.TieBreak != "up" {
		t.Errorf("TieBreak should default to up, got %s", lcsOpts.TieBreak)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Engine: "expr", Expr: "1 + 2"}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	op := opts.Operation
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Operation != op {
		t.Error("Operation changed on second call")
	}
}

func TestEngines(t *testing.T) {
	names := EngineNames()
	want := []string{"btree", "bst", "avl", "trie", "segtree", "topo", "expr", "lcs"}
	if !slices.Equal(names, want) {
		t.Errorf("EngineNames() = %v, want %v", names, want)
	}
	for _, e := range Engines {
		if len(e.Operations) == 0 {
			t.Errorf("engine %s has no operations", e.Name)
		}
	}
	if _, ok := LookupEngine("missing"); ok {
		t.Error("LookupEngine should report unknown engines")
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		lastKind trace.Kind
		check    func(t *testing.T, doc *trace.Document)
	}{
		{
			name:     "btree insert",
			opts:     Options{Engine: "btree", Degree: 2, Targets: []int{10, 20, 5, 6, 12}},
			lastKind: btree.KindLeafInsert,
			check: func(t *testing.T, doc *trace.Document) {
				res := doc.Result.(TreeResult)
				if !slices.Equal(res.Contents, []int{5, 6, 10, 12, 20}) {
					t.Errorf("contents = %v", res.Contents)
				}
				if doc.Steps.Count(btree.KindInsertStart) != 5 {
					t.Errorf("expected one insert_start per key, got %d", doc.Steps.Count(btree.KindInsertStart))
				}
			},
		},
		{
			name:     "btree search miss",
			opts:     Options{Engine: "btree", Operation: "search", Keys: []int{1, 2, 3}, Targets: []int{9}},
			lastKind: btree.KindKeyNotFound,
			check: func(t *testing.T, doc *trace.Document) {
				if res := doc.Result.(TreeResult); res.Outcomes[0].OK {
					t.Error("search for 9 should fail")
				}
			},
		},
		{
			name:     "bst delete",
			opts:     Options{Engine: "bst", Keys: []int{50, 30, 70, 60, 80}, Targets: []int{50}},
			lastKind: "remove_leaf",
			check: func(t *testing.T, doc *trace.Document) {
				res := doc.Result.(TreeResult)
				if !slices.Equal(res.Contents, []int{30, 60, 70, 80}) {
					t.Errorf("contents = %v", res.Contents)
				}
			},
		},
		{
			name:     "avl insert rotates",
			opts:     Options{Engine: "avl", Targets: []int{10, 20, 30}},
			lastKind: "",
			check: func(t *testing.T, doc *trace.Document) {
				res := doc.Result.(TreeResult)
				if res.Height != 2 {
					t.Errorf("height = %d, want 2", res.Height)
				}
				if doc.Steps.Count("rotate_left") != 1 {
					t.Errorf("expected one left rotation, got %v", doc.Steps.Kinds())
				}
			},
		},
		{
			name:     "trie search",
			opts:     Options{Engine: "trie", Words: []string{"car", "cat"}, Word: "car"},
			lastKind: trie.KindFound,
		},
		{
			name:     "trie collect",
			opts:     Options{Engine: "trie", Operation: "collect", Words: []string{"car", "cat", "dog"}, Word: "ca"},
			lastKind: "",
			check: func(t *testing.T, doc *trace.Document) {
				res := doc.Result.(TrieResult)
				if !slices.Equal(res.Collected, []string{"car", "cat"}) {
					t.Errorf("collected = %v", res.Collected)
				}
			},
		},
		{
			name: "segtree update",
			opts: Options{Engine: "segtree", Array: []int{1, 2, 3, 4}, Index: 1, Value: 10},
			check: func(t *testing.T, doc *trace.Document) {
				res := doc.Result.(SegTreeResult)
				if !res.OK || res.Sum != 18 {
					t.Errorf("result = %+v, want ok with sum 18", res)
				}
			},
		},
		{
			name: "segtree query",
			opts: Options{Engine: "segtree", Operation: "query", Array: []int{1, 2, 3, 4}, Left: 1, Right: 2},
			check: func(t *testing.T, doc *trace.Document) {
				if res := doc.Result.(SegTreeResult); res.Sum != 5 {
					t.Errorf("sum = %d, want 5", res.Sum)
				}
			},
		},
		{
			name:     "topo cycle",
			opts:     Options{Engine: "topo", Edges: []string{"A->B", "B->A"}},
			lastKind: topo.KindCycle,
		},
		{
			name:     "topo dfs",
			opts:     Options{Engine: "topo", Algorithm: "dfs", Edges: []string{"A->B", "B->C"}},
			lastKind: topo.KindDone,
			check: func(t *testing.T, doc *trace.Document) {
				if res := doc.Result.(topo.Result); !slices.Equal(res.Order, []string{"A", "B", "C"}) {
					t.Errorf("order = %v", res.Order)
				}
			},
		},
		{
			name:     "expr evaluate",
			opts:     Options{Engine: "expr", Expr: "3 + 4 * 2"},
			lastKind: expr.KindResult,
			check: func(t *testing.T, doc *trace.Document) {
				if res := doc.Result.(expr.Result); res.Display != "11" {
					t.Errorf("value = %s, want 11", res.Display)
				}
			},
		},
		{
			name:     "expr postfix",
			opts:     Options{Engine: "expr", Operation: "postfix", Expr: "3 + 4 * 2"},
			lastKind: expr.KindPostfixDone,
		},
		{
			name: "lcs",
			opts: Options{Engine: "lcs", A: "ABCBDAB", B: "BDCABA"},
			check: func(t *testing.T, doc *trace.Document) {
				if res := doc.Result.(lcs.Result); res.Length != 4 {
					t.Errorf("length = %d, want 4", res.Length)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Run(tt.opts)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if doc.Steps.Empty() {
				t.Fatal("expected steps")
			}
			if doc.Engine != tt.opts.Engine || doc.Operation == "" {
				t.Errorf("document header = %s/%s", doc.Engine, doc.Operation)
			}
			for i, s := range doc.Steps.All() {
				if s.Index != i {
					t.Fatalf("step %d has index %d", i, s.Index)
				}
			}
			if tt.lastKind != "" {
				last, _ := doc.Steps.Last()
				if last.Kind != tt.lastKind {
					t.Errorf("last kind = %s, want %s", last.Kind, tt.lastKind)
				}
			}
			if tt.check != nil {
				tt.check(t, doc)
			}
		})
	}
}

func TestInsertMayStartEmpty(t *testing.T) {
	for _, opts := range []Options{
		{Engine: "btree", Targets: []int{1}},
		{Engine: "bst", Operation: "insert", Targets: []int{1}},
		{Engine: "avl", Targets: []int{1}},
		{Engine: "trie", Operation: "insert", Word: "car"},
	} {
		if _, err := Run(opts); err != nil {
			t.Errorf("Run(%s %s) = %v, want no error", opts.Engine, opts.Operation, err)
		}
	}
}

func TestRunEmptyTopoFailsBeforeRunning(t *testing.T) {
	doc, err := Run(Options{Engine: "topo", Operation: "sort"})
	if doc != nil || !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Run = %v, %v; want INVALID_CONFIG", doc, err)
	}
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	doc, err := Run(Options{Engine: "btree", Degree: 1, Targets: []int{1}})
	if doc != nil || !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Run = %v, %v; want INVALID_CONFIG", doc, err)
	}
}

type countingHooks struct {
	observability.NoopEngineHooks
	observability.NoopCacheHooks

	mu     sync.Mutex
	runs   int
	hits   int
	misses int
	sets   int
}

func (h *countingHooks) OnRunComplete(context.Context, string, string, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs++
}

func (h *countingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *countingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *countingHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets++
}

func TestRunnerCachesDocuments(t *testing.T) {
	defer observability.Reset()
	hooks := &countingHooks{}
	observability.SetEngineHooks(hooks)
	observability.SetCacheHooks(hooks)

	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	opts := Options{Engine: "expr", Expr: "( 3 + 4 ) * 2"}
	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheHit {
		t.Error("first run should miss the cache")
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheHit {
		t.Error("second run should hit the cache")
	}
	if second.Key != first.Key {
		t.Error("identical options should share a key")
	}
	if second.Document.Steps.Len() != first.Document.Steps.Len() {
		t.Errorf("cached document has %d steps, want %d", second.Document.Steps.Len(), first.Document.Steps.Len())
	}
	a, b := first.Document.Steps.At(3), second.Document.Steps.At(3)
	if a.Kind != b.Kind || a.Narrative != b.Narrative {
		t.Errorf("cached step differs: %v vs %v", a, b)
	}
	if a.Snapshot.Frame().Lists == nil || b.Snapshot.Frame().Lists == nil {
		t.Error("frames should survive the cache round trip")
	}

	if hooks.runs != 1 || hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 {
		t.Errorf("hooks: runs=%d hits=%d misses=%d sets=%d", hooks.runs, hooks.hits, hooks.misses, hooks.sets)
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRunnerReportsConfigErrors(t *testing.T) {
	defer observability.Reset()
	hooks := &countingHooks{}
	observability.SetEngineHooks(hooks)

	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Engine: "segtree"})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Execute error = %v, want INVALID_CONFIG", err)
	}
	if hooks.runs != 1 {
		t.Errorf("failed validation should still complete the run hook, got %d", hooks.runs)
	}
}

func TestRenderStepDOT(t *testing.T) {
	doc, err := Run(Options{Engine: "bst", Keys: []int{2, 1, 3}, Operation: "search", Targets: []int{3}})
	if err != nil {
		t.Fatal(err)
	}
	out, err := RenderStep(context.Background(), doc, 0, "dot")
	if err != nil {
		t.Fatalf("RenderStep: %v", err)
	}
	if !strings.HasPrefix(string(out), "digraph step {") {
		t.Errorf("unexpected DOT output:\n%s", out)
	}
}

func TestRenderStepErrors(t *testing.T) {
	ctx := context.Background()
	doc, err := Run(Options{Engine: "expr", Expr: "1 + 2"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = RenderStep(ctx, doc, doc.Steps.Len(), "dot")
	if !errors.Is(err, errors.ErrCodeStepOutOfRange) {
		t.Errorf("out of range error = %v", err)
	}
	_, err = RenderStep(ctx, doc, -1, "dot")
	if !errors.Is(err, errors.ErrCodeStepOutOfRange) {
		t.Errorf("negative index error = %v", err)
	}
	_, err = RenderStep(ctx, doc, 0, "gif")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("format error = %v", err)
	}
}

func TestRunnerRenderStepCaches(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)

	res, err := r.Execute(ctx, Options{Engine: "topo", Edges: []string{"A->B"}})
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.RenderStep(ctx, res.Document, res.Key, 1, "dot")
	if err != nil {
		t.Fatal(err)
	}

	key := r.Keyer.RenderKey(res.Key, 1, "dot")
	cached, hit, err := fc.Get(ctx, key)
	if err != nil || !hit {
		t.Fatalf("render not cached: hit=%v err=%v", hit, err)
	}
	if string(cached) != string(out) {
		t.Error("cached render differs from returned render")
	}
}
