// Package btree implements an instrumented B-Tree with minimum degree t.
//
// Every node holds at most 2t-1 keys and 2t children; every non-root node holds
// at least t-1 keys. Insertion uses the proactive split discipline: a full root
// is split before descending (its own step), and any full child is split before
// the descent enters it, so insertion is a single top-down pass.
//
// Each operation returns its own [trace.Log]. Steps carry a deep copy of the
// whole tree, so later inserts never alter earlier snapshots.
//
// Duplicate keys are accepted. On insert a key is placed after existing equal
// keys (the standard "key > k" scan); search stops at the first equal key it
// meets on the way down.
package btree
