// Package avl implements an instrumented AVL tree.
//
// Every node caches its height. After an insertion or deletion the engine
// retraces the path back to the root, recomputing heights and rebalancing any
// node whose balance factor (height(left) - height(right)) leaves [-1, 1].
// The four cases are chosen from the signs of the node's and its heavy child's
// balance:
//
//	LL  balance > 1,  left child >= 0    rotate right
//	LR  balance > 1,  left child < 0     rotate left on child, then right
//	RR  balance < -1, right child <= 0   rotate left
//	RL  balance < -1, right child > 0    rotate right on child, then left
//
// A double rotation records two rotation steps; the snapshot between them is
// a complete tree.
//
// Values are unique; inserting a value already present ends the trace with a
// duplicate step and leaves the tree unchanged.
package avl
