package bst_test

import (
	"fmt"

	"github.com/matzehuels/algotrace/pkg/engine/bst"
)

func ExampleTree_Delete() {
	tr := bst.New()
	tr.Load(50, 30, 70, 60, 80)

	_, log := tr.Delete(50)
	for _, step := range log.All() {
		fmt.Printf("%-18s %s\n", step.Kind, step.Narrative)
	}
	fmt.Println(tr.InOrder())
	// Output:
	// compare            50 == 50: match
	// case_two_children  node n1 (50) has two children: use the in-order successor
	// successor_step     step into right subtree at n3 (70)
	// successor_step     go left to n4 (60)
	// successor_found    in-order successor is n4 (60)
	// copy_successor     copy 60 into n1, replacing 50
	// compare            60 < 70: go left
	// compare            60 == 60: match
	// case_leaf          node n4 (60) is a leaf
	// remove_leaf        remove leaf n4
	// [30 60 70 80]
}
