package btree_test

import (
	"fmt"

	"github.com/matzehuels/algotrace/pkg/engine/btree"
)

func ExampleTree_Insert() {
	tr, _ := btree.New(2)
	tr.Load(10, 20, 30)

	log := tr.Insert(40)
	for _, step := range log.All() {
		fmt.Println(step.Kind)
	}
	fmt.Println(tr.Keys())
	// Output:
	// insert_start
	// root_split
	// descend
	// leaf_insert
	// [10 20 30 40]
}

func ExampleTree_Search() {
	tr, _ := btree.New(2)
	tr.Load(10, 20, 30, 40)

	res, log := tr.Search(30)
	fmt.Println(res.Found, log.Len())
	last, _ := log.Last()
	fmt.Println(last.Narrative)
	// Output:
	// true 3
	// found 30 in node n3 at position 0
}
