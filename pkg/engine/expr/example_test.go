package expr_test

import (
	"fmt"

	"github.com/matzehuels/algotrace/pkg/engine/expr"
)

func ExampleEvaluate() {
	res, log := expr.Evaluate("3 + 4 * 2")
	fmt.Println(res.PostfixString())
	fmt.Println(res.Display, res.OK)
	fmt.Println(log.Len(), "steps")
	// Output:
	// 3 4 2 * +
	// 11 true
	// 14 steps
}

func ExampleToPostfix() {
	res, log := expr.ToPostfix("(1+2")
	last, _ := log.Last()
	fmt.Println(res.OK, last.Kind)
	// Output:
	// false mismatched_paren
}
