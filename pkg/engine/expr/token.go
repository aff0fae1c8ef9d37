package expr

import (
	"github.com/matzehuels/algotrace/pkg/errors"
)

type operator struct {
	prec       int
	rightAssoc bool
}

var operators = map[string]operator{
	"+": {prec: 1},
	"-": {prec: 1},
	"*": {prec: 2},
	"/": {prec: 2},
	"^": {prec: 3, rightAssoc: true},
}

func isOperand(tok string) bool {
	return len(tok) == 1 && tok[0] >= '0' && tok[0] <= '9'
}

func isOperator(tok string) bool {
	_, ok := operators[tok]
	return ok
}

// Tokenize splits expr into single-character tokens, skipping spaces.
// It returns an INVALID_INPUT error naming the first unknown character.
func Tokenize(expr string) ([]string, error) {
	var out []string
	for i, r := range expr {
		if r == ' ' || r == '\t' {
			continue
		}
		tok := string(r)
		if !isOperand(tok) && !isOperator(tok) && tok != "(" && tok != ")" {
			return out, errors.New(errors.ErrCodeInvalidInput, "unexpected character %q at position %d", r, i)
		}
		out = append(out, tok)
	}
	return out, nil
}
