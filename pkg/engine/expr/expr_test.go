package expr_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/algotrace/pkg/engine/expr"
	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/trace"
)

func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, td *datadriven.TestData) string {
			input := strings.TrimSpace(td.Input)
			switch td.Cmd {
			case "postfix":
				res, _ := expr.ToPostfix(input)
				if !res.OK {
					return "error: " + res.Reason
				}
				return res.PostfixString()

			case "eval":
				res, _ := expr.Evaluate(input)
				if !res.OK {
					return "error: " + res.Reason
				}
				return res.Display

			case "postfix-eval":
				res, _ := expr.EvaluatePostfix(strings.Fields(input))
				if !res.OK {
					return "error: " + res.Reason
				}
				return res.Display

			case "trace":
				_, log := expr.Evaluate(input)
				var b strings.Builder
				for _, s := range log.All() {
					fmt.Fprintf(&b, "%s: %s\n", s.Kind, s.Narrative)
				}
				return b.String()

			default:
				return fmt.Sprintf("unknown command: %s", td.Cmd)
			}
		})
	})
}

func TestTokenize(t *testing.T) {
	toks, err := expr.Tokenize(" (1+2)*3^4 ")
	require.NoError(t, err)
	assert.Equal(t, []string{"(", "1", "+", "2", ")", "*", "3", "^", "4"}, toks)

	_, err = expr.Tokenize("1 % 2")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestEvaluateValues(t *testing.T) {
	tests := []struct {
		in      string
		postfix string
		want    float64
	}{
		{"3 + 4 * 2", "3 4 2 * +", 11},
		{"( 3 + 4 ) * 2", "3 4 + 2 *", 14},
		{"2 ^ 3 + 1", "2 3 ^ 1 +", 9},
		{"2 ^ 3 ^ 2", "2 3 2 ^ ^", 512},
		{"9 / 3 / 3", "9 3 / 3 /", 1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			res, _ := expr.Evaluate(tt.in)
			require.True(t, res.OK, res.Reason)
			assert.Equal(t, tt.postfix, res.PostfixString())
			assert.Equal(t, tt.want, res.Value)
		})
	}
}

func TestDivisionByZeroIsNaN(t *testing.T) {
	res, log := expr.Evaluate("5 / 0")
	require.True(t, res.OK)
	assert.True(t, math.IsNaN(res.Value))
	assert.Equal(t, "NaN", res.Display)

	// the log must stay encodable even with NaN on the stack
	_, err := log.MarshalJSON()
	require.NoError(t, err)
}

func TestEvaluateSkipsEvaluationOnConversionError(t *testing.T) {
	res, log := expr.Evaluate("(1+2")
	assert.False(t, res.OK)
	assert.Zero(t, log.Count(expr.KindPushValue))
	last, _ := log.Last()
	assert.Equal(t, expr.KindMismatchedParen, last.Kind)
}

func TestErrorsAreTerminalSteps(t *testing.T) {
	tests := map[string]trace.Kind{
		"3 + a":   expr.KindInvalidToken,
		")":       expr.KindMismatchedParen,
		"3 *":     expr.KindStackUnderflow,
		"1 2 3 +": expr.KindInvalidExpression,
	}
	for in, kind := range tests {
		t.Run(in, func(t *testing.T) {
			res, log := expr.Evaluate(in)
			assert.False(t, res.OK)
			assert.NotEmpty(t, res.Reason)
			last, ok := log.Last()
			require.True(t, ok)
			assert.Equal(t, kind, last.Kind)
			assert.Equal(t, res.Reason, last.Narrative)
		})
	}
}

func TestSnapshots(t *testing.T) {
	_, log := expr.Evaluate("( 3 + 4 ) * 2")

	var phases []string
	for _, s := range log.All() {
		snap := s.Snapshot.(expr.Snapshot)
		if len(phases) == 0 || phases[len(phases)-1] != snap.Phase {
			phases = append(phases, snap.Phase)
		}
	}
	assert.Equal(t, []string{expr.PhaseConvert, expr.PhaseEvaluate}, phases)

	// after "+" is pushed inside the parentheses the stack reads "( +"
	push := log.At(2)
	require.Equal(t, expr.KindPushOperator, push.Kind)
	stack, _ := push.Snapshot.Frame().List("stack")
	assert.Equal(t, []string{"(", "+"}, stack)
	input, _ := push.Snapshot.Frame().List("input")
	assert.Equal(t, "[+]", input[2])

	last, _ := log.Last()
	stack, _ = last.Snapshot.Frame().List("stack")
	assert.Equal(t, []string{"14"}, stack)
	_, hasOutput := last.Snapshot.Frame().List("output")
	assert.False(t, hasOutput)
}
