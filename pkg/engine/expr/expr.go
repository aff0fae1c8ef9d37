package expr

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/trace"
)

// Step kinds emitted while converting to postfix.
const (
	KindInvalidToken    trace.Kind = "invalid_token"
	KindOutputOperand   trace.Kind = "output_operand"
	KindPushOperator    trace.Kind = "push_operator"
	KindPopOperator     trace.Kind = "pop_operator"
	KindPushParen       trace.Kind = "push_paren"
	KindDiscardParen    trace.Kind = "discard_paren"
	KindMismatchedParen trace.Kind = "mismatched_paren"
	KindDrainOperator   trace.Kind = "drain_operator"
	KindPostfixDone     trace.Kind = "postfix_done"
)

// Step kinds emitted while evaluating postfix.
const (
	KindPushValue         trace.Kind = "push_value"
	KindApplyOperator     trace.Kind = "apply_operator"
	KindStackUnderflow    trace.Kind = "stack_underflow"
	KindInvalidExpression trace.Kind = "invalid_expression"
	KindResult            trace.Kind = "result"
)

// Phases recorded in snapshots.
const (
	PhaseConvert  = "convert"
	PhaseEvaluate = "evaluate"
)

// Result is the outcome of a conversion and/or evaluation. Value is only
// meaningful when OK is true and the evaluation phase ran; Display holds it
// formatted, "NaN" included, for JSON.
type Result struct {
	Tokens  []string `json:"tokens,omitempty"`
	Postfix []string `json:"postfix,omitempty"`
	Value   float64  `json:"-"`
	Display string   `json:"value,omitempty"`
	OK      bool     `json:"ok"`
	Reason  string   `json:"reason,omitempty"`
}

// PostfixString returns the postfix tokens separated by spaces.
func (r Result) PostfixString() string { return strings.Join(r.Postfix, " ") }

// Snapshot is the state of either phase: the input tokens with a cursor,
// the output queue (conversion only) and the operator or value stack.
// Values on the evaluation stack are kept formatted so NaN survives JSON.
type Snapshot struct {
	Phase  string   `json:"phase"`
	Input  []string `json:"input"`
	Pos    int      `json:"pos"`
	Output []string `json:"output,omitempty"`
	Stack  []string `json:"stack"`
}

func (s Snapshot) clone() Snapshot {
	s.Input = slices.Clone(s.Input)
	s.Output = slices.Clone(s.Output)
	s.Stack = slices.Clone(s.Stack)
	return s
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() trace.Snapshot { return s.clone() }

// Frame lists the input (with the current token bracketed), the output
// queue and the stack, top last.
func (s Snapshot) Frame() trace.Frame {
	input := make([]string, len(s.Input))
	for i, tok := range s.Input {
		if i == s.Pos {
			tok = "[" + tok + "]"
		}
		input[i] = tok
	}
	f := trace.Frame{Lists: []trace.List{{Name: "input", Items: input}}}
	if s.Phase == PhaseConvert {
		f.Lists = append(f.Lists, trace.List{Name: "output", Items: orEmpty(s.Output)})
	}
	f.Lists = append(f.Lists, trace.List{Name: "stack", Items: orEmpty(s.Stack)})
	return f
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

type run struct {
	rec   *trace.Recorder
	state Snapshot
}

func (r *run) record(kind trace.Kind, p trace.Payload, narrative string) {
	s := r.state.clone()
	var focus []string
	if s.Pos >= 0 && s.Pos < len(s.Input) {
		focus = []string{fmt.Sprintf("t%d", s.Pos)}
	}
	r.rec.Record(kind, focus, p, s, narrative)
}

// ToPostfix converts expr to postfix with the Shunting-Yard algorithm.
func ToPostfix(expr string) (Result, trace.Log) {
	r := &run{rec: trace.NewRecorder(), state: Snapshot{Phase: PhaseConvert, Pos: -1}}
	res := toPostfix(r, expr)
	return res, r.rec.Log()
}

func toPostfix(r *run, expr string) Result {
	tokens, err := Tokenize(expr)
	r.state.Input = tokens
	if err != nil {
		reason := errors.UserMessage(err)
		r.state.Pos = len(tokens)
		r.record(KindInvalidToken, trace.Payload{"expression": expr}, reason)
		return Result{Tokens: tokens, Reason: reason}
	}

	fail := func(pos int, reason string) Result {
		r.state.Pos = pos
		r.record(KindMismatchedParen, trace.Payload{"stack": r.state.Stack}, reason)
		return Result{Tokens: tokens, Reason: reason}
	}

	for i, tok := range tokens {
		r.state.Pos = i
		switch {
		case isOperand(tok):
			r.state.Output = append(r.state.Output, tok)
			r.record(KindOutputOperand, trace.Payload{"token": tok},
				fmt.Sprintf("operand %s goes straight to the output", tok))

		case tok == "(":
			r.state.Stack = append(r.state.Stack, tok)
			r.record(KindPushParen, trace.Payload{"token": tok}, "push ( onto the operator stack")

		case tok == ")":
			for {
				top, ok := peek(r.state.Stack)
				if !ok {
					return fail(i, ") has no matching (")
				}
				if top == "(" {
					break
				}
				r.popToOutput(KindPopOperator, fmt.Sprintf("pop %s to the output until (", top))
			}
			r.state.Stack = r.state.Stack[:len(r.state.Stack)-1]
			r.record(KindDiscardParen, trace.Payload{"token": tok}, "discard the matching (")

		default:
			op := operators[tok]
			for {
				top, ok := peek(r.state.Stack)
				if !ok || top == "(" {
					break
				}
				t := operators[top]
				if t.prec < op.prec || (t.prec == op.prec && op.rightAssoc) {
					break
				}
				narrative := fmt.Sprintf("%s on the stack binds tighter than %s: pop it", top, tok)
				if t.prec == op.prec {
					narrative = fmt.Sprintf("%s on the stack has equal precedence and %s is left-associative: pop it", top, tok)
				}
				r.popToOutput(KindPopOperator, narrative)
			}
			r.state.Stack = append(r.state.Stack, tok)
			r.record(KindPushOperator, trace.Payload{"token": tok, "precedence": op.prec},
				fmt.Sprintf("push %s onto the operator stack", tok))
		}
	}

	r.state.Pos = len(tokens)
	for len(r.state.Stack) > 0 {
		top, _ := peek(r.state.Stack)
		if top == "(" {
			return fail(len(tokens), "( is never closed")
		}
		r.popToOutput(KindDrainOperator, fmt.Sprintf("end of input: pop %s to the output", top))
	}

	postfix := slices.Clone(r.state.Output)
	r.record(KindPostfixDone, trace.Payload{"postfix": postfix},
		fmt.Sprintf("postfix: %s", strings.Join(postfix, " ")))
	return Result{Tokens: tokens, Postfix: postfix, OK: true}
}

func (r *run) popToOutput(kind trace.Kind, narrative string) {
	top := r.state.Stack[len(r.state.Stack)-1]
	r.state.Stack = r.state.Stack[:len(r.state.Stack)-1]
	r.state.Output = append(r.state.Output, top)
	r.record(kind, trace.Payload{"token": top}, narrative)
}

func peek(stack []string) (string, bool) {
	if len(stack) == 0 {
		return "", false
	}
	return stack[len(stack)-1], true
}

// EvaluatePostfix evaluates postfix tokens with a value stack.
func EvaluatePostfix(postfix []string) (Result, trace.Log) {
	r := &run{rec: trace.NewRecorder()}
	res := evaluate(r, postfix)
	return res, r.rec.Log()
}

func evaluate(r *run, postfix []string) Result {
	r.state = Snapshot{Phase: PhaseEvaluate, Input: slices.Clone(postfix), Stack: []string{}}
	res := Result{Postfix: slices.Clone(postfix)}
	var values []float64
	sync := func() {
		r.state.Stack = r.state.Stack[:0]
		for _, v := range values {
			r.state.Stack = append(r.state.Stack, format(v))
		}
	}

	for i, tok := range postfix {
		r.state.Pos = i
		switch {
		case isOperand(tok):
			values = append(values, float64(tok[0]-'0'))
			sync()
			r.record(KindPushValue, trace.Payload{"token": tok}, fmt.Sprintf("push %s", tok))

		case isOperator(tok):
			if len(values) < 2 {
				res.Reason = fmt.Sprintf("%s needs two operands but the stack holds %d", tok, len(values))
				r.record(KindStackUnderflow, trace.Payload{"token": tok, "available": len(values)}, res.Reason)
				return res
			}
			b, a := values[len(values)-1], values[len(values)-2]
			values = values[:len(values)-2]
			v := apply(tok, a, b)
			values = append(values, v)
			sync()
			narrative := fmt.Sprintf("pop %s and %s: %s %s %s = %s", format(b), format(a), format(a), tok, format(b), format(v))
			if tok == "/" && b == 0 {
				narrative += " (division by zero)"
			}
			r.record(KindApplyOperator, trace.Payload{"operator": tok, "a": format(a), "b": format(b), "result": format(v)}, narrative)

		default:
			res.Reason = fmt.Sprintf("unexpected token %q", tok)
			r.record(KindInvalidToken, trace.Payload{"token": tok}, res.Reason)
			return res
		}
	}

	r.state.Pos = len(postfix)
	if len(values) != 1 {
		res.Reason = fmt.Sprintf("expected one value at the end, found %d", len(values))
		r.record(KindInvalidExpression, trace.Payload{"remaining": len(values)}, res.Reason)
		return res
	}
	res.Value = values[0]
	res.Display = format(values[0])
	res.OK = true
	r.record(KindResult, trace.Payload{"value": res.Display}, fmt.Sprintf("result: %s", res.Display))
	return res
}

func apply(op string, a, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		if b == 0 {
			return math.NaN()
		}
		return a / b
	case "^":
		return math.Pow(a, b)
	}
	return math.NaN()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Evaluate converts expr to postfix and evaluates it. Both phases go into a
// single log; evaluation is skipped when conversion fails.
func Evaluate(expr string) (Result, trace.Log) {
	r := &run{rec: trace.NewRecorder(), state: Snapshot{Phase: PhaseConvert, Pos: -1}}
	conv := toPostfix(r, expr)
	if !conv.OK {
		return conv, r.rec.Log()
	}
	res := evaluate(r, conv.Postfix)
	res.Tokens = conv.Tokens
	return res, r.rec.Log()
}
