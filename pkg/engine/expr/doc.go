// Package expr evaluates single-digit arithmetic expressions in two traced
// phases: Shunting-Yard conversion from infix to postfix, then stack-based
// postfix evaluation.
//
// Tokens are single characters: the digits 0-9 and the operators
// + - * / ^ ( ). Spaces are ignored. Multi-digit numbers, unary minus and
// variables are not supported.
//
// Precedence from low to high is + -, then * /, then ^. All operators are
// left-associative except ^, so "2 ^ 3 ^ 2" is 2^(3^2).
//
// Any division by zero yields NaN. Malformed input is never a Go error: the
// trace ends with a step explaining what went wrong and the result has OK
// false.
package expr
