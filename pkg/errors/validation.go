package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// Limits on run configuration. Traces grow with input size and every step
// holds a full snapshot, so inputs are kept small enough to play back.
const (
	MaxKeys             = 256
	MaxWordLength       = 64
	MaxExpressionLength = 256
	MaxSequenceLength   = 32
	MaxEdges            = 512
)

// ValidateDegree validates a B-Tree minimum degree.
func ValidateDegree(t int) error {
	if t < 2 {
		return New(ErrCodeInvalidConfig, "minimum degree must be >= 2, got %d", t)
	}
	return nil
}

// ValidateKeys validates an initial key set.
func ValidateKeys(keys []int) error {
	if len(keys) > MaxKeys {
		return New(ErrCodeInvalidConfig, "too many keys: %d (max %d)", len(keys), MaxKeys)
	}
	return nil
}

// ValidateArray validates a segment-tree input array. The array must be
// non-empty since an empty tree has nothing to update.
func ValidateArray(arr []int) error {
	if len(arr) == 0 {
		return New(ErrCodeInvalidConfig, "array cannot be empty")
	}
	if len(arr) > MaxKeys {
		return New(ErrCodeInvalidConfig, "array too long: %d (max %d)", len(arr), MaxKeys)
	}
	return nil
}

// ValidateWord validates a trie word.
//
// The validation rules are intentionally conservative:
//   - No empty words
//   - No whitespace or control characters
//   - Maximum length of MaxWordLength runes
func ValidateWord(word string) error {
	if word == "" {
		return New(ErrCodeInvalidInput, "word cannot be empty")
	}
	if n := len([]rune(word)); n > MaxWordLength {
		return New(ErrCodeInvalidInput, "word too long: %d (max %d characters)", n, MaxWordLength)
	}
	for _, r := range word {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "word contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateExpression validates the raw text of an infix expression. Token-level
// problems (unknown characters, mismatched parentheses) are reported by the
// expression engine as part of its trace, not here.
func ValidateExpression(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return New(ErrCodeInvalidConfig, "expression cannot be empty")
	}
	if len(expr) > MaxExpressionLength {
		return New(ErrCodeInvalidConfig, "expression too long (max %d characters)", MaxExpressionLength)
	}
	for _, r := range expr {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "expression contains control characters")
		}
	}
	return nil
}

// ValidateSequence validates one LCS input string.
func ValidateSequence(name, s string) error {
	if n := len([]rune(s)); n > MaxSequenceLength {
		return New(ErrCodeInvalidConfig, "%s too long: %d (max %d characters)", name, n, MaxSequenceLength)
	}
	return nil
}

// edgeRegex matches "A->B" with optional surrounding spaces.
var edgeRegex = regexp.MustCompile(`^\s*([^\s>-][^\s>]*)\s*->\s*([^\s>-][^\s>]*)\s*$`)

// ValidateEdge validates a directed edge written as "from->to" and returns
// its endpoints.
func ValidateEdge(spec string) (from, to string, err error) {
	m := edgeRegex.FindStringSubmatch(spec)
	if m == nil {
		return "", "", New(ErrCodeInvalidConfig, "invalid edge %q (want FROM->TO)", spec)
	}
	return m[1], m[2], nil
}

// ValidateEdges validates a list of edge specs.
func ValidateEdges(specs []string) error {
	if len(specs) > MaxEdges {
		return New(ErrCodeInvalidConfig, "too many edges: %d (max %d)", len(specs), MaxEdges)
	}
	for _, s := range specs {
		if _, _, err := ValidateEdge(s); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTraceID validates a trace identifier used as a storage key.
// It rejects ids that could be used for path traversal.
func ValidateTraceID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "trace id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "trace id too long (max 64 characters)")
	}
	for _, r := range id {
		if !(r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return New(ErrCodeInvalidInput, "trace id contains invalid character %q", r)
		}
	}
	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateURL validates a backend connection URL against allowed schemes,
// e.g. "redis", "rediss" or "mongodb".
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "URL must use one of the schemes: %s", strings.Join(schemes, ", "))
}
