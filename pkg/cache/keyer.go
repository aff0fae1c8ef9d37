package cache

import "fmt"

// Keyer derives cache keys.
type Keyer interface {
	// TraceKey identifies the document produced by running operation on
	// engine with the given inputs. Inputs are hashed as JSON, so any two
	// equal input values yield the same key.
	TraceKey(engine, operation string, inputs any) string
	// RenderKey identifies one rendered step of a cached trace.
	RenderKey(traceKey string, step int, format string) string
}

// DefaultKeyer hashes its inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TraceKey implements [Keyer].
func (DefaultKeyer) TraceKey(engine, operation string, inputs any) string {
	return hashKey("trace:"+engine+":"+operation, inputs)
}

// RenderKey implements [Keyer].
func (DefaultKeyer) RenderKey(traceKey string, step int, format string) string {
	return fmt.Sprintf("render:%s:%s", format, Hash([]byte(fmt.Sprintf("%s#%d", traceKey, step))))
}
