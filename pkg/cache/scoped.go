package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance without colliding.
//
// Example usage:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
//	key := staging.TraceKey("btree", "insert", inputs)
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TraceKey generates a prefixed trace key.
func (k *ScopedKeyer) TraceKey(engine, operation string, inputs any) string {
	return k.prefix + k.inner.TraceKey(engine, operation, inputs)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(traceKey string, step int, format string) string {
	return k.prefix + k.inner.RenderKey(traceKey, step, format)
}
