package reactive

// Observe makes v reactive and returns the result.
//
// A map[string]any becomes a new *Object with every key intercepted, nested
// maps included. An *Object is returned unchanged, so observing twice never
// wraps a property twice. Everything else, nil and slices included, is a
// leaf and is returned as-is.
func Observe(v any, opts ...Option) any {
	return applyOptions(opts).observe(v)
}

func (s *settings) observe(v any) any {
	switch t := v.(type) {
	case *Object:
		return t
	case map[string]any:
		if t == nil {
			return v
		}
		return s.walk(t)
	default:
		return v
	}
}

// walk intercepts every key of src on a fresh Object.
func (s *settings) walk(src map[string]any) *Object {
	o := newObject(s)
	o.src = src
	for _, key := range sortedKeys(src) {
		o.define(key, src[key])
	}
	return o
}
