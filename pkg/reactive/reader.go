package reactive

// Reader is a unit of work that depends on one property and knows how to
// re-run its effect. Deps call Update when the property changes.
type Reader interface {
	// Update re-evaluates the reader against current state.
	Update()

	// ID returns a unique identifier for this reader.
	ID() uint64
}

// Target is anything a Watcher can read a key from.
// Both *VM and *Object implement it.
type Target interface {
	Get(key string) any
}

// UpdateFunc receives the watched target and the freshly read value.
type UpdateFunc func(target Target, value any)
