package reactive

// Watcher is the Reader for one binding: a target, a key on it, and an
// update callback. It keeps no copy of the value; every Update re-reads.
type Watcher struct {
	id     uint64
	target Target
	key    string
	update UpdateFunc
}

// NewWatcher creates a watcher and performs its initial tracked read of
// target.Get(key). That read is the only thing that subscribes the watcher,
// so a watcher on a key the target does not intercept is never notified.
//
// The initial read does not call update; callers that need the current
// value render it themselves.
func NewWatcher(target Target, key string, update UpdateFunc) *Watcher {
	w := &Watcher{
		id:     nextID(),
		target: target,
		key:    key,
		update: update,
	}

	WithReader(w, func() {
		_ = target.Get(key)
	})
	return w
}

// Update re-reads the key and calls the update callback with the fresh
// value. Reads made during Update are not tracked.
// Implements the Reader interface.
func (w *Watcher) Update() {
	Untracked(func() {
		v := w.target.Get(w.key)
		if w.update != nil {
			w.update(w.target, v)
		}
	})
}

// ID returns the unique identifier for this watcher.
// Implements the Reader interface.
func (w *Watcher) ID() uint64 {
	return w.id
}

// Key returns the watched key.
func (w *Watcher) Key() string {
	return w.key
}

// Target returns the watched target.
func (w *Watcher) Target() Target {
	return w.target
}
