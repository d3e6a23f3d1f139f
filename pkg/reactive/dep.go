package reactive

import (
	"sync"
	"time"
)

// Dep is the dependency registry of one intercepted property. It is created
// when the property is intercepted and is never shared with another property.
type Dep struct {
	id  uint64
	key string
	cfg *settings

	// readers are kept in registration order. The same reader may appear
	// more than once if it read the property more than once while active.
	readers []Reader

	mu sync.Mutex
}

func newDep(key string, cfg *settings) *Dep {
	return &Dep{
		id:  nextID(),
		key: key,
		cfg: cfg,
	}
}

// ID returns the unique identifier for this dep.
func (d *Dep) ID() uint64 {
	return d.id
}

// Key returns the name of the property this dep belongs to.
func (d *Dep) Key() string {
	return d.key
}

// Register appends r to the registry unconditionally.
func (d *Dep) Register(r Reader) {
	if r == nil {
		return
	}

	d.mu.Lock()
	d.readers = append(d.readers, r)
	d.mu.Unlock()
}

// Len returns the number of registrations.
func (d *Dep) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.readers)
}

// Readers returns a snapshot of the registered readers in order.
func (d *Dep) Readers() []Reader {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Reader, len(d.readers))
	copy(out, d.readers)
	return out
}

// Notify calls Update on every registered reader, in registration order, on
// the calling goroutine. Readers registered while the pass is running are
// not part of it.
//
// In fail-fast mode (the default) a panicking reader stops the pass and the
// panic propagates to the caller. With isolation enabled every reader runs
// and the failures are returned as a *NotifyError.
func (d *Dep) Notify() error {
	readers := d.Readers()

	start := time.Now()
	var err error
	if d.cfg.isolate {
		err = d.notifyIsolated(readers)
	} else {
		for _, r := range readers {
			r.Update()
		}
	}

	d.cfg.hooks.OnNotify(NotifyInfo{
		Key:      d.key,
		Readers:  len(readers),
		Start:    start,
		Duration: time.Since(start),
		Err:      err,
	})
	return err
}

func (d *Dep) notifyIsolated(readers []Reader) error {
	var errs []error
	for _, r := range readers {
		if err := safeUpdate(r); err != nil {
			d.cfg.logger.Error("reader update failed",
				"key", d.key,
				"reader", r.ID(),
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &NotifyError{Key: d.key, Errs: errs}
}

func safeUpdate(r Reader) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Reader: r.ID(), Value: v}
		}
	}()
	r.Update()
	return nil
}
