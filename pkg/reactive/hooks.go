package reactive

import "time"

// NotifyInfo describes one completed notification pass.
type NotifyInfo struct {
	// Key is the property whose Dep notified.
	Key string

	// Readers is the number of readers in the pass.
	Readers int

	// Start is when the pass began.
	Start time.Time

	// Duration is how long the readers took to run.
	Duration time.Duration

	// Err is non-nil when isolated readers failed.
	Err error
}

// Hooks observes engine activity. Implementations must be cheap and must not
// read or write reactive state.
//
// See pkg/instrument for Prometheus and OpenTelemetry implementations.
type Hooks interface {
	// OnWatch is called after a Watcher is created through a VM.
	OnWatch(key string)

	// OnWrite is called for every write to an intercepted property.
	// changed is false when the write was an equal-value no-op.
	OnWrite(key string, changed bool)

	// OnNotify is called after a Dep finishes notifying its readers.
	// It is not called when a reader panics in fail-fast mode.
	OnNotify(info NotifyInfo)
}

// NopHooks ignores every event.
type NopHooks struct{}

func (NopHooks) OnWatch(string)       {}
func (NopHooks) OnWrite(string, bool) {}
func (NopHooks) OnNotify(NotifyInfo)  {}
