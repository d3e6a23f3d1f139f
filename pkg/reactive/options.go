package reactive

import "log/slog"

// Option is a functional option for configuring observation.
type Option func(*settings)

// settings is shared by every Object and Dep created by one observation, so
// objects attached later inherit the configuration of the tree they join.
type settings struct {
	logger *slog.Logger
	hooks  Hooks

	// isolate recovers panics from individual readers during Notify.
	isolate bool

	// strict rejects unknown keys on a VM instead of resolving them to nil.
	strict bool
}

// WithLogger sets the logger used for debug tracing and isolated failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks installs engine hooks.
func WithHooks(hooks Hooks) Option {
	return func(s *settings) {
		if hooks != nil {
			s.hooks = hooks
		}
	}
}

// WithIsolation controls failure handling during Notify.
//
// By default a panicking reader aborts the rest of the fan-out and the panic
// reaches the writer. With isolation enabled every reader runs, failures are
// logged, and the write returns a *NotifyError.
func WithIsolation(enabled bool) Option {
	return func(s *settings) {
		s.isolate = enabled
	}
}

// WithStrict makes a VM reject writes and watches on keys it does not proxy.
//
// Example:
//
//	vm := reactive.New(data, reactive.WithStrict(true))
//	_, err := vm.Watch("typo", fn) // errors.Is(err, reactive.ErrUnknownProperty)
func WithStrict(enabled bool) Option {
	return func(s *settings) {
		s.strict = enabled
	}
}

// applyOptions applies the given options over the defaults.
func applyOptions(opts []Option) *settings {
	s := &settings{
		logger: slog.Default().With("component", "reactive"),
		hooks:  NopHooks{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
