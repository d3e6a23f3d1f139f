// Package instrument provides reactive.Hooks implementations backed by
// Prometheus and OpenTelemetry.
//
// Hooks are installed when data is observed:
//
//	m := instrument.NewMetrics(instrument.WithRegistry(reg))
//	t := instrument.NewTracing(instrument.WithTracerName("my-app"))
//	vm := reactive.New(data, reactive.WithHooks(instrument.Multi{m, t}))
//
// Metrics collected (namespace "zvue" by default):
//   - zvue_watches_total: Counter of watchers created, by key
//   - zvue_writes_total: Counter of writes by key and result (changed, noop)
//   - zvue_notify_duration_seconds: Histogram of notification pass duration, by key
//   - zvue_notify_readers: Histogram of readers per notification pass
//   - zvue_notify_errors_total: Counter of failed passes, by key
//   - zvue_patches_sent_total: Counter of patches broadcast to live clients
//   - zvue_live_clients: Gauge of connected live clients
package instrument
