// Package reactive is the dependency-tracking core of zvue.
//
// A plain data map is turned into a reactive Object: every key gets its own
// Dep, reads made while a Reader is active register that Reader with the
// key's Dep, and writes of a different value notify every registered Reader
// synchronously, in registration order.
//
// # Core Types
//
// VM is the facade most callers use. It observes a data map and proxies each
// top-level key so it can be read and written directly:
//
//	vm := reactive.New(map[string]any{"msg": "hi"})
//	vm.Watch("msg", func(_ reactive.Target, v any) {
//	    fmt.Println("msg is now", v)
//	})
//	vm.Set("msg", "bye") // prints "msg is now bye"
//	vm.Set("msg", "bye") // equal value, prints nothing
//
// Watcher is the Reader implementation. Constructing one performs a single
// tracked read of its key; that read is the only way it is ever subscribed.
//
// # Nested Objects
//
// Nested maps become nested Objects, including maps assigned after
// construction:
//
//	vm.Set("user", map[string]any{"name": "b"})
//	user := vm.Get("user").(*reactive.Object)
//	reactive.NewWatcher(user, "name", render)
//
// Slices are stored as-is and never tracked.
//
// # Tracking Context
//
// The active Reader lives in a per-goroutine stack. WithReader pushes a
// Reader for the duration of a function and always pops it, even when the
// function panics. Untracked suspends tracking.
package reactive
