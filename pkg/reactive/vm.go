package reactive

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// VM is the reactive facade over a data object. Every key present in the
// data at construction time is proxied, so vm.Get(k) and vm.Set(k, v) behave
// exactly like reading and writing the underlying Object. The proxy holds no
// reactivity of its own.
type VM struct {
	data *Object
	cfg  *settings

	// proxied is fixed at construction.
	proxied map[string]struct{}

	// own holds facade-local values written to keys that are not proxied.
	own   map[string]any
	ownMu sync.RWMutex
}

// New observes data and returns a facade exposing its top-level keys.
// A nil map yields an empty facade.
func New(data map[string]any, opts ...Option) *VM {
	cfg := applyOptions(opts)

	obj, ok := cfg.observe(data).(*Object)
	if !ok {
		obj = newObject(cfg)
	}

	vm := &VM{
		data:    obj,
		cfg:     cfg,
		proxied: make(map[string]struct{}),
		own:     make(map[string]any),
	}
	vm.proxy()
	return vm
}

// proxy installs a pass-through for every key of the data object.
func (vm *VM) proxy() {
	for _, key := range vm.data.Keys() {
		vm.proxied[key] = struct{}{}
	}
}

func (vm *VM) isProxied(key string) bool {
	_, ok := vm.proxied[key]
	return ok
}

// Data returns the underlying reactive object.
func (vm *VM) Data() *Object {
	return vm.data
}

// Logger returns the logger the facade was configured with.
func (vm *VM) Logger() *slog.Logger {
	return vm.cfg.logger
}

// Strict reports whether the facade rejects unknown keys.
func (vm *VM) Strict() bool {
	return vm.cfg.strict
}

// Get reads key. Proxied keys read through to the data object, registering
// the active reader; other keys resolve to a facade-local value or nil.
func (vm *VM) Get(key string) any {
	v, _ := vm.Lookup(key)
	return v
}

// Lookup is Get with a presence flag.
func (vm *VM) Lookup(key string) (any, bool) {
	if vm.isProxied(key) {
		return vm.data.Lookup(key)
	}

	vm.ownMu.RLock()
	defer vm.ownMu.RUnlock()
	v, ok := vm.own[key]
	return v, ok
}

// Has reports whether key resolves to anything on the facade.
func (vm *VM) Has(key string) bool {
	_, ok := vm.Lookup(key)
	return ok
}

// Set writes key. Proxied keys write through to the data object and notify
// its readers. Writing any other key stores a non-reactive facade-local
// value, or returns ErrUnknownProperty in strict mode.
func (vm *VM) Set(key string, val any) error {
	if vm.isProxied(key) {
		return vm.data.Set(key, val)
	}
	if vm.cfg.strict {
		return fmt.Errorf("%w: %q", ErrUnknownProperty, key)
	}

	vm.ownMu.Lock()
	vm.own[key] = val
	vm.ownMu.Unlock()
	return nil
}

// Keys returns the proxied keys in sorted order.
func (vm *VM) Keys() []string {
	keys := make([]string, 0, len(vm.proxied))
	for k := range vm.proxied {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Watch binds update to key through the facade. In strict mode a key that is
// not proxied is rejected instead of producing a watcher that never fires.
func (vm *VM) Watch(key string, update UpdateFunc) (*Watcher, error) {
	if vm.cfg.strict && !vm.isProxied(key) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, key)
	}

	w := NewWatcher(vm, key, update)
	vm.cfg.hooks.OnWatch(key)
	vm.cfg.logger.Debug("watcher created", "key", key, "watcher", w.ID())
	return w, nil
}

// Snapshot returns a plain deep copy of the data object.
func (vm *VM) Snapshot() map[string]any {
	return vm.data.Snapshot()
}
