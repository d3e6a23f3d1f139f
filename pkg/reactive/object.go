package reactive

import (
	"encoding/json"
	"reflect"
	"slices"
	"sort"
	"sync"
)

// Object is a reactive key-value mapping. Keys present when the Object was
// observed (or added with Define) are intercepted: each has exactly one Dep.
// Keys written later with Set are plain values that are never tracked.
type Object struct {
	cfg *settings

	props map[string]*property

	// keys lists the intercepted keys in sorted order.
	keys []string

	// src is the map this Object was observed from, if any.
	src map[string]any

	mu sync.RWMutex
}

type property struct {
	value any

	// dep is nil for plain properties.
	dep *Dep
}

func newObject(cfg *settings) *Object {
	return &Object{
		cfg:   cfg,
		props: make(map[string]*property),
	}
}

// define intercepts key with initial value val. Nested maps in val are made
// reactive before the property is installed.
func (o *Object) define(key string, val any) {
	val = o.cfg.observe(val)
	dep := newDep(key, o.cfg)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.props[key] = &property{value: val, dep: dep}
	if i, found := slices.BinarySearch(o.keys, key); !found {
		o.keys = slices.Insert(o.keys, i, key)
	}
}

// Define adds key as an intercepted property. Defining a key that is already
// intercepted behaves like Set, so existing readers stay registered.
func (o *Object) Define(key string, val any) error {
	o.mu.RLock()
	p, ok := o.props[key]
	o.mu.RUnlock()
	if ok && p.dep != nil {
		return o.Set(key, val)
	}
	o.define(key, val)
	return nil
}

// Get returns the value of key and registers the active reader, if any, with
// the key's Dep. Missing keys resolve to nil.
func (o *Object) Get(key string) any {
	v, _ := o.Lookup(key)
	return v
}

// Lookup is Get with a presence flag.
func (o *Object) Lookup(key string) (any, bool) {
	o.mu.RLock()
	p, ok := o.props[key]
	var val any
	var dep *Dep
	if ok {
		val, dep = p.value, p.dep
	}
	o.mu.RUnlock()

	if dep != nil {
		if r := ActiveReader(); r != nil {
			dep.Register(r)
		}
	}
	return val, ok
}

// Peek returns the value of key without registering any reader.
func (o *Object) Peek(key string) any {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if p, ok := o.props[key]; ok {
		return p.value
	}
	return nil
}

// Has reports whether key exists, intercepted or plain.
func (o *Object) Has(key string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.props[key]
	return ok
}

// Set writes key.
//
// For an intercepted key, a value equal to the current one (see SameValue),
// or the same map the current Object was observed from, is a no-op. Otherwise the new value is made reactive, stored, and the
// key's readers are notified before Set returns. The returned error is only
// ever a *NotifyError from isolated notification.
//
// A key that is not intercepted is stored as a plain value.
func (o *Object) Set(key string, val any) error {
	o.mu.RLock()
	p, ok := o.props[key]
	same := ok && p.dep != nil && observedFrom(p.value, val)
	o.mu.RUnlock()
	if same {
		o.cfg.hooks.OnWrite(key, false)
		return nil
	}

	next := o.cfg.observe(val)

	o.mu.Lock()
	p, ok = o.props[key]
	if !ok {
		o.props[key] = &property{value: next}
		o.mu.Unlock()
		return nil
	}
	if p.dep == nil {
		p.value = next
		o.mu.Unlock()
		return nil
	}
	if SameValue(p.value, val) {
		o.mu.Unlock()
		o.cfg.hooks.OnWrite(key, false)
		return nil
	}
	p.value = next
	dep := p.dep
	o.mu.Unlock()

	o.cfg.hooks.OnWrite(key, true)
	o.cfg.logger.Debug("property changed", "key", key, "readers", dep.Len())
	return dep.Notify()
}

// observedFrom reports whether cur is the Object that the map val was
// observed into, so writing the same map back is not a change.
func observedFrom(cur, val any) bool {
	obj, ok := cur.(*Object)
	if !ok || obj.src == nil {
		return false
	}
	m, ok := val.(map[string]any)
	if !ok || m == nil {
		return false
	}
	return reflect.ValueOf(m).Pointer() == reflect.ValueOf(obj.src).Pointer()
}

// Dep returns the registry of an intercepted key, or nil.
func (o *Object) Dep(key string) *Dep {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if p, ok := o.props[key]; ok {
		return p.dep
	}
	return nil
}

// Keys returns the intercepted keys in sorted order.
func (o *Object) Keys() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.keys)
}

// Len returns the number of properties, intercepted or plain.
func (o *Object) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.props)
}

// Snapshot returns a deep copy of the object as plain maps, without
// registering any reader.
func (o *Object) Snapshot() map[string]any {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make(map[string]any, len(o.props))
	for k, p := range o.props {
		if nested, ok := p.value.(*Object); ok {
			out[k] = nested.Snapshot()
			continue
		}
		out[k] = p.value
	}
	return out
}

// MarshalJSON encodes the current snapshot.
func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Snapshot())
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
