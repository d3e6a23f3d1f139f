package instrument

import "github.com/vango-dev/zvue/pkg/reactive"

// Multi fans every event out to each hook in order.
type Multi []reactive.Hooks

var _ reactive.Hooks = Multi(nil)

// OnWatch implements reactive.Hooks.
func (m Multi) OnWatch(key string) {
	for _, h := range m {
		h.OnWatch(key)
	}
}

// OnWrite implements reactive.Hooks.
func (m Multi) OnWrite(key string, changed bool) {
	for _, h := range m {
		h.OnWrite(key, changed)
	}
}

// OnNotify implements reactive.Hooks.
func (m Multi) OnNotify(info reactive.NotifyInfo) {
	for _, h := range m {
		h.OnNotify(info)
	}
}
