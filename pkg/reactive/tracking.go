package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for a goroutine.
type trackingContext struct {
	// readers is the stack of active readers. The top is the reader that
	// reads are attributed to; a nil entry means tracking is suspended.
	readers []Reader
}

// trackingContexts stores per-goroutine tracking contexts, keyed by
// goroutine ID. Entries are removed once their stack empties.
var trackingContexts sync.Map

// getGoroutineID returns a unique identifier for the current goroutine.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> "
	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// ActiveReader returns the reader currently capturing dependencies on this
// goroutine, or nil.
func ActiveReader() Reader {
	v, ok := trackingContexts.Load(getGoroutineID())
	if !ok {
		return nil
	}
	ctx := v.(*trackingContext)
	if len(ctx.readers) == 0 {
		return nil
	}
	return ctx.readers[len(ctx.readers)-1]
}

// pushReader makes r the active reader for the current goroutine.
func pushReader(r Reader) {
	gid := getGoroutineID()
	v, _ := trackingContexts.LoadOrStore(gid, &trackingContext{})
	ctx := v.(*trackingContext)
	ctx.readers = append(ctx.readers, r)
}

// popReader removes r from the top of the current goroutine's stack.
// Popping anything other than the top is a programming error.
func popReader(r Reader) {
	gid := getGoroutineID()
	v, ok := trackingContexts.Load(gid)
	if !ok {
		panic(ErrReaderStack)
	}
	ctx := v.(*trackingContext)
	n := len(ctx.readers)
	if n == 0 || !sameReader(ctx.readers[n-1], r) {
		panic(ErrReaderStack)
	}
	ctx.readers[n-1] = nil
	ctx.readers = ctx.readers[:n-1]
	if len(ctx.readers) == 0 {
		trackingContexts.Delete(gid)
	}
}

func sameReader(a, b Reader) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

// WithReader runs fn with r as the active reader. Any tracked read inside fn
// registers r with the property's Dep. The previous reader is restored on
// every exit path, including a panic in fn.
//
// Nested calls stack: a reader constructed while another is active captures
// its own reads, and the outer reader resumes afterwards.
func WithReader(r Reader, fn func()) {
	pushReader(r)
	defer popReader(r)
	fn()
}

// Untracked runs fn with dependency tracking suspended.
func Untracked(fn func()) {
	WithReader(nil, fn)
}
