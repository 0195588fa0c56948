package api

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

type deferredKey struct{}

// deferred collects functions to run once the response is out. After the
// middleware has flushed, late additions run right away.
type deferred struct {
	mu      sync.Mutex
	fns     []func()
	flushed bool
}

// AfterResponse runs functions registered with Defer after the wrapped
// handler has returned and the response was flushed. They run on their own
// goroutine and a panic in one of them is logged and contained.
func AfterResponse(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := &deferred{}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), deferredKey{}, d)))

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		d.mu.Lock()
		fns := d.fns
		d.fns = nil
		d.flushed = true
		d.mu.Unlock()

		if len(fns) > 0 {
			go runDeferred(fns)
		}
	})
}

// Defer schedules fn to run after the current response. Without the
// AfterResponse middleware in the chain fn runs on a new goroutine
// immediately. It reports whether fn was queued behind the response.
func Defer(ctx context.Context, fn func()) bool {
	d, ok := ctx.Value(deferredKey{}).(*deferred)
	if !ok {
		go runDeferred([]func(){fn})
		return false
	}
	d.mu.Lock()
	if d.flushed {
		d.mu.Unlock()
		go runDeferred([]func(){fn})
		return false
	}
	d.fns = append(d.fns, fn)
	d.mu.Unlock()
	return true
}

func runDeferred(fns []func()) {
	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					zap.S().Errorw("deferred task panicked", "panic", r)
				}
			}()
			fn()
		}()
	}
}
