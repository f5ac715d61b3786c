package embdr

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStillPending is reported when resource stayed pending after the number
// of attempts configured with WithMaxAttempts
var ErrStillPending = errors.New("embdr: resource is still pending")

// Handle controls a single Embed call
type Handle struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	cancelled bool
	finished  bool
	attempts  int
	res       *Resource
	err       error
}

// Cancel stops embedding: once Cancel returns, no more metadata requests are
// made, no target writes and no option callbacks are started. A request
// already in flight is aborted. Cancel may be called any number of times,
// including after embedding has completed, and from within Target.SetContent
// or option callbacks.
func (h *Handle) Cancel() {
	h.mu.Lock()
	h.cancelled = true
	h.mu.Unlock()
	h.cancel()
}

// Done returns a channel that is closed once embedding is over, either
// completed or cancelled
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until embedding is over or ctx is done. It returns the last
// resource fetched and the error embedding ended with, if any. Cancelled
// embedding reports context.Canceled.
func (h *Handle) Wait(ctx context.Context) (*Resource, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.res, h.err
}

// Attempts returns number of metadata requests started so far
func (h *Handle) Attempts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attempts
}

func (h *Handle) active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.activeLocked()
}

func (h *Handle) activeLocked() bool { return !h.cancelled && h.ctx.Err() == nil }

// startAttempt registers new attempt, it returns false if handle is no longer
// active
func (h *Handle) startAttempt() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.activeLocked() {
		return false
	}
	h.attempts++
	return true
}

// write puts fragment into target unless handle was cancelled. It returns
// false if handle was cancelled before or during the write.
func (h *Handle) write(t Target, s string) bool {
	if !h.active() {
		return false
	}
	if t != nil && s != "" {
		t.SetContent(s)
	}
	return h.active()
}

// call invokes option callback unless handle was cancelled
func (h *Handle) call(fn func()) bool {
	if !h.active() {
		return false
	}
	fn()
	return true
}

func (h *Handle) finish(r *Resource, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished {
		return
	}
	h.finished = true
	h.res, h.err = r, err
}

// Embed fetches resource metadata and embeds resource into target, polling
// the service while resource is being processed. It returns immediately;
// use the returned Handle to wait for or cancel embedding. target may be
// nil, in which case only option callbacks are invoked.
//
// On the first poll that finds resource pending, the pending placeholder is
// applied once: its callback is invoked or its image put into target.
// Fetch errors are never retried, they are passed to opts.Complete.
func (c *Client) Embed(ctx context.Context, target Target, resourceID, embedKey string, opts Options) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{ctx: ctx, cancel: cancel, done: make(chan struct{})}
	go c.poll(h, target, resourceID, embedKey, opts.withDefaults(c.host))
	return h
}

// EmbedElement is like Embed, but uses page element with given id as the
// target. If page has no such element, nothing is written to page.
func (c *Client) EmbedElement(ctx context.Context, page *Page, elementID, resourceID, embedKey string, opts Options) *Handle {
	var target Target
	if page != nil {
		target = page.Element(elementID)
	}
	return c.Embed(ctx, target, resourceID, embedKey, opts)
}

func (c *Client) poll(h *Handle, target Target, resourceID, embedKey string, opts Options) {
	var last *Resource
	defer close(h.done)
	defer h.cancel()
	defer func() {
		err := h.ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		h.finish(last, err) // no-op if already finished
	}()
	for attempt := 1; ; attempt++ {
		if !h.startAttempt() {
			return
		}
		res, err := c.Fetch(h.ctx, resourceID, embedKey)
		if !h.active() {
			c.Log.Printf("embedding of resource %q cancelled", resourceID)
			return
		}
		if err != nil {
			c.Log.Printf("cannot fetch resource %q: %v", resourceID, err)
			h.finish(nil, err)
			h.call(func() { opts.Complete(nil, err) })
			return
		}
		last = res
		if CanEmbedNow(res, c.scheme) {
			c.embed(h, target, res, opts)
			return
		}
		if attempt == 1 && !c.notifyPending(h, target, res, opts) {
			return
		}
		if c.maxAttempts > 0 && attempt >= c.maxAttempts {
			h.finish(res, ErrStillPending)
			h.call(func() { opts.Complete(res, ErrStillPending) })
			return
		}
		c.Log.Printf("resource %q still pending, attempt %d", resourceID, attempt)
		timer := time.NewTimer(c.pollInterval)
		select {
		case <-h.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// notifyPending applies pending placeholder to a resource that is not ready
// yet. It returns false if handle was cancelled.
func (c *Client) notifyPending(h *Handle, target Target, res *Resource, opts Options) bool {
	if fn := opts.Pending.fn; fn != nil {
		return h.call(func() { fn(res) })
	}
	return h.write(target, c.imageCode(res, opts.Pending.url))
}

func (c *Client) embed(h *Handle, target Target, res *Resource, opts Options) {
	f := c.Render(res, opts)
	for _, fn := range f.calls {
		if !h.call(func() { fn(res) }) {
			return
		}
	}
	if !h.write(target, f.HTML) {
		return
	}
	h.finish(res, nil)
	h.call(func() { opts.Complete(res, nil) })
}
