package fiber

import (
	"fmt"
	"unsafe"
)

// A Func is the body of a fiber. It receives a handle for the flow
// that first resumed the fiber, and returns the handle control should
// continue at when the fiber completes. Returning an empty handle is
// an unrecoverable fault: a completed fiber must name its successor.
type Func func(*Fiber) *Fiber

// A Fiber is a move-only handle: the right to resume one suspended
// fiber. At most one handle references a given suspended fiber at any
// time. Resume operations consume the handle and produce a new one for
// the peer that transferred back; a handle whose fiber has completed
// is empty. The zero value (and nil) is the valid "no fiber" sentinel.
//
// Handles must not be shared: resuming the same handle from two
// goroutines at once is undefined behavior, and the hosting-goroutine
// check behind Resume detects likely-unsafe migration but does not
// prevent races.
type Fiber struct {
	ctx *execContext
}

// New creates a fiber running fn on a default fixed-size stack. The
// fiber is created suspended at its entry point; fn does not run until
// the first resume.
func New(fn Func) (*Fiber, error) {
	return NewWithStack(FixedSizeStack{}, fn)
}

// NewWithStack creates a fiber running fn on a stack supplied by
// alloc. The fiber takes sole ownership of alloc; the region it
// allocates is returned to it exactly once, when the fiber ends or is
// unwound. Allocation failure is reported as an *AllocError and no
// fiber is produced.
func NewWithStack(alloc StackAllocator, fn Func) (*Fiber, error) {
	if fn == nil {
		panic("fiber: nil Func")
	}
	return create(alloc, fn)
}

// Valid reports whether f currently references a suspended fiber.
func (f *Fiber) Valid() bool {
	return f != nil && f.ctx != nil
}

// take consumes the handle, asserting it is non-empty.
func (f *Fiber) take() *execContext {
	if !f.Valid() {
		panic("fiber: use of empty or consumed handle")
	}
	ctx := f.ctx
	f.ctx = nil
	return ctx
}

// stamp records the caller's flow as the fiber's host before a
// transfer in. Resuming adopts the fiber into the resumer's flow,
// whether the resumer is an external goroutine or another fiber.
// External peers have no record and nothing to stamp.
func stamp(ctx *execContext) {
	if ctx.rec != nil {
		ctx.rec.hostFlow = currentFlowID()
	}
}

// wrap turns a transfer result into the handle it denotes. An empty
// peer means the counterpart completed, yielding an empty handle.
func wrap(t transfer) *Fiber {
	return &Fiber{ctx: t.peer}
}

// Resume suspends the caller and transfers control to f's fiber,
// consuming f. It returns when some flow transfers back: either a new
// handle for that flow, or an empty handle if the fiber ran to
// completion. If the fiber last ran on a different goroutine and its
// stack kind forbids migration, Resume fails with ErrInvalidResume and
// f remains valid and resumable from the right goroutine.
func (f *Fiber) Resume() (*Fiber, error) {
	if !f.CanResume() {
		return nil, ErrInvalidResume
	}
	return f.ResumeFromAnyGoroutine(), nil
}

// ResumeWith is Resume with fn injected at the fiber's suspension
// point: fn runs on the fiber's flow, strictly after control has left
// the caller and before the fiber's own code continues. fn receives
// the handle for the (now suspended) caller; the handle it returns is
// what the fiber observes as the result of its suspension, so
// returning a different handle redirects the fiber's continuation.
func (f *Fiber) ResumeWith(fn Func) (*Fiber, error) {
	if !f.CanResume() {
		return nil, ErrInvalidResume
	}
	return f.ResumeFromAnyGoroutineWith(fn), nil
}

// ResumeFromAnyGoroutine is Resume without the hosting-goroutine
// check. It is the caller's claim that migration is safe; correct for
// growable stacks, unchecked otherwise.
func (f *Fiber) ResumeFromAnyGoroutine() *Fiber {
	ctx := f.take()
	stamp(ctx)
	return wrap(ctx.transfer(nil))
}

// ResumeFromAnyGoroutineWith is ResumeWith without the
// hosting-goroutine check.
func (f *Fiber) ResumeFromAnyGoroutineWith(fn Func) *Fiber {
	if fn == nil {
		panic("fiber: nil Func")
	}
	ctx := f.take()
	stamp(ctx)
	return wrap(ctx.transferWith(nil, func(t transfer) transfer {
		ret := fn(wrap(t))
		if ret == nil || ret.ctx == nil {
			return transfer{}
		}
		return transfer{peer: ret.take()}
	}))
}

// CanResume reports whether the caller may Resume f: true if the
// fiber never ran, or is hosted by the caller's flow of control (the
// goroutine that created or last resumed it, or a fiber chain anchored
// there). The check is a probe round trip serviced at the fiber's
// suspension point without running any of its code; f stays valid
// either way.
func (f *Fiber) CanResume() bool {
	p := &probeData{kind: probeHostGoroutine}
	f.probe(p)
	return p.gid == 0 || p.gid == currentFlowID()
}

// CanResumeFromAnyGoroutine reports whether f's stack kind permits
// resuming from any goroutine; true only for growable stacks.
func (f *Fiber) CanResumeFromAnyGoroutine() bool {
	p := &probeData{kind: probeStackKind}
	f.probe(p)
	return p.anywhere
}

func (f *Fiber) probe(p *probeData) {
	ctx := f.take()
	t := ctx.transfer(p)
	f.ctx = t.peer
}

// Move transfers ownership of the referenced fiber to a fresh handle,
// leaving f empty. Moving an empty handle yields an empty handle.
func (f *Fiber) Move() *Fiber {
	if f == nil {
		return &Fiber{}
	}
	ctx := f.ctx
	f.ctx = nil
	return &Fiber{ctx: ctx}
}

// Close tears down a still-suspended fiber. If f is non-empty, the
// fiber is force-unwound at its current suspension point: deferred
// cleanups registered before that point run, in order, and the stack
// region is released before Close returns. Closing an empty handle is
// a no-op. Close always returns nil; the error result exists for
// io.Closer shaped callers.
func (f *Fiber) Close() error {
	if !f.Valid() {
		return nil
	}
	ctx := f.ctx
	f.ctx = nil
	// The unwind signal travels as an injected adapter: it is raised
	// at the fiber's suspension point, unwinds its stack, and the
	// trampoline transfers back here carrying the teardown adapter.
	// The transfer result is the completion sentinel, discarded.
	ctx.transferWith(nil, raiseUnwind)
	return nil
}

// ID returns an identity for the underlying suspended context, usable
// as a map key or for ordering. The identity is stable only while the
// fiber stays suspended: resuming mints a new context. Empty handles
// have identity zero.
func (f *Fiber) ID() uintptr {
	if !f.Valid() {
		return 0
	}
	return f.ctx.id()
}

// Less orders handles by context identity.
func (f *Fiber) Less(other *Fiber) bool {
	return f.ID() < other.ID()
}

// String renders the handle for debugging.
func (f *Fiber) String() string {
	if !f.Valid() {
		return "{not-a-fiber}"
	}
	return fmt.Sprintf("fiber:%#x", f.ctx.id())
}

func (c *execContext) id() uintptr {
	return uintptr(unsafe.Pointer(c))
}
