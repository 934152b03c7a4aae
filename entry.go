package fiber

// create allocates a stack region, embeds the control record, boots
// the fiber's flow of control, and performs the bootstrap handshake.
// On return the fiber is parked at its entry point, ready to run fn on
// first resume. Allocation failure propagates with nothing left
// behind.
func create(alloc StackAllocator, fn Func) (*Fiber, error) {
	region, err := alloc.Allocate()
	if err != nil {
		return nil, &AllocError{Err: err}
	}
	rec, err := newControlRecord(region, alloc, fn)
	if err != nil {
		alloc.Deallocate(region)
		return nil, err
	}

	c0 := newContext(rec)
	go fiberEntry(c0)

	// Bootstrap: carry the record pointer in, so the trampoline can
	// capture it before yielding back. The context handed back is the
	// new fiber, suspended at its entry point.
	t := c0.transfer(rec)
	debugf("fiber created: id=%#x stack=%d migratable=%t", t.peer.id(), region.Size(), rec.migratable)
	return &Fiber{ctx: t.peer}, nil
}

// fiberEntry is the entry trampoline: the first (and outermost) frame
// of every fiber. It captures the record from the bootstrap transfer,
// runs the fiber body under the forced-unwind guard, and finally
// transfers to the chosen destination with an adapter that destroys
// the record. The destruction runs on the destination's flow, after
// control has left this one for good, which is what makes freeing the
// stack the trampoline lives on safe. The trampoline never resumes
// again past that point.
func fiberEntry(c0 *execContext) {
	t := <-c0.resume
	rec := t.data.(*controlRecord)

	gid := goroutineID()
	registerRecord(gid, rec)
	defer unregisterRecord(gid)

	next := runFiber(rec, t.peer)
	if next == nil {
		panic("fiber: fiber terminated without a continuation")
	}
	next.resume <- transfer{adapter: exitAdapter(rec)}
}

// runFiber completes the bootstrap handshake, waits out probe traffic,
// runs the fiber's function, and reports the continuation context.
// A forced unwind delivered at any suspension point inside fn is
// intercepted here, after fn's own deferred cleanups have run, and its
// carried destination becomes the continuation. Any other panic
// belongs to the user and is fatal: it is re-raised with its captured
// stack and takes the process down.
func runFiber(rec *controlRecord, creator *execContext) (next *execContext) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		fu, ok := r.(*forcedUnwind)
		if !ok {
			// Uncaught error from the fiber body: no cross-fiber
			// marshaling exists, so this terminates the process.
			perr := newPanicError(r).(*panicError)
			debugf("fiber body panicked: %s", perr.ErrorWithStack())
			panic(perr)
		}
		debugf("fiber unwound: id=%#x", fu.peer.id())
		next = fu.peer
	}()

	// Handshake: yield back to the creator with a null payload. The
	// await behind this transfer also services any probes that arrive
	// before the first real resume, without running fn.
	t := creator.transfer(nil)

	ret := rec.fn(&Fiber{ctx: t.peer})
	if ret == nil || ret.ctx == nil {
		panic("fiber: fiber function returned an empty continuation")
	}
	return ret.take()
}

// exitAdapter destroys rec at the destination's suspension point and
// delivers the completion sentinel: the destination observes an empty
// peer, meaning the fiber that transferred to it no longer exists.
func exitAdapter(rec *controlRecord) adapterFunc {
	return func(transfer) transfer {
		rec.deallocate()
		return transfer{}
	}
}
