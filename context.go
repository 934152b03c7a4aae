package fiber

// An execContext represents one paused (or not yet started) flow of
// control. Contexts are one-shot: parking mints a fresh context, and a
// context that has been transferred to must never be targeted again.
//
// The switch itself is a strict hand-off between two goroutines. The
// sender delivers {peer, data, adapter} to the target's channel and
// immediately parks on the freshly minted peer; the target wakes at
// its own park site. No user code runs on both sides at once.
type execContext struct {
	resume chan transfer
	rec    *controlRecord // owning fiber's record; nil for external flows
}

// A transfer is the value carried across a context switch. data is
// interpreted by convention: nil for a plain resume, *probeData for a
// metadata probe, or *controlRecord for the creation bootstrap. An
// empty peer is the completion sentinel: the flow that switched away
// no longer exists.
type transfer struct {
	peer    *execContext
	data    any
	adapter adapterFunc
}

// An adapterFunc runs on the destination goroutine, at the
// destination's suspension point, before the destination's own code
// continues. Its return value replaces the transfer the destination
// observes. The teardown adapter frees the finished fiber's record
// here; the resume-with-injection adapter runs user code here.
type adapterFunc func(transfer) transfer

func newContext(rec *controlRecord) *execContext {
	return &execContext{resume: make(chan transfer), rec: rec}
}

// transfer suspends the calling flow, switches to c, and returns when
// some later transfer targets the context parked here.
func (c *execContext) transfer(data any) transfer {
	return c.send(data, nil)
}

// transferWith is transfer with fn injected at c's suspension point.
func (c *execContext) transferWith(data any, fn adapterFunc) transfer {
	return c.send(data, fn)
}

func (c *execContext) send(data any, fn adapterFunc) transfer {
	self := newContext(currentRecord())
	c.resume <- transfer{peer: self, data: data, adapter: fn}
	return self.await()
}

// await parks until resumed. Injected adapters run first, then probes
// are serviced in place, without waking the parked flow: the probe is
// answered, a fresh context is parked, and the asker gets it back.
// Only a plain resume returns to the caller.
func (c *execContext) await() transfer {
	self := c
	for {
		t := <-self.resume
		for t.adapter != nil {
			fn := t.adapter
			t.adapter = nil
			t = fn(t)
		}
		p, ok := t.data.(*probeData)
		if !ok {
			return t
		}
		p.serve(self.rec)
		self = newContext(self.rec)
		t.peer.resume <- transfer{peer: self}
	}
}
