package fiber

// A probe is a side-effect-free resume cycle: it is carried to a
// suspended context as the transfer payload, answered in place at the
// suspension point by the await loop, and transferred straight back.
// User code never runs while a probe is serviced.
type probeKind uint8

const (
	// Which goroutine hosts the suspended flow.
	probeHostGoroutine probeKind = iota
	// Whether the flow's stack kind permits cross-goroutine resume.
	probeStackKind
)

type probeData struct {
	kind     probeKind
	gid      uint64
	anywhere bool
}

// serve writes the answer for the flow suspended where the probe
// arrived. rec is that flow's control record, nil for external flows
// (plain goroutines parked inside a resume call).
func (p *probeData) serve(rec *controlRecord) {
	switch p.kind {
	case probeHostGoroutine:
		if rec != nil {
			p.gid = rec.hostFlow // zero: never ran, unset
		} else {
			p.gid = goroutineID()
		}
	case probeStackKind:
		p.anywhere = rec != nil && rec.migratable
	}
}
