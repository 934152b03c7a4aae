package fiber

import (
	"fmt"
	"unsafe"
)

const (
	// The frame is placed below the region top, aligned down to a
	// coarse boundary. The gap between frame and usable top keeps the
	// usable top 16-byte aligned.
	recordAlignMask = 0xff
	recordGap       = 64

	minUsableStack = 1024

	frameMagic = 0x6669626572726563 // "fiberrec"
)

// frameHeader is the pointer-free part of a control record, written in
// place at the computed address inside the stack region itself. It
// makes the record's claim on the region physical: teardown verifies
// and clears the magic, so destroying the same region twice trips
// immediately.
type frameHeader struct {
	magic uint64
	size  uint64
}

// A controlRecord tracks everything needed to run and later tear down
// one fiber: the stack region, the allocator that produced it, and the
// fiber's function. It is created once at fiber creation and destroyed
// exactly once, at permanent fiber end. Destruction frees the region
// the frame lives inside of, which is why deallocate only ever runs on
// a flow other than the fiber's own (see the exit adapter).
//
// The pointer-bearing fields live in this heap struct rather than in
// the region: the collector does not scan raw byte regions, so placing
// the closure or allocator there would hide them from it.
type controlRecord struct {
	region     StackRegion
	alloc      StackAllocator
	fn         Func
	frameOff   uintptr // offset of the frame within the region
	usableBase uintptr
	usableTop  uintptr
	migratable bool

	// Flow that last resumed the fiber, zero if it never ran. A flow
	// is a whole transfer chain, identified by the external goroutine
	// anchoring it: a fiber resumed by another fiber inherits the
	// resumer's flow. Advisory: stamped before each transfer in, read
	// by probes after; ordered by the transfers themselves, never
	// locked.
	hostFlow uint64
}

func newControlRecord(region StackRegion, alloc StackAllocator, fn Func) (*controlRecord, error) {
	frameSize := unsafe.Sizeof(frameHeader{})
	if uintptr(region.Size()) < frameSize+recordGap+minUsableStack {
		return nil, fmt.Errorf("fiber: %w: region of %d bytes cannot hold a control record", ErrStackTooSmall, region.Size())
	}

	base := region.Base()
	frame := (region.Top() - frameSize) &^ uintptr(recordAlignMask)
	usableTop := frame - recordGap
	if frame < base || usableTop <= base || usableTop-base < minUsableStack {
		return nil, fmt.Errorf("fiber: %w: region of %d bytes leaves no usable stack", ErrStackTooSmall, region.Size())
	}

	rec := &controlRecord{
		region:     region,
		alloc:      alloc,
		fn:         fn,
		frameOff:   frame - base,
		usableBase: base,
		usableTop:  usableTop,
		migratable: alloc.ResumableAnywhere(),
	}

	hdr := rec.header()
	hdr.magic = frameMagic
	hdr.size = uint64(region.Size())
	return rec, nil
}

func (rec *controlRecord) header() *frameHeader {
	return (*frameHeader)(unsafe.Pointer(&rec.region.mem[rec.frameOff]))
}

// deallocate destroys the record and returns the region to its
// allocator. Must not execute on the fiber's own flow of control.
func (rec *controlRecord) deallocate() {
	hdr := rec.header()
	if hdr.magic != frameMagic {
		panic("fiber: control record destroyed twice")
	}
	hdr.magic = 0

	alloc := rec.alloc
	region := rec.region
	rec.alloc = nil
	rec.fn = nil
	debugf("stack region released: base=%#x size=%d", region.Base(), region.Size())
	alloc.Deallocate(region)
}
