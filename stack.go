package fiber

import "unsafe"

// A StackRegion describes one raw stack region. It is owned by the
// allocator that produced it until a control record claims it, and by
// that record until teardown.
type StackRegion struct {
	mem []byte
}

// Base returns the address of the lowest byte of the region.
func (r StackRegion) Base() uintptr {
	if len(r.mem) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&r.mem[0]))
}

// Top returns the address one past the highest byte of the region.
func (r StackRegion) Top() uintptr {
	return r.Base() + uintptr(len(r.mem))
}

// Size returns the region size in bytes.
func (r StackRegion) Size() int {
	return len(r.mem)
}

// A StackAllocator supplies and reclaims stack regions. Allocators are
// movable but not shareable: a fiber takes sole ownership of the
// allocator instance it is created with.
//
// ResumableAnywhere reports whether stacks from this allocator behave
// like segmented/growable stacks, i.e. whether a fiber suspended on
// one may be resumed from a different goroutine than the one that last
// resumed it. The flag is a declared capability, not something probed
// from the stack at runtime.
type StackAllocator interface {
	Allocate() (StackRegion, error)
	Deallocate(StackRegion)
	ResumableAnywhere() bool
}

const (
	// DefaultStackSize is the region size used when an allocator is
	// constructed with a zero size.
	DefaultStackSize = 128 * 1024

	minGrowableSize = 16 * 1024
)

// FixedSizeStack allocates one fixed block per fiber. Fibers on fixed
// stacks must be resumed from the goroutine that last resumed them.
type FixedSizeStack struct {
	Size int
}

// Allocate returns a new fixed-size region.
func (s FixedSizeStack) Allocate() (StackRegion, error) {
	size := s.Size
	if size <= 0 {
		size = DefaultStackSize
	}
	return StackRegion{mem: make([]byte, size)}, nil
}

// Deallocate releases the region. The backing memory is reclaimed by
// the garbage collector once the last reference drops.
func (s FixedSizeStack) Deallocate(StackRegion) {}

// ResumableAnywhere reports false: fixed blocks do not migrate.
func (s FixedSizeStack) ResumableAnywhere() bool { return false }

// GrowableStack allocates a small initial region that is allowed to
// grow as linked chunks. Growth is managed by the runtime; the region
// held here hosts the control record and anchors ownership. Fibers on
// growable stacks may be resumed from any goroutine.
type GrowableStack struct {
	Size int
}

// Allocate returns the initial chunk of a growable stack.
func (s GrowableStack) Allocate() (StackRegion, error) {
	size := s.Size
	if size <= 0 {
		size = minGrowableSize
	}
	return StackRegion{mem: make([]byte, size)}, nil
}

// Deallocate releases the region.
func (s GrowableStack) Deallocate(StackRegion) {}

// ResumableAnywhere reports true.
func (s GrowableStack) ResumableAnywhere() bool { return true }
