package fiber

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidResume is returned by Resume and ResumeWith when the
	// fiber last ran hosted by a different goroutine and its stack
	// kind forbids migration. The fiber stays suspended and remains
	// resumable from the hosting goroutine.
	ErrInvalidResume = errors.New("fiber: fiber cannot resume on this goroutine")

	// ErrStackTooSmall is reported at creation when the allocated
	// region cannot hold the control record plus a usable stack.
	ErrStackTooSmall = errors.New("stack region too small")
)

// An AllocError reports a stack allocator failure at fiber creation.
// No fiber is produced and nothing is left behind.
type AllocError struct {
	Err error
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("fiber: stack allocation failed: %v", e.Err)
}

func (e *AllocError) Unwrap() error {
	return e.Err
}
