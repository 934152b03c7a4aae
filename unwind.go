package fiber

import (
	"fmt"
	"runtime/debug"
)

// forcedUnwind is the internal cancellation signal. It is raised at an
// abandoned fiber's suspension point, unwinds that fiber's stack
// (running deferred cleanups on the way), and is intercepted by the
// entry trampoline, never by callers. peer carries the destination
// control returns to once the unwind completes.
type forcedUnwind struct {
	peer *execContext
}

// raiseUnwind is the adapter injected by Close: it raises the signal
// on the target's flow, at its suspension point.
func raiseUnwind(t transfer) transfer {
	panic(&forcedUnwind{peer: t.peer})
}

type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprintf("%v", p.value)
}

func (p *panicError) ErrorWithStack() string {
	return fmt.Sprintf("%v\n\n%s", p.value, p.stack)
}

func (p *panicError) Unwrap() error {
	err, ok := p.value.(error)
	if !ok {
		return nil
	}
	return err
}

func newPanicError(v any) error {
	if err, ok := v.(*panicError); ok {
		return err
	}
	return &panicError{
		value: v,
		stack: debug.Stack(),
	}
}
