// Package fiber provides a stackful, symmetric-transfer coroutine
// primitive: a way to suspend the current flow of control and later
// resume it exactly where it left off, with no scheduler involved.
//
// A fiber is created with New (or NewWithStack), which allocates a
// stack region, embeds a control record in it, and returns a *Fiber
// handle. The handle is the right to resume the suspended fiber, and
// it is move-only: resuming consumes the handle and yields a new one
// for whichever flow suspended in exchange. Control transfers are
// strictly symmetric: handle.Resume() on one side pairs with
// handle.Resume() on the other, until the fiber's function returns
// the handle it wants control to continue at, at which point the
// fiber's stack is torn down on the destination's side.
//
// Fibers are cooperative. Exactly one of the two flows involved in a
// transfer executes at any instant, and suspension happens only at
// explicit resume call sites.
// Independent fiber chains may run on separate goroutines, but a
// single handle carries no synchronization: the hosting-goroutine
// check behind Resume is advisory diagnostics, not a lock.
//
// Closing a still-suspended handle force-unwinds the fiber: deferred
// cleanups registered before its last suspension point run, then the
// stack region is released. A fiber abandoned without Close leaks its
// goroutine and stack region.
package fiber
