package fiber

import (
	"runtime"
	"sync"
)

// goroutineID returns the current goroutine's ID, parsed from the
// header line of its stack dump.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}

// records maps a fiber's dedicated goroutine to its control record, so
// any suspension point can identify the flow it belongs to: contexts
// minted while a fiber transfers away must carry that fiber's record
// for probe service and affinity stamping. External goroutines have no
// entry and park as record-less flows.
var records sync.Map // uint64 -> *controlRecord

func registerRecord(gid uint64, rec *controlRecord) {
	records.Store(gid, rec)
}

func unregisterRecord(gid uint64) {
	records.Delete(gid)
}

// currentRecord returns the control record of the fiber hosted by the
// calling goroutine, or nil for an external flow.
func currentRecord() *controlRecord {
	if rec, ok := records.Load(goroutineID()); ok {
		return rec.(*controlRecord)
	}
	return nil
}

// currentFlowID identifies the flow of control executing the caller.
// An external goroutine anchors its own flow; a fiber belongs to the
// flow that is currently hosting it, however long the transfer chain
// in between.
func currentFlowID() uint64 {
	if rec := currentRecord(); rec != nil {
		return rec.hostFlow
	}
	return goroutineID()
}
