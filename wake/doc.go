// Package wake provides a single-slot, edge-triggered notification used to
// cut a polling loop's sleep short.
//
// Any goroutine may Post. One goroutine (the loop that owns the Signal) calls
// Wait with an upper bound on how long it is prepared to sleep. Several Posts
// issued before the next Wait collapse into one pending wake; the Signal does
// not count them.
//
// # Basic Usage
//
//	sig := wake.New()
//
//	// From a callback goroutine:
//	sig.Post()
//
//	// From the loop:
//	switch sig.Wait(next) {
//	case wake.Woken:
//	    // something changed, poll again now
//	case wake.TimedOut:
//	    // the interval elapsed
//	}
//
// A Post that happens before a Wait begins is never lost: that Wait returns
// Woken immediately.
package wake
