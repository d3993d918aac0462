// Package buffer provides a bounded, goroutine-safe message buffer with
// blocking Send and Receive and an explicit, one-shot Close that releases
// every blocked caller with ErrClosed.
//
// A Buffer moves through three states: open, closed and destroyed. Close is
// the only way to unblock waiters; Destroy releases storage and is rejected
// while the buffer is still open.
package buffer
