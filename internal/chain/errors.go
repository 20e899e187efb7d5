package chain

import "fmt"

// ReadError indicates a failed read of on-chain streak state. Both
// sub-reads must succeed; a partial result is never returned.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("chain read: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError covers wallet signature rejection, broadcast failure, reverts
// and confirmation timeouts. Callers do not distinguish further.
type WriteError struct {
	Stage string // "pack", "submit" or "confirm"
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("chain write (%s): %v", e.Stage, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
