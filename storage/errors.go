package storage

import "fmt"

// InitError reports that the backing storage could not be opened or its
// schema could not be created. Callers treat it as non-fatal at process
// start; the store heals lazily on first use.
type InitError struct {
	Err error
}

func (e *InitError) Error() string { return "storage init: " + e.Err.Error() }
func (e *InitError) Unwrap() error { return e.Err }

// ReadError reports an I/O failure during a lookup. Absence of a row is never
// a ReadError.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("storage read (%s): %v", e.Op, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports an I/O failure during an insert or update.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("storage write (%s): %v", e.Op, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// DuplicateChannelError reports a create for a channel ID that already has a
// record. The unique constraint arbitrates concurrent creates: the loser of a
// race receives this error.
type DuplicateChannelError struct {
	ChannelID string
}

func (e *DuplicateChannelError) Error() string {
	return "ticket record already exists for channel " + e.ChannelID
}
