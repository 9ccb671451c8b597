package dbbadger

import "errors"

var (
	// ErrReadOnlyTx is returned when writing within a read-only transaction.
	ErrReadOnlyTx = errors.New("cannot write in read-only transaction")
)
