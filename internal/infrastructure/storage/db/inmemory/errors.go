package inmemory

import "errors"

var (
	// ErrTxClosed is returned when writing within a committed or rolled back
	// transaction.
	ErrTxClosed = errors.New("transaction is closed")
)
