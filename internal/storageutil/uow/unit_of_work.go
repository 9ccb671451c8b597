package uow

import (
	"context"
	"fmt"
)

// Transactional begins a transaction
type Transactional interface {
	Begin() (Tx, error)
}

// Tx represents an all-or-nothing transaction, by committing or rolling back
// a set of read/write operations
type Tx interface {
	Commit() error
	Rollback() error
}

// ContextProvider returns the key under which the transaction of a
// repository is stored in the context. Repositories sharing the same key
// share the same transaction.
type ContextProvider interface {
	ContextKey() interface{}
}

// UnitOfWork allows to run multiple transactions as one
type UnitOfWork struct {
	repositories []Transactional
}

// NewUnitOfWork returns a new UnitOfWork with the given Transaction interfaces
func NewUnitOfWork(repositories ...Transactional) *UnitOfWork {
	return &UnitOfWork{repositories}
}

// Run begins a transaction for every repository and executes fn with a
// context carrying all of them. The transactions are either all committed if
// fn succeeds, or all rolled back if fn returns an error or panics.
func (u *UnitOfWork) Run(
	ctx context.Context, fn func(ctx context.Context) error,
) (err error) {
	txs := make([]Tx, 0, len(u.repositories))

	defer func() {
		if err == nil {
			return
		}
		for _, tx := range txs {
			if _err := tx.Rollback(); _err != nil {
				err = _err
				return
			}
		}
	}()

	defer func() {
		if err != nil {
			return
		}
		for _, tx := range txs {
			if _err := tx.Commit(); _err != nil {
				err = _err
				return
			}
		}
	}()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("recovered: %v", rec)
		}
	}()

	keys := make(map[interface{}]struct{})
	for _, r := range u.repositories {
		var key interface{} = r
		if cp, ok := r.(ContextProvider); ok {
			key = cp.ContextKey()
		}
		if _, ok := keys[key]; ok {
			continue
		}

		tx, err := r.Begin()
		if err != nil {
			return err
		}
		keys[key] = struct{}{}
		ctx = context.WithValue(ctx, key, tx)
		txs = append(txs, tx)
	}

	return fn(ctx)
}
