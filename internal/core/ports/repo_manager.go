package ports

import (
	"context"

	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

// RepoManager gives access to the repositories and runs groups of read/write
// operations against them as a single all-or-nothing unit.
type RepoManager interface {
	AccountRepository() domain.AccountRepository
	ReceiptRepository() domain.ReceiptRepository

	// RunTransaction runs handler within a transaction carried by the context
	// passed to it. Changes are committed only if handler returns no error.
	// A commit conflicting with a concurrent transaction fails with
	// domain.ErrStaleState.
	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) (interface{}, error),
	) (interface{}, error)

	Close()
}
