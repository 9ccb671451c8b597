package domain

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// AccountRepository is the abstraction for any kind of database intended to
// persist the registry of accounts keyed by address.
type AccountRepository interface {
	// GetAccount returns the account at the given address or
	// ErrAccountNotFound.
	GetAccount(ctx context.Context, address solana.PublicKey) (*Account, error)
	// AddAccount allocates a new account. It fails with
	// ErrAccountAlreadyExists if the address is taken.
	AddAccount(ctx context.Context, account *Account) error
	// UpdateAccount allows to commit multiple changes to the same account in a
	// transactional way.
	UpdateAccount(
		ctx context.Context,
		address solana.PublicKey,
		updateFn func(a *Account) (*Account, error),
	) error
	// DeleteAccount frees the given address.
	DeleteAccount(ctx context.Context, address solana.PublicKey) error
	// GetAccountsByOwner returns all accounts owned by the given program.
	GetAccountsByOwner(
		ctx context.Context, owner solana.PublicKey,
	) ([]*Account, error)
}

// ReceiptRepository persists the receipts of closed escrows.
type ReceiptRepository interface {
	AddReceipt(ctx context.Context, receipt *EscrowReceipt) error
	// GetReceiptsForEscrow returns the receipts of the escrow at the given
	// address, most recent first. An address can be reused once closed.
	GetReceiptsForEscrow(
		ctx context.Context, escrow solana.PublicKey,
	) ([]*EscrowReceipt, error)
	GetAllReceipts(ctx context.Context) ([]*EscrowReceipt, error)
	GetReceiptsForMaker(
		ctx context.Context, maker solana.PublicKey,
	) ([]*EscrowReceipt, error)
}
