package ports

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

// CreateAccountArgs are the arguments to allocate a program account. Proof is
// required when Address is derived.
type CreateAccountArgs struct {
	Payer   domain.Authority
	Address solana.PublicKey
	Owner   solana.PublicKey
	Data    []byte
	Proof   *domain.AuthorityProof
}

// Runtime is the execution environment: storage reservation and allocation of
// program accounts.
type Runtime interface {
	// MinimumBalance returns the reserve for an account with space bytes of
	// data.
	MinimumBalance(space uint64) uint64
	// CreateAccount allocates a new account funded with its reserve by payer.
	CreateAccount(ctx context.Context, args CreateAccountArgs) error
	// CloseProgramAccount frees an account owned by program and moves its
	// lamports to destination. It returns the amount reclaimed.
	CloseProgramAccount(
		ctx context.Context, address, program, destination solana.PublicKey,
	) (uint64, error)
}

// TransferArgs are the arguments of a transfer. For the native asset From and
// To are wallets, otherwise they are token accounts holding Asset.
type TransferArgs struct {
	Asset     solana.PublicKey
	From      solana.PublicKey
	To        solana.PublicKey
	Authority domain.Authority
	Amount    uint64
}

// CloseAccountArgs are the arguments to close an empty token account.
type CloseAccountArgs struct {
	Account     solana.PublicKey
	Destination solana.PublicKey
	Authority   domain.Authority
}

// OpenTokenAccountArgs are the arguments to open the associated token account
// of Owner for Mint. With Idempotent, an existing account for the same owner
// and mint is not an error.
type OpenTokenAccountArgs struct {
	Payer      domain.Authority
	Owner      solana.PublicKey
	Mint       solana.PublicKey
	Idempotent bool
}

// TokenTransfer is the asset custody service. It is the only way value moves
// between accounts.
type TokenTransfer interface {
	Transfer(ctx context.Context, args TransferArgs) error
	CloseAccount(ctx context.Context, args CloseAccountArgs) (uint64, error)
	OpenTokenAccount(
		ctx context.Context, args OpenTokenAccountArgs,
	) (solana.PublicKey, error)
}

// Ledger bundles the execution environment and the asset custody service with
// the faucet and balance queries.
type Ledger interface {
	Runtime
	TokenTransfer

	Airdrop(ctx context.Context, address solana.PublicKey, lamports uint64) error
	MintTo(
		ctx context.Context, mint, owner solana.PublicKey, amount uint64,
	) (solana.PublicKey, error)
	Balance(ctx context.Context, address solana.PublicKey) (uint64, error)
	TokenBalance(
		ctx context.Context, owner, mint solana.PublicKey,
	) (uint64, error)
}
