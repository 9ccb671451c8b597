package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyInitialized is returned when creating an account at a derived
	// address that is already allocated.
	ErrAlreadyInitialized = errors.New("account already initialized")
	// ErrNotFound is returned when operating on an account that does not exist.
	ErrNotFound = errors.New("account not found")
	// ErrUnauthorized is returned when the caller identity does not match the
	// recorded owner/maker, or when an authority does not control an account.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInsufficientBalance is returned when an account cannot cover a debit.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidAmount is returned for zero or otherwise degenerate amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrDerivationExhausted is returned when no bump in the scanned range
	// yields a valid derived address.
	ErrDerivationExhausted = errors.New("unable to find a valid derived address")
	// ErrStaleState is returned when a state machine precondition no longer
	// holds, ie. acting on an escrow that already reached a terminal state.
	ErrStaleState = errors.New("stale state")
)

var (
	// ErrAccountNotFound is returned by repositories for unknown addresses.
	ErrAccountNotFound = fmt.Errorf("%w: unknown address", ErrNotFound)
	// ErrAccountAlreadyExists ...
	ErrAccountAlreadyExists = fmt.Errorf("%w: address in use", ErrAlreadyInitialized)
	// ErrVaultNotFound is returned when the owner has no vault state.
	ErrVaultNotFound = fmt.Errorf("%w: vault is not initialized", ErrNotFound)
	// ErrVaultAlreadyInitialized ...
	ErrVaultAlreadyInitialized = fmt.Errorf("%w: vault", ErrAlreadyInitialized)
	// ErrEscrowNotFound ...
	ErrEscrowNotFound = fmt.Errorf("%w: escrow does not exist", ErrNotFound)
	// ErrEscrowAlreadyExists is returned when a maker reuses the seed of a live
	// escrow.
	ErrEscrowAlreadyExists = fmt.Errorf("%w: escrow seed in use", ErrAlreadyInitialized)
	// ErrEscrowClosed is returned when taking or refunding a taken/refunded
	// escrow.
	ErrEscrowClosed = fmt.Errorf("%w: escrow is already closed", ErrStaleState)
	// ErrAuthorityMismatch is returned by the ledger when the given authority
	// does not control the source account.
	ErrAuthorityMismatch = fmt.Errorf("%w: authority does not control account", ErrUnauthorized)
	// ErrNotOwner is returned when the caller is not the recorded owner/maker.
	ErrNotOwner = fmt.Errorf("%w: caller is not the owner", ErrUnauthorized)
	// ErrReserveViolation is returned when a withdrawal would take a vault
	// below its reserve minimum.
	ErrReserveViolation = fmt.Errorf("%w: vault reserve minimum", ErrInsufficientBalance)
	// ErrAmountOverflow ...
	ErrAmountOverflow = fmt.Errorf("%w: amount overflows", ErrInvalidAmount)
)

var (
	// ErrAssetMismatch is returned when the token accounts of a transfer do
	// not hold the requested asset.
	ErrAssetMismatch = errors.New("asset mismatch")
	// ErrUnsupportedAsset is returned when the native asset is used where a
	// token mint is expected. Lamports are never held in token accounts.
	ErrUnsupportedAsset = fmt.Errorf("%w: native asset is not a token", ErrAssetMismatch)
	// ErrAccountNotEmpty is returned when closing a token account with a
	// non-zero balance.
	ErrAccountNotEmpty = errors.New("account balance must be zero to be closed")
	// ErrInvalidAccountData is returned when an account's data does not decode
	// to the expected layout.
	ErrInvalidAccountData = errors.New("invalid account data")
	// ErrInvalidAccountOwner is returned when an account is not owned by the
	// program expected to operate on it.
	ErrInvalidAccountOwner = errors.New("invalid account owner")
	// ErrInvalidSeeds is returned when derivation seeds exceed the allowed
	// number or length.
	ErrInvalidSeeds = errors.New("invalid derivation seeds")
)
