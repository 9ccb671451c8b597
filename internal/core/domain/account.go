package domain

import (
	"math"

	"github.com/gagliardetto/solana-go"
)

// Account is the entity stored in the account registry. Wallets and native
// holding accounts are owned by the system program and carry no data, token
// accounts are owned by the token program, and vault/escrow records are owned
// by the program that created them.
type Account struct {
	Address  solana.PublicKey
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// NewSystemAccount returns an empty, system owned account for the given
// address.
func NewSystemAccount(address solana.PublicKey) *Account {
	return &Account{Address: address, Owner: SystemProgramID}
}

// IsSystemOwned returns whether the account can be debited with a plain
// lamports transfer.
func (a *Account) IsSystemOwned() bool {
	return a.Owner.Equals(SystemProgramID) && len(a.Data) <= 0
}

// IsOwnedBy returns whether the account's data belongs to the given program.
func (a *Account) IsOwnedBy(program solana.PublicKey) bool {
	return a.Owner.Equals(program)
}

// Credit adds lamports to the account.
func (a *Account) Credit(lamports uint64) error {
	if lamports > math.MaxUint64-a.Lamports {
		return ErrAmountOverflow
	}
	a.Lamports += lamports
	return nil
}

// Debit removes lamports from the account.
func (a *Account) Debit(lamports uint64) error {
	if lamports > a.Lamports {
		return ErrInsufficientBalance
	}
	a.Lamports -= lamports
	return nil
}

// TokenAccount decodes the account's data as a token account.
func (a *Account) TokenAccount() (*TokenAccount, error) {
	if !a.IsOwnedBy(TokenProgramID) {
		return nil, ErrInvalidAccountOwner
	}
	return DecodeTokenAccount(a.Data)
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	cp := *a
	if a.Data != nil {
		cp.Data = append([]byte(nil), a.Data...)
	}
	return &cp
}
