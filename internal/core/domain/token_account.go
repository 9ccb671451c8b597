package domain

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
)

const tokenAccountInitialized = 1

// TokenAccount is the 165 bytes layout of a token account. Only Mint,
// Authority, Amount and State are used by the ledger, the remaining fields are
// kept so that the layout matches the one of the token program.
type TokenAccount struct {
	Mint                 solana.PublicKey
	Authority            solana.PublicKey
	Amount               uint64
	DelegateOption       [4]byte
	Delegate             solana.PublicKey
	State                uint8
	IsNativeOption       [4]byte
	IsNative             uint64
	DelegatedAmount      uint64
	CloseAuthorityOption [4]byte
	CloseAuthority       solana.PublicKey
}

// NewTokenAccount returns an initialized, empty token account for the given
// mint, controlled by authority.
func NewTokenAccount(mint, authority solana.PublicKey) *TokenAccount {
	return &TokenAccount{
		Mint:      mint,
		Authority: authority,
		State:     tokenAccountInitialized,
	}
}

// DecodeTokenAccount parses a token account layout.
func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	if len(data) != TokenAccountSize {
		return nil, fmt.Errorf(
			"%w: token account size, expected: %d, actual: %d",
			ErrInvalidAccountData, TokenAccountSize, len(data),
		)
	}
	account := &TokenAccount{}
	if err := binary.Read(
		bytes.NewReader(data), binary.LittleEndian, account,
	); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccountData, err)
	}
	if account.State != tokenAccountInitialized {
		return nil, fmt.Errorf("%w: token account is not initialized", ErrInvalidAccountData)
	}
	return account, nil
}

// Encode serializes the token account.
func (t *TokenAccount) Encode() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, TokenAccountSize))
	// writing a fixed size struct into a buffer never fails.
	_ = binary.Write(buf, binary.LittleEndian, t)
	return buf.Bytes()
}

// Deposit credits the token account.
func (t *TokenAccount) Deposit(amount uint64) error {
	if amount > math.MaxUint64-t.Amount {
		return ErrAmountOverflow
	}
	t.Amount += amount
	return nil
}

// Withdraw debits the token account.
func (t *TokenAccount) Withdraw(amount uint64) error {
	if amount > t.Amount {
		return ErrInsufficientBalance
	}
	t.Amount -= amount
	return nil
}

// AssociatedTokenAddress returns the address of the token account holding
// mint on behalf of owner.
func AssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrDerivationExhausted, err)
	}
	return addr, nil
}
