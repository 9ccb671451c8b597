package domain

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// EscrowReceipt is the immutable trace of an escrow that reached a terminal
// status. It outlives the escrow record, so that acting on a closed escrow can
// be told apart from acting on one that never existed.
type EscrowReceipt struct {
	ID           uuid.UUID
	Escrow       solana.PublicKey
	Maker        solana.PublicKey
	Seed         uint64
	Counterparty solana.PublicKey
	TokenA       solana.PublicKey
	TokenB       solana.PublicKey
	AmountA      uint64
	AmountB      uint64
	Status       EscrowStatus
	ClosedAt     int64
}

// NewEscrowReceipt returns the receipt for the given escrow closed with
// status by counterparty.
func NewEscrowReceipt(
	escrow *Escrow, status EscrowStatus, counterparty solana.PublicKey,
) *EscrowReceipt {
	return &EscrowReceipt{
		ID:           uuid.New(),
		Escrow:       escrow.Address,
		Maker:        escrow.Maker,
		Seed:         escrow.Seed,
		Counterparty: counterparty,
		TokenA:       escrow.TokenA,
		TokenB:       escrow.TokenB,
		AmountA:      escrow.AmountA,
		AmountB:      escrow.AmountB,
		Status:       status,
		ClosedAt:     time.Now().Unix(),
	}
}
