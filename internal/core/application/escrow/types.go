package escrow

import (
	"github.com/gagliardetto/solana-go"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

// EscrowInfo is the view of an escrow. Seed is nil for listed escrows since
// the record does not store it.
type EscrowInfo struct {
	Address        solana.PublicKey `json:"address"`
	Maker          solana.PublicKey `json:"maker"`
	Seed           *uint64          `json:"seed,omitempty"`
	TokenA         solana.PublicKey `json:"token_a"`
	TokenB         solana.PublicKey `json:"token_b"`
	AmountA        uint64           `json:"amount_a"`
	AmountB        uint64           `json:"amount_b"`
	Bump           uint8            `json:"bump"`
	Holding        solana.PublicKey `json:"holding"`
	HoldingBalance uint64           `json:"holding_balance"`
	Status         string           `json:"status"`
}

// MakeArgs are the terms of a new escrow.
type MakeArgs struct {
	Seed    uint64
	TokenA  solana.PublicKey
	TokenB  solana.PublicKey
	AmountA uint64
	AmountB uint64
}

func newEscrowInfo(
	escrow *domain.Escrow, holding solana.PublicKey, holdingBalance uint64,
	withSeed bool,
) *EscrowInfo {
	info := &EscrowInfo{
		Address:        escrow.Address,
		Maker:          escrow.Maker,
		TokenA:         escrow.TokenA,
		TokenB:         escrow.TokenB,
		AmountA:        escrow.AmountA,
		AmountB:        escrow.AmountB,
		Bump:           escrow.Bump,
		Holding:        holding,
		HoldingBalance: holdingBalance,
		Status:         domain.EscrowCreated.String(),
	}
	if withSeed {
		seed := escrow.Seed
		info.Seed = &seed
	}
	return info
}

func escrowInfoFromReceipt(receipt *domain.EscrowReceipt) *EscrowInfo {
	seed := receipt.Seed
	return &EscrowInfo{
		Address: receipt.Escrow,
		Maker:   receipt.Maker,
		Seed:    &seed,
		TokenA:  receipt.TokenA,
		TokenB:  receipt.TokenB,
		AmountA: receipt.AmountA,
		AmountB: receipt.AmountB,
		Status:  receipt.Status.String(),
	}
}
