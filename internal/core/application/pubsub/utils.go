package pubsub

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

func getVaultPayload(
	vault *domain.VaultState, stateAddress, vaultAddress solana.PublicKey,
) map[string]interface{} {
	return map[string]interface{}{
		"owner":          vault.Owner.String(),
		"state":          stateAddress.String(),
		"address":        vaultAddress.String(),
		"total_deposits": vault.TotalDeposits,
	}
}

func getEscrowPayload(escrow *domain.Escrow) map[string]interface{} {
	return map[string]interface{}{
		"address":  escrow.Address.String(),
		"maker":    escrow.Maker.String(),
		"seed":     escrow.Seed,
		"token_a":  escrow.TokenA.String(),
		"token_b":  escrow.TokenB.String(),
		"amount_a": escrow.AmountA,
		"amount_b": escrow.AmountB,
	}
}

func getReceiptPayload(receipt *domain.EscrowReceipt) map[string]interface{} {
	return map[string]interface{}{
		"id":               receipt.ID.String(),
		"escrow":           receipt.Escrow.String(),
		"maker":            receipt.Maker.String(),
		"seed":             receipt.Seed,
		"counterparty":     receipt.Counterparty.String(),
		"token_a":          receipt.TokenA.String(),
		"token_b":          receipt.TokenB.String(),
		"amount_a":         receipt.AmountA,
		"amount_b":         receipt.AmountB,
		"status":           receipt.Status.String(),
		"closed_timestamp": receipt.ClosedAt,
		"closed_date":      time.Unix(receipt.ClosedAt, 0).Format(time.RFC3339),
	}
}
