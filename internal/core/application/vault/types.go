package vault

import (
	"github.com/gagliardetto/solana-go"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

// VaultInfo is the view of a vault returned by every operation.
type VaultInfo struct {
	Owner         solana.PublicKey `json:"owner"`
	State         solana.PublicKey `json:"state"`
	Address       solana.PublicKey `json:"address"`
	StateBump     uint8            `json:"state_bump"`
	VaultBump     uint8            `json:"vault_bump"`
	TotalDeposits uint64           `json:"total_deposits"`
	Balance       uint64           `json:"balance"`
	Reserve       uint64           `json:"reserve"`
}

// Withdrawable returns the part of the balance exceeding the reserve.
func (i VaultInfo) Withdrawable() uint64 {
	if i.Balance <= i.Reserve {
		return 0
	}
	return i.Balance - i.Reserve
}

func (i VaultInfo) vaultState() *domain.VaultState {
	return &domain.VaultState{
		VaultBump:     i.VaultBump,
		StateBump:     i.StateBump,
		Owner:         i.Owner,
		TotalDeposits: i.TotalDeposits,
	}
}
