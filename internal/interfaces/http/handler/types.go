package httphandler

import (
	"github.com/gagliardetto/solana-go"
	"github.com/tdex-network/custody-daemon/internal/core/application/vault"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

type amountRequest struct {
	Amount uint64 `json:"amount"`
}

type withdrawRequest struct {
	Owner  *solana.PublicKey `json:"owner,omitempty"`
	Amount uint64            `json:"amount"`
}

type makeEscrowRequest struct {
	Seed    uint64           `json:"seed"`
	TokenA  solana.PublicKey `json:"token_a"`
	TokenB  solana.PublicKey `json:"token_b"`
	AmountA uint64           `json:"amount_a"`
	AmountB uint64           `json:"amount_b"`
}

type escrowRequest struct {
	Maker solana.PublicKey `json:"maker"`
	Seed  uint64           `json:"seed"`
}

type airdropRequest struct {
	Address  solana.PublicKey `json:"address"`
	Lamports uint64           `json:"lamports"`
}

type mintRequest struct {
	Mint   solana.PublicKey `json:"mint"`
	Owner  solana.PublicKey `json:"owner"`
	Amount uint64           `json:"amount"`
}

type webhookRequest struct {
	Event    string `json:"event"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

type VaultResponse struct {
	*vault.VaultInfo
	Withdrawable uint64 `json:"withdrawable"`
}

func newVaultResponse(info *vault.VaultInfo) VaultResponse {
	return VaultResponse{info, info.Withdrawable()}
}

type ReceiptResponse struct {
	ID           string           `json:"id"`
	Escrow       solana.PublicKey `json:"escrow"`
	Maker        solana.PublicKey `json:"maker"`
	Seed         uint64           `json:"seed"`
	Counterparty solana.PublicKey `json:"counterparty"`
	TokenA       solana.PublicKey `json:"token_a"`
	TokenB       solana.PublicKey `json:"token_b"`
	AmountA      uint64           `json:"amount_a"`
	AmountB      uint64           `json:"amount_b"`
	Status       string           `json:"status"`
	ClosedAt     int64            `json:"closed_at"`
}

func newReceiptResponse(r *domain.EscrowReceipt) ReceiptResponse {
	return ReceiptResponse{
		ID:           r.ID.String(),
		Escrow:       r.Escrow,
		Maker:        r.Maker,
		Seed:         r.Seed,
		Counterparty: r.Counterparty,
		TokenA:       r.TokenA,
		TokenB:       r.TokenB,
		AmountA:      r.AmountA,
		AmountB:      r.AmountB,
		Status:       r.Status.String(),
		ClosedAt:     r.ClosedAt,
	}
}

type TokenBalanceResponse struct {
	Owner  solana.PublicKey `json:"owner"`
	Mint   solana.PublicKey `json:"mint"`
	Amount uint64           `json:"amount"`
}

type AirdropResponse struct {
	Address solana.PublicKey `json:"address"`
	Balance uint64           `json:"balance"`
}

type MintResponse struct {
	TokenAccount solana.PublicKey `json:"token_account"`
}

type AddWebhookResponse struct {
	ID string `json:"id"`
}
