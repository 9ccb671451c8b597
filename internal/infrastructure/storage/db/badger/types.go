package dbbadger

import (
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

// Keys are stored base58 encoded, so that records can be queried by field.

type accountDTO struct {
	Address  string
	Owner    string
	Lamports uint64
	Data     []byte
}

func newAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		Address:  a.Address.String(),
		Owner:    a.Owner.String(),
		Lamports: a.Lamports,
		Data:     a.Data,
	}
}

func (d accountDTO) toDomain() (*domain.Account, error) {
	address, err := solana.PublicKeyFromBase58(d.Address)
	if err != nil {
		return nil, err
	}
	owner, err := solana.PublicKeyFromBase58(d.Owner)
	if err != nil {
		return nil, err
	}
	return &domain.Account{
		Address:  address,
		Owner:    owner,
		Lamports: d.Lamports,
		Data:     d.Data,
	}, nil
}

type receiptDTO struct {
	ID           string
	Escrow       string
	Maker        string
	Seed         uint64
	Counterparty string
	TokenA       string
	TokenB       string
	AmountA      uint64
	AmountB      uint64
	Status       uint8
	ClosedAt     int64
}

func newReceiptDTO(r *domain.EscrowReceipt) receiptDTO {
	return receiptDTO{
		ID:           r.ID.String(),
		Escrow:       r.Escrow.String(),
		Maker:        r.Maker.String(),
		Seed:         r.Seed,
		Counterparty: r.Counterparty.String(),
		TokenA:       r.TokenA.String(),
		TokenB:       r.TokenB.String(),
		AmountA:      r.AmountA,
		AmountB:      r.AmountB,
		Status:       uint8(r.Status),
		ClosedAt:     r.ClosedAt,
	}
}

func (d receiptDTO) toDomain() (*domain.EscrowReceipt, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	keys := make([]solana.PublicKey, 0, 5)
	for _, k := range []string{d.Escrow, d.Maker, d.Counterparty, d.TokenA, d.TokenB} {
		key, err := solana.PublicKeyFromBase58(k)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return &domain.EscrowReceipt{
		ID:           id,
		Escrow:       keys[0],
		Maker:        keys[1],
		Seed:         d.Seed,
		Counterparty: keys[2],
		TokenA:       keys[3],
		TokenB:       keys[4],
		AmountA:      d.AmountA,
		AmountB:      d.AmountB,
		Status:       domain.EscrowStatus(d.Status),
		ClosedAt:     d.ClosedAt,
	}, nil
}
