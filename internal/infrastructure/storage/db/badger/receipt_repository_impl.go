package dbbadger

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type receiptRepositoryImpl struct {
	store *badgerhold.Store
}

// NewReceiptRepositoryImpl returns a badger implementation of the
// domain.ReceiptRepository.
func NewReceiptRepositoryImpl(store *badgerhold.Store) domain.ReceiptRepository {
	return &receiptRepositoryImpl{store}
}

func (r *receiptRepositoryImpl) AddReceipt(
	ctx context.Context, receipt *domain.EscrowReceipt,
) error {
	dto := newReceiptDTO(receipt)

	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxInsert(tx, dto.ID, dto)
	} else {
		err = r.store.Insert(dto.ID, dto)
	}
	return mapWriteErr(err)
}

func (r *receiptRepositoryImpl) GetReceiptsForEscrow(
	ctx context.Context, escrow solana.PublicKey,
) ([]*domain.EscrowReceipt, error) {
	query := badgerhold.Where("Escrow").Eq(escrow.String())
	return r.findReceipts(ctx, query)
}

func (r *receiptRepositoryImpl) GetAllReceipts(
	ctx context.Context,
) ([]*domain.EscrowReceipt, error) {
	return r.findReceipts(ctx, nil)
}

func (r *receiptRepositoryImpl) GetReceiptsForMaker(
	ctx context.Context, maker solana.PublicKey,
) ([]*domain.EscrowReceipt, error) {
	query := badgerhold.Where("Maker").Eq(maker.String())
	return r.findReceipts(ctx, query)
}

func (r *receiptRepositoryImpl) findReceipts(
	ctx context.Context, query *badgerhold.Query,
) ([]*domain.EscrowReceipt, error) {
	if query == nil {
		query = &badgerhold.Query{}
	}
	query = query.SortBy("ClosedAt").Reverse()

	var dtos []receiptDTO
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxFind(tx, &dtos, query)
	} else {
		err = r.store.Find(&dtos, query)
	}
	if err != nil {
		return nil, err
	}

	receipts := make([]*domain.EscrowReceipt, 0, len(dtos))
	for _, dto := range dtos {
		receipt, err := dto.toDomain()
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}
