package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/storageutil/uow"
)

type receiptInmemoryStore struct {
	receipts []*domain.EscrowReceipt
	locker   *sync.RWMutex
}

type receiptTxKey struct{}

type receiptTx struct {
	store  *receiptInmemoryStore
	added  []*domain.EscrowReceipt
	closed bool
}

func (tx *receiptTx) Commit() error {
	if tx.closed {
		return ErrTxClosed
	}
	tx.store.locker.Lock()
	defer tx.store.locker.Unlock()

	tx.store.receipts = append(tx.store.receipts, tx.added...)
	tx.closed = true
	return nil
}

func (tx *receiptTx) Rollback() error {
	tx.added = nil
	tx.closed = true
	return nil
}

type receiptRepositoryImpl struct {
	store *receiptInmemoryStore
}

func (r *receiptRepositoryImpl) Begin() (uow.Tx, error) {
	return &receiptTx{store: r.store}, nil
}

func (r *receiptRepositoryImpl) ContextKey() interface{} {
	return receiptTxKey{}
}

func (r *receiptRepositoryImpl) AddReceipt(
	ctx context.Context, receipt *domain.EscrowReceipt,
) error {
	cp := *receipt
	if tx, ok := ctx.Value(receiptTxKey{}).(*receiptTx); ok {
		if tx.closed {
			return ErrTxClosed
		}
		tx.added = append(tx.added, &cp)
		return nil
	}

	r.store.locker.Lock()
	defer r.store.locker.Unlock()
	r.store.receipts = append(r.store.receipts, &cp)
	return nil
}

func (r *receiptRepositoryImpl) GetReceiptsForEscrow(
	ctx context.Context, escrow solana.PublicKey,
) ([]*domain.EscrowReceipt, error) {
	return r.findReceipts(ctx, func(rr *domain.EscrowReceipt) bool {
		return rr.Escrow.Equals(escrow)
	}), nil
}

func (r *receiptRepositoryImpl) GetAllReceipts(
	ctx context.Context,
) ([]*domain.EscrowReceipt, error) {
	return r.findReceipts(ctx, func(*domain.EscrowReceipt) bool {
		return true
	}), nil
}

func (r *receiptRepositoryImpl) GetReceiptsForMaker(
	ctx context.Context, maker solana.PublicKey,
) ([]*domain.EscrowReceipt, error) {
	return r.findReceipts(ctx, func(rr *domain.EscrowReceipt) bool {
		return rr.Maker.Equals(maker)
	}), nil
}

func (r *receiptRepositoryImpl) findReceipts(
	ctx context.Context, filter func(*domain.EscrowReceipt) bool,
) []*domain.EscrowReceipt {
	r.store.locker.RLock()
	all := append([]*domain.EscrowReceipt{}, r.store.receipts...)
	r.store.locker.RUnlock()

	if tx, ok := ctx.Value(receiptTxKey{}).(*receiptTx); ok {
		all = append(all, tx.added...)
	}

	receipts := make([]*domain.EscrowReceipt, 0)
	for i := len(all) - 1; i >= 0; i-- {
		if filter(all[i]) {
			cp := *all[i]
			receipts = append(receipts, &cp)
		}
	}
	sort.SliceStable(receipts, func(i, j int) bool {
		return receipts[i].ClosedAt > receipts[j].ClosedAt
	})
	return receipts
}
