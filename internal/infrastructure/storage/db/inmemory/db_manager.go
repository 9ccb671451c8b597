package inmemory

import (
	"context"
	"sync"

	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/tdex-network/custody-daemon/internal/storageutil/uow"
)

type repoManager struct {
	accountStore *accountInmemoryStore
	receiptStore *receiptInmemoryStore

	accountRepository *accountRepositoryImpl
	receiptRepository *receiptRepositoryImpl

	// serializes transactions
	txLocker *sync.Mutex
}

// NewRepoManager returns a RepoManager keeping all data in memory.
// Transactions are run one at a time.
func NewRepoManager() ports.RepoManager {
	accountStore := &accountInmemoryStore{
		accounts: make(map[string]*domain.Account),
		locker:   &sync.RWMutex{},
	}
	receiptStore := &receiptInmemoryStore{
		receipts: make([]*domain.EscrowReceipt, 0),
		locker:   &sync.RWMutex{},
	}

	return &repoManager{
		accountStore:      accountStore,
		receiptStore:      receiptStore,
		accountRepository: &accountRepositoryImpl{accountStore},
		receiptRepository: &receiptRepositoryImpl{receiptStore},
		txLocker:          &sync.Mutex{},
	}
}

func (m *repoManager) AccountRepository() domain.AccountRepository {
	return m.accountRepository
}

func (m *repoManager) ReceiptRepository() domain.ReceiptRepository {
	return m.receiptRepository
}

func (m *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	m.txLocker.Lock()
	defer m.txLocker.Unlock()

	var result interface{}
	unit := uow.NewUnitOfWork(m.accountRepository, m.receiptRepository)
	if err := unit.Run(ctx, func(ctx context.Context) error {
		res, err := handler(ctx)
		if err != nil {
			return err
		}
		result = res
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

func (m *repoManager) Close() {}
