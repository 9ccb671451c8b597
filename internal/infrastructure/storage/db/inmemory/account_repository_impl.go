package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/storageutil/uow"
)

type accountInmemoryStore struct {
	accounts map[string]*domain.Account
	locker   *sync.RWMutex
}

type accountTxKey struct{}

// accountTx stages the changes made within a transaction. A nil account
// marks a deletion.
type accountTx struct {
	store   *accountInmemoryStore
	changes map[string]*domain.Account
	closed  bool
}

func (tx *accountTx) Commit() error {
	if tx.closed {
		return ErrTxClosed
	}
	tx.store.locker.Lock()
	defer tx.store.locker.Unlock()

	for addr, account := range tx.changes {
		if account == nil {
			delete(tx.store.accounts, addr)
			continue
		}
		tx.store.accounts[addr] = account
	}
	tx.closed = true
	return nil
}

func (tx *accountTx) Rollback() error {
	tx.changes = nil
	tx.closed = true
	return nil
}

type accountRepositoryImpl struct {
	store *accountInmemoryStore
}

func (r *accountRepositoryImpl) Begin() (uow.Tx, error) {
	return &accountTx{
		store:   r.store,
		changes: make(map[string]*domain.Account),
	}, nil
}

func (r *accountRepositoryImpl) ContextKey() interface{} {
	return accountTxKey{}
}

func (r *accountRepositoryImpl) GetAccount(
	ctx context.Context, address solana.PublicKey,
) (*domain.Account, error) {
	account := r.getAccount(ctx, address)
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	return account.Copy(), nil
}

func (r *accountRepositoryImpl) AddAccount(
	ctx context.Context, account *domain.Account,
) error {
	if r.getAccount(ctx, account.Address) != nil {
		return domain.ErrAccountAlreadyExists
	}
	return r.writeAccount(ctx, account.Address, account.Copy())
}

func (r *accountRepositoryImpl) UpdateAccount(
	ctx context.Context,
	address solana.PublicKey,
	updateFn func(a *domain.Account) (*domain.Account, error),
) error {
	account := r.getAccount(ctx, address)
	if account == nil {
		return domain.ErrAccountNotFound
	}

	updatedAccount, err := updateFn(account.Copy())
	if err != nil {
		return err
	}
	updatedAccount.Address = address

	return r.writeAccount(ctx, address, updatedAccount.Copy())
}

func (r *accountRepositoryImpl) DeleteAccount(
	ctx context.Context, address solana.PublicKey,
) error {
	if r.getAccount(ctx, address) == nil {
		return domain.ErrAccountNotFound
	}
	return r.writeAccount(ctx, address, nil)
}

func (r *accountRepositoryImpl) GetAccountsByOwner(
	ctx context.Context, owner solana.PublicKey,
) ([]*domain.Account, error) {
	r.store.locker.RLock()
	all := make(map[string]*domain.Account, len(r.store.accounts))
	for addr, account := range r.store.accounts {
		all[addr] = account
	}
	r.store.locker.RUnlock()

	if tx := txFromContext(ctx); tx != nil {
		for addr, account := range tx.changes {
			all[addr] = account
		}
	}

	accounts := make([]*domain.Account, 0)
	for _, account := range all {
		if account != nil && account.IsOwnedBy(owner) {
			accounts = append(accounts, account.Copy())
		}
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].Address.String() < accounts[j].Address.String()
	})
	return accounts, nil
}

func (r *accountRepositoryImpl) getAccount(
	ctx context.Context, address solana.PublicKey,
) *domain.Account {
	key := address.String()
	if tx := txFromContext(ctx); tx != nil {
		if account, ok := tx.changes[key]; ok {
			return account
		}
	}

	r.store.locker.RLock()
	defer r.store.locker.RUnlock()
	return r.store.accounts[key]
}

func (r *accountRepositoryImpl) writeAccount(
	ctx context.Context, address solana.PublicKey, account *domain.Account,
) error {
	key := address.String()
	if tx := txFromContext(ctx); tx != nil {
		if tx.closed {
			return ErrTxClosed
		}
		tx.changes[key] = account
		return nil
	}

	r.store.locker.Lock()
	defer r.store.locker.Unlock()
	if account == nil {
		delete(r.store.accounts, key)
		return nil
	}
	r.store.accounts[key] = account
	return nil
}

func txFromContext(ctx context.Context) *accountTx {
	tx, _ := ctx.Value(accountTxKey{}).(*accountTx)
	return tx
}
