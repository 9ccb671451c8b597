package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/gagliardetto/solana-go"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type accountRepositoryImpl struct {
	store *badgerhold.Store
}

// NewAccountRepositoryImpl returns a badger implementation of the
// domain.AccountRepository.
func NewAccountRepositoryImpl(store *badgerhold.Store) domain.AccountRepository {
	return &accountRepositoryImpl{store}
}

func (r *accountRepositoryImpl) GetAccount(
	ctx context.Context, address solana.PublicKey,
) (*domain.Account, error) {
	dto, err := r.getAccount(ctx, address.String())
	if err != nil {
		return nil, err
	}
	return dto.toDomain()
}

func (r *accountRepositoryImpl) AddAccount(
	ctx context.Context, account *domain.Account,
) error {
	dto := newAccountDTO(account)

	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxInsert(tx, dto.Address, dto)
	} else {
		err = r.store.Insert(dto.Address, dto)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrAccountAlreadyExists
		}
		return mapWriteErr(err)
	}
	return nil
}

func (r *accountRepositoryImpl) UpdateAccount(
	ctx context.Context,
	address solana.PublicKey,
	updateFn func(a *domain.Account) (*domain.Account, error),
) error {
	account, err := r.GetAccount(ctx, address)
	if err != nil {
		return err
	}

	updatedAccount, err := updateFn(account)
	if err != nil {
		return err
	}
	updatedAccount.Address = address

	dto := newAccountDTO(updatedAccount)
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxUpdate(tx, dto.Address, dto)
	} else {
		err = r.store.Update(dto.Address, dto)
	}
	return mapWriteErr(err)
}

func (r *accountRepositoryImpl) DeleteAccount(
	ctx context.Context, address solana.PublicKey,
) error {
	key := address.String()
	if _, err := r.getAccount(ctx, key); err != nil {
		return err
	}

	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxDelete(tx, key, accountDTO{})
	} else {
		err = r.store.Delete(key, accountDTO{})
	}
	return mapWriteErr(err)
}

func (r *accountRepositoryImpl) GetAccountsByOwner(
	ctx context.Context, owner solana.PublicKey,
) ([]*domain.Account, error) {
	query := badgerhold.Where("Owner").Eq(owner.String()).SortBy("Address")

	var dtos []accountDTO
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxFind(tx, &dtos, query)
	} else {
		err = r.store.Find(&dtos, query)
	}
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(dtos))
	for _, dto := range dtos {
		account, err := dto.toDomain()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (r *accountRepositoryImpl) getAccount(
	ctx context.Context, key string,
) (*accountDTO, error) {
	var dto accountDTO
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, key, &dto)
	} else {
		err = r.store.Get(key, &dto)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &dto, nil
}

func mapWriteErr(err error) error {
	if errors.Is(err, badger.ErrReadOnlyTxn) {
		return ErrReadOnlyTx
	}
	return err
}
