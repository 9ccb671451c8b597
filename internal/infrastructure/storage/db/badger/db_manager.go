package dbbadger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const registryDir = "registry"

type txKey struct{}

type repoManager struct {
	store *badgerhold.Store

	accountRepository domain.AccountRepository
	receiptRepository domain.ReceiptRepository
}

// NewRepoManager opens (or creates if not exists) the badger store in the
// given base dir. An empty dir opens an in-memory store.
func NewRepoManager(
	baseDbDir string, logger badger.Logger,
) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, registryDir)
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening registry db: %w", err)
	}

	return &repoManager{
		store:             store,
		accountRepository: NewAccountRepositoryImpl(store),
		receiptRepository: NewReceiptRepositoryImpl(store),
	}, nil
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
	tx := m.store.Badger().NewTransaction(!readOnly)
	defer tx.Discard()

	res, err := handler(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		return nil, err
	}
	if readOnly {
		return res, nil
	}

	if err := tx.Commit(); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStaleState, err)
		}
		return nil, err
	}
	return res, nil
}

func (m *repoManager) Close() {
	m.store.Close()
}

func txFromContext(ctx context.Context) *badger.Txn {
	tx, _ := ctx.Value(txKey{}).(*badger.Txn)
	return tx
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
