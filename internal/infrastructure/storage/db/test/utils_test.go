package db_test

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	dbbadger "github.com/tdex-network/custody-daemon/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/custody-daemon/internal/infrastructure/storage/db/inmemory"
)

type repoManager struct {
	Name    string
	Manager ports.RepoManager
}

func (r repoManager) read(
	query func(context.Context) (interface{}, error),
) (interface{}, error) {
	return r.Manager.RunTransaction(context.Background(), true, query)
}

func (r repoManager) write(
	query func(context.Context) (interface{}, error),
) (interface{}, error) {
	return r.Manager.RunTransaction(context.Background(), false, query)
}

func createRepoManagers(t *testing.T) []repoManager {
	badgerManager, err := dbbadger.NewRepoManager(t.TempDir(), nil)
	require.NoError(t, err)
	badgerInMemoryManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		badgerManager.Close()
		badgerInMemoryManager.Close()
	})

	return []repoManager{
		{Name: "badger", Manager: badgerManager},
		{Name: "badger_inmemory", Manager: badgerInMemoryManager},
		{Name: "inmemory", Manager: inmemory.NewRepoManager()},
	}
}

func randomKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

func randomBytes(len int) []byte {
	b := make([]byte, len)
	//nolint
	rand.Read(b)
	return b
}

func makeRandomAccount(owner solana.PublicKey) *domain.Account {
	return &domain.Account{
		Address:  randomKey(),
		Owner:    owner,
		Lamports: 890880,
		Data:     randomBytes(32),
	}
}

func makeRandomReceipt(
	maker solana.PublicKey, status domain.EscrowStatus, closedAt int64,
) *domain.EscrowReceipt {
	escrow, _ := domain.NewEscrow(maker, randomKey(), randomKey(), 1, 50, 30)
	escrow.Address = randomKey()
	receipt := domain.NewEscrowReceipt(escrow, status, randomKey())
	receipt.ClosedAt = closedAt
	return receipt
}
