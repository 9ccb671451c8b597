package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

func TestReceiptRepositoryImplementations(t *testing.T) {
	managers := createRepoManagers(t)

	for i := range managers {
		repo := managers[i]

		t.Run(repo.Name, func(t *testing.T) {
			t.Parallel()

			maker := randomKey()
			receipts := []*domain.EscrowReceipt{
				makeRandomReceipt(maker, domain.EscrowTaken, 100),
				makeRandomReceipt(maker, domain.EscrowRefunded, 300),
				makeRandomReceipt(randomKey(), domain.EscrowTaken, 200),
			}

			_, err := repo.write(func(ctx context.Context) (interface{}, error) {
				for _, r := range receipts {
					if err := repo.Manager.ReceiptRepository().AddReceipt(ctx, r); err != nil {
						return nil, err
					}
				}
				return nil, nil
			})
			require.NoError(t, err)

			iReceipts, err := repo.read(func(ctx context.Context) (interface{}, error) {
				return repo.Manager.ReceiptRepository().GetReceiptsForMaker(ctx, maker)
			})
			require.NoError(t, err)
			found := iReceipts.([]*domain.EscrowReceipt)
			require.Len(t, found, 2)
			require.Equal(t, receipts[1], found[0])
			require.Equal(t, receipts[0], found[1])

			iReceipts, err = repo.read(func(ctx context.Context) (interface{}, error) {
				return repo.Manager.ReceiptRepository().GetReceiptsForEscrow(
					ctx, receipts[2].Escrow,
				)
			})
			require.NoError(t, err)
			found = iReceipts.([]*domain.EscrowReceipt)
			require.Len(t, found, 1)
			require.Equal(t, domain.EscrowTaken, found[0].Status)

			iReceipts, err = repo.read(func(ctx context.Context) (interface{}, error) {
				return repo.Manager.ReceiptRepository().GetAllReceipts(ctx)
			})
			require.NoError(t, err)
			require.Len(t, iReceipts.([]*domain.EscrowReceipt), len(receipts))
		})
	}
}
