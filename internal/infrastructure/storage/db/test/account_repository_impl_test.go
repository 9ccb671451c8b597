package db_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

func TestAccountRepositoryImplementations(t *testing.T) {
	managers := createRepoManagers(t)

	for i := range managers {
		repo := managers[i]

		t.Run(repo.Name, func(t *testing.T) {
			t.Parallel()

			t.Run("testAddAndGetAccount", func(t *testing.T) {
				testAddAndGetAccount(t, repo)
			})
			t.Run("testUpdateAccount", func(t *testing.T) {
				testUpdateAccount(t, repo)
			})
			t.Run("testDeleteAccount", func(t *testing.T) {
				testDeleteAccount(t, repo)
			})
			t.Run("testGetAccountsByOwner", func(t *testing.T) {
				testGetAccountsByOwner(t, repo)
			})
			t.Run("testTransactionRollback", func(t *testing.T) {
				testTransactionRollback(t, repo)
			})
			t.Run("testReadYourWrites", func(t *testing.T) {
				testReadYourWrites(t, repo)
			})
		})
	}
}

func testAddAndGetAccount(t *testing.T, repo repoManager) {
	account := makeRandomAccount(domain.SystemProgramID)

	_, err := repo.write(func(ctx context.Context) (interface{}, error) {
		return nil, repo.Manager.AccountRepository().AddAccount(ctx, account)
	})
	require.NoError(t, err)

	_, err = repo.write(func(ctx context.Context) (interface{}, error) {
		return nil, repo.Manager.AccountRepository().AddAccount(ctx, account)
	})
	require.ErrorIs(t, err, domain.ErrAlreadyInitialized)

	iAccount, err := repo.read(func(ctx context.Context) (interface{}, error) {
		return repo.Manager.AccountRepository().GetAccount(ctx, account.Address)
	})
	require.NoError(t, err)
	require.Equal(t, account, iAccount.(*domain.Account))

	_, err = repo.read(func(ctx context.Context) (interface{}, error) {
		return repo.Manager.AccountRepository().GetAccount(ctx, randomKey())
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func testUpdateAccount(t *testing.T, repo repoManager) {
	account := makeRandomAccount(domain.SystemProgramID)

	iAccount, err := repo.write(func(ctx context.Context) (interface{}, error) {
		accounts := repo.Manager.AccountRepository()
		if err := accounts.AddAccount(ctx, account); err != nil {
			return nil, err
		}
		if err := accounts.UpdateAccount(
			ctx, account.Address,
			func(a *domain.Account) (*domain.Account, error) {
				if err := a.Credit(100); err != nil {
					return nil, err
				}
				return a, nil
			},
		); err != nil {
			return nil, err
		}
		return accounts.GetAccount(ctx, account.Address)
	})
	require.NoError(t, err)
	require.Equal(t, account.Lamports+100, iAccount.(*domain.Account).Lamports)

	_, err = repo.write(func(ctx context.Context) (interface{}, error) {
		return nil, repo.Manager.AccountRepository().UpdateAccount(
			ctx, randomKey(),
			func(a *domain.Account) (*domain.Account, error) { return a, nil },
		)
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func testDeleteAccount(t *testing.T, repo repoManager) {
	account := makeRandomAccount(domain.SystemProgramID)

	_, err := repo.write(func(ctx context.Context) (interface{}, error) {
		return nil, repo.Manager.AccountRepository().AddAccount(ctx, account)
	})
	require.NoError(t, err)

	_, err = repo.write(func(ctx context.Context) (interface{}, error) {
		return nil, repo.Manager.AccountRepository().DeleteAccount(ctx, account.Address)
	})
	require.NoError(t, err)

	_, err = repo.read(func(ctx context.Context) (interface{}, error) {
		return repo.Manager.AccountRepository().GetAccount(ctx, account.Address)
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = repo.write(func(ctx context.Context) (interface{}, error) {
		return nil, repo.Manager.AccountRepository().DeleteAccount(ctx, account.Address)
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	// A freed address can be allocated again.
	_, err = repo.write(func(ctx context.Context) (interface{}, error) {
		return nil, repo.Manager.AccountRepository().AddAccount(ctx, account)
	})
	require.NoError(t, err)
}

func testGetAccountsByOwner(t *testing.T, repo repoManager) {
	owner := randomKey()
	accounts := []*domain.Account{
		makeRandomAccount(owner),
		makeRandomAccount(owner),
		makeRandomAccount(owner),
	}

	_, err := repo.write(func(ctx context.Context) (interface{}, error) {
		for _, a := range accounts {
			if err := repo.Manager.AccountRepository().AddAccount(ctx, a); err != nil {
				return nil, err
			}
		}
		return nil, repo.Manager.AccountRepository().AddAccount(
			ctx, makeRandomAccount(randomKey()),
		)
	})
	require.NoError(t, err)

	iAccounts, err := repo.read(func(ctx context.Context) (interface{}, error) {
		return repo.Manager.AccountRepository().GetAccountsByOwner(ctx, owner)
	})
	require.NoError(t, err)
	found := iAccounts.([]*domain.Account)
	require.Len(t, found, len(accounts))
	for _, a := range found {
		require.Equal(t, owner, a.Owner)
	}
}

func testTransactionRollback(t *testing.T, repo repoManager) {
	first := makeRandomAccount(domain.SystemProgramID)
	second := makeRandomAccount(domain.SystemProgramID)
	expectedErr := errors.New("something went wrong")

	_, err := repo.write(func(ctx context.Context) (interface{}, error) {
		return nil, repo.Manager.AccountRepository().AddAccount(ctx, first)
	})
	require.NoError(t, err)

	_, err = repo.write(func(ctx context.Context) (interface{}, error) {
		accounts := repo.Manager.AccountRepository()
		if err := accounts.UpdateAccount(
			ctx, first.Address,
			func(a *domain.Account) (*domain.Account, error) {
				a.Lamports = 0
				return a, nil
			},
		); err != nil {
			return nil, err
		}
		if err := accounts.AddAccount(ctx, second); err != nil {
			return nil, err
		}
		if err := repo.Manager.ReceiptRepository().AddReceipt(
			ctx, makeRandomReceipt(first.Address, domain.EscrowTaken, 1),
		); err != nil {
			return nil, err
		}
		return nil, expectedErr
	})
	require.ErrorIs(t, err, expectedErr)

	iAccount, err := repo.read(func(ctx context.Context) (interface{}, error) {
		return repo.Manager.AccountRepository().GetAccount(ctx, first.Address)
	})
	require.NoError(t, err)
	require.Equal(t, first.Lamports, iAccount.(*domain.Account).Lamports)

	_, err = repo.read(func(ctx context.Context) (interface{}, error) {
		return repo.Manager.AccountRepository().GetAccount(ctx, second.Address)
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	iReceipts, err := repo.read(func(ctx context.Context) (interface{}, error) {
		return repo.Manager.ReceiptRepository().GetReceiptsForMaker(ctx, first.Address)
	})
	require.NoError(t, err)
	require.Empty(t, iReceipts)
}

func testReadYourWrites(t *testing.T, repo repoManager) {
	account := makeRandomAccount(domain.SystemProgramID)

	iAccount, err := repo.write(func(ctx context.Context) (interface{}, error) {
		accounts := repo.Manager.AccountRepository()
		if err := accounts.AddAccount(ctx, account); err != nil {
			return nil, err
		}
		if err := accounts.DeleteAccount(ctx, account.Address); err != nil {
			return nil, err
		}
		if _, err := accounts.GetAccount(ctx, account.Address); !errors.Is(
			err, domain.ErrAccountNotFound,
		) {
			return nil, errors.New("deleted account still visible")
		}
		account.Lamports = 1
		if err := accounts.AddAccount(ctx, account); err != nil {
			return nil, err
		}
		return accounts.GetAccount(ctx, account.Address)
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), iAccount.(*domain.Account).Lamports)
}

func TestConcurrentTransactions(t *testing.T) {
	managers := createRepoManagers(t)

	for i := range managers {
		repo := managers[i]

		t.Run(repo.Name, func(t *testing.T) {
			t.Parallel()

			account := makeRandomAccount(domain.SystemProgramID)
			_, err := repo.write(func(ctx context.Context) (interface{}, error) {
				return nil, repo.Manager.AccountRepository().AddAccount(ctx, account)
			})
			require.NoError(t, err)

			// Every transaction closes the account only if it still exists:
			// exactly one must succeed, the others fail either because they
			// observed the account closed or because their commit conflicted.
			numOfTxs := 8
			errs := make([]error, numOfTxs)
			start := make(chan struct{})
			wg := &sync.WaitGroup{}
			for j := 0; j < numOfTxs; j++ {
				wg.Add(1)
				go func(j int) {
					defer wg.Done()
					<-start
					_, errs[j] = repo.write(func(ctx context.Context) (interface{}, error) {
						accounts := repo.Manager.AccountRepository()
						if _, err := accounts.GetAccount(ctx, account.Address); err != nil {
							return nil, err
						}
						return nil, accounts.DeleteAccount(ctx, account.Address)
					})
				}(j)
			}
			close(start)
			wg.Wait()

			succeeded := 0
			for _, err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				require.True(
					t,
					errors.Is(err, domain.ErrAccountNotFound) ||
						errors.Is(err, domain.ErrStaleState),
					err.Error(),
				)
			}
			require.Equal(t, 1, succeeded)
		})
	}
}
