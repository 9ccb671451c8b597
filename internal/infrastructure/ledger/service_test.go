package ledger_test

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/tdex-network/custody-daemon/internal/infrastructure/ledger"
	"github.com/tdex-network/custody-daemon/internal/infrastructure/storage/db/inmemory"
)

var (
	programID = solana.MustPublicKeyFromBase58("4vrVwqf5txbavZ5viVRbTsPS8rTB986v3PWBtwbnLrXE")
	mint      = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	otherMint = solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")

	tokenReserve = domain.DefaultRent().MinimumBalance(domain.TokenAccountSize)
)

type testLedger struct {
	ports.Ledger
	repoManager ports.RepoManager
}

func newTestLedger(t *testing.T) testLedger {
	repoManager := inmemory.NewRepoManager()
	svc, err := ledger.NewService(repoManager, domain.DefaultRent())
	require.NoError(t, err)
	return testLedger{svc, repoManager}
}

// run executes fn in a transaction, like services do.
func (l testLedger) run(fn func(ctx context.Context) error) error {
	_, err := l.repoManager.RunTransaction(
		context.Background(), false,
		func(ctx context.Context) (interface{}, error) {
			return nil, fn(ctx)
		},
	)
	return err
}

func (l testLedger) funded(t *testing.T, lamports uint64) solana.PublicKey {
	addr := solana.NewWallet().PublicKey()
	require.NoError(t, l.Airdrop(context.Background(), addr, lamports))
	return addr
}

func TestNewService(t *testing.T) {
	t.Parallel()

	_, err := ledger.NewService(nil, domain.DefaultRent())
	require.Error(t, err)

	_, err = ledger.NewService(
		inmemory.NewRepoManager(), domain.Rent{LamportsPerByteYear: 3480},
	)
	require.Error(t, err)
}

func TestNativeTransfer(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()
	from := l.funded(t, 1000)
	to := solana.NewWallet().PublicKey()

	err := l.run(func(ctx context.Context) error {
		return l.Transfer(ctx, ports.TransferArgs{
			Asset:     domain.NativeAsset,
			From:      from,
			To:        to,
			Authority: domain.SignedBy(from),
			Amount:    400,
		})
	})
	require.NoError(t, err)

	fromBalance, err := l.Balance(ctx, from)
	require.NoError(t, err)
	require.Equal(t, uint64(600), fromBalance)
	toBalance, err := l.Balance(ctx, to)
	require.NoError(t, err)
	require.Equal(t, uint64(400), toBalance)
}

func TestFailingNativeTransfer(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	from := l.funded(t, 1000)
	to := solana.NewWallet().PublicKey()
	stranger := solana.NewWallet().PublicKey()
	tokenAccount, err := l.MintTo(context.Background(), mint, from, 10)
	require.NoError(t, err)

	tests := []struct {
		name        string
		args        ports.TransferArgs
		expectedErr error
	}{
		{
			name: "zero_amount",
			args: ports.TransferArgs{
				Asset: domain.NativeAsset, From: from, To: to,
				Authority: domain.SignedBy(from),
			},
			expectedErr: domain.ErrInvalidAmount,
		},
		{
			name: "wrong_authority",
			args: ports.TransferArgs{
				Asset: domain.NativeAsset, From: from, To: to,
				Authority: domain.SignedBy(stranger), Amount: 1,
			},
			expectedErr: domain.ErrAuthorityMismatch,
		},
		{
			name: "insufficient_balance",
			args: ports.TransferArgs{
				Asset: domain.NativeAsset, From: from, To: to,
				Authority: domain.SignedBy(from), Amount: 1001,
			},
			expectedErr: domain.ErrInsufficientBalance,
		},
		{
			name: "empty_source",
			args: ports.TransferArgs{
				Asset: domain.NativeAsset, From: stranger, To: to,
				Authority: domain.SignedBy(stranger), Amount: 1,
			},
			expectedErr: domain.ErrInsufficientBalance,
		},
		{
			name: "token_account_source",
			args: ports.TransferArgs{
				Asset: domain.NativeAsset, From: tokenAccount, To: to,
				Authority: domain.SignedBy(from), Amount: 1,
			},
			expectedErr: domain.ErrUnsupportedAsset,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			err := l.run(func(ctx context.Context) error {
				return l.Transfer(ctx, tt.args)
			})
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}

	balance, err := l.Balance(context.Background(), from)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), balance)
}

func TestTransferFromDerivedAddress(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()
	owner := solana.NewWallet().PublicKey()
	derived, err := domain.NewDeriver(programID).Find(
		domain.VaultNamespace, owner.Bytes(),
	)
	require.NoError(t, err)
	require.NoError(t, l.Airdrop(ctx, derived.Address, 500))

	transfer := func(authority domain.Authority) error {
		return l.run(func(ctx context.Context) error {
			return l.Transfer(ctx, ports.TransferArgs{
				Asset:     domain.NativeAsset,
				From:      derived.Address,
				To:        owner,
				Authority: authority,
				Amount:    200,
			})
		})
	}

	// Same seeds, another program.
	forged := derived.Proof()
	forged.ProgramID = solana.NewWallet().PublicKey()
	require.ErrorIs(t, transfer(domain.ProvenBy(forged)), domain.ErrUnauthorized)

	require.NoError(t, transfer(domain.ProvenBy(derived.Proof())))

	balance, err := l.Balance(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, uint64(200), balance)
}

func TestTokenTransfer(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()
	alice := l.funded(t, 10*tokenReserve)
	bob := l.funded(t, 10*tokenReserve)

	aliceAta, err := l.MintTo(ctx, mint, alice, 100)
	require.NoError(t, err)

	var bobAta solana.PublicKey
	err = l.run(func(ctx context.Context) error {
		bobAta, err = l.OpenTokenAccount(ctx, ports.OpenTokenAccountArgs{
			Payer: domain.SignedBy(bob),
			Owner: bob,
			Mint:  mint,
		})
		return err
	})
	require.NoError(t, err)

	bobLamports, err := l.Balance(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, 9*tokenReserve, bobLamports)

	err = l.run(func(ctx context.Context) error {
		return l.Transfer(ctx, ports.TransferArgs{
			Asset:     mint,
			From:      aliceAta,
			To:        bobAta,
			Authority: domain.SignedBy(alice),
			Amount:    30,
		})
	})
	require.NoError(t, err)

	aliceTokens, err := l.TokenBalance(ctx, alice, mint)
	require.NoError(t, err)
	require.Equal(t, uint64(70), aliceTokens)
	bobTokens, err := l.TokenBalance(ctx, bob, mint)
	require.NoError(t, err)
	require.Equal(t, uint64(30), bobTokens)

	t.Run("failing", func(t *testing.T) {
		tests := []struct {
			name        string
			args        ports.TransferArgs
			expectedErr error
		}{
			{
				name: "wrong_authority",
				args: ports.TransferArgs{
					Asset: mint, From: aliceAta, To: bobAta,
					Authority: domain.SignedBy(bob), Amount: 1,
				},
				expectedErr: domain.ErrAuthorityMismatch,
			},
			{
				name: "asset_mismatch",
				args: ports.TransferArgs{
					Asset: otherMint, From: aliceAta, To: bobAta,
					Authority: domain.SignedBy(alice), Amount: 1,
				},
				expectedErr: domain.ErrAssetMismatch,
			},
			{
				name: "insufficient_balance",
				args: ports.TransferArgs{
					Asset: mint, From: aliceAta, To: bobAta,
					Authority: domain.SignedBy(alice), Amount: 71,
				},
				expectedErr: domain.ErrInsufficientBalance,
			},
			{
				name: "missing_destination",
				args: ports.TransferArgs{
					Asset: mint, From: aliceAta, To: solana.NewWallet().PublicKey(),
					Authority: domain.SignedBy(alice), Amount: 1,
				},
				expectedErr: domain.ErrAccountNotFound,
			},
		}

		for i := range tests {
			tt := tests[i]
			t.Run(tt.name, func(t *testing.T) {
				err := l.run(func(ctx context.Context) error {
					return l.Transfer(ctx, tt.args)
				})
				require.ErrorIs(t, err, tt.expectedErr)
			})
		}

		aliceTokens, err := l.TokenBalance(ctx, alice, mint)
		require.NoError(t, err)
		require.Equal(t, uint64(70), aliceTokens)
	})
}

func TestOpenTokenAccount(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()
	payer := l.funded(t, 3*tokenReserve)
	owner := solana.NewWallet().PublicKey()

	open := func(idempotent bool) (solana.PublicKey, error) {
		var addr solana.PublicKey
		err := l.run(func(ctx context.Context) (err error) {
			addr, err = l.OpenTokenAccount(ctx, ports.OpenTokenAccountArgs{
				Payer:      domain.SignedBy(payer),
				Owner:      owner,
				Mint:       mint,
				Idempotent: idempotent,
			})
			return
		})
		return addr, err
	}

	addr, err := open(false)
	require.NoError(t, err)
	expected, err := domain.AssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	require.Equal(t, expected, addr)

	_, err = open(false)
	require.ErrorIs(t, err, domain.ErrAccountAlreadyExists)

	again, err := open(true)
	require.NoError(t, err)
	require.Equal(t, addr, again)

	// Only the first open is charged.
	balance, err := l.Balance(ctx, payer)
	require.NoError(t, err)
	require.Equal(t, 2*tokenReserve, balance)
	balance, err = l.Balance(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, tokenReserve, balance)
}

func TestCloseAccount(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()
	owner := solana.NewWallet().PublicKey()
	destination := solana.NewWallet().PublicKey()

	ata, err := l.MintTo(ctx, mint, owner, 10)
	require.NoError(t, err)

	closeAccount := func(authority domain.Authority) (uint64, error) {
		var reclaimed uint64
		err := l.run(func(ctx context.Context) (err error) {
			reclaimed, err = l.CloseAccount(ctx, ports.CloseAccountArgs{
				Account:     ata,
				Destination: destination,
				Authority:   authority,
			})
			return
		})
		return reclaimed, err
	}

	_, err = closeAccount(domain.SignedBy(owner))
	require.ErrorIs(t, err, domain.ErrAccountNotEmpty)

	otherOwner := solana.NewWallet().PublicKey()
	otherAta, err := l.MintTo(ctx, mint, otherOwner, 1)
	require.NoError(t, err)
	err = l.run(func(ctx context.Context) error {
		return l.Transfer(ctx, ports.TransferArgs{
			Asset:     mint,
			From:      ata,
			To:        otherAta,
			Authority: domain.SignedBy(owner),
			Amount:    10,
		})
	})
	require.NoError(t, err)

	_, err = closeAccount(domain.SignedBy(otherOwner))
	require.ErrorIs(t, err, domain.ErrAuthorityMismatch)

	reclaimed, err := closeAccount(domain.SignedBy(owner))
	require.NoError(t, err)
	require.Equal(t, tokenReserve, reclaimed)

	balance, err := l.Balance(ctx, destination)
	require.NoError(t, err)
	require.Equal(t, tokenReserve, balance)
	tokens, err := l.TokenBalance(ctx, owner, mint)
	require.NoError(t, err)
	require.Zero(t, tokens)

	_, err = closeAccount(domain.SignedBy(owner))
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestCreateAndCloseProgramAccount(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()
	reserve := l.MinimumBalance(domain.VaultStateSize)
	payer := l.funded(t, reserve)

	derived, err := domain.NewDeriver(programID).Find(
		domain.StateNamespace, payer.Bytes(),
	)
	require.NoError(t, err)
	proof := derived.Proof()
	data := domain.NewVaultState(payer, derived.Bump, 0).Encode()

	create := func(args ports.CreateAccountArgs) error {
		return l.run(func(ctx context.Context) error {
			return l.CreateAccount(ctx, args)
		})
	}

	t.Run("proof_for_another_address", func(t *testing.T) {
		err := create(ports.CreateAccountArgs{
			Payer:   domain.SignedBy(payer),
			Address: solana.NewWallet().PublicKey(),
			Owner:   programID,
			Data:    data,
			Proof:   &proof,
		})
		require.ErrorIs(t, err, domain.ErrAuthorityMismatch)
	})

	t.Run("proof_for_another_program", func(t *testing.T) {
		err := create(ports.CreateAccountArgs{
			Payer:   domain.SignedBy(payer),
			Address: derived.Address,
			Owner:   solana.NewWallet().PublicKey(),
			Data:    data,
			Proof:   &proof,
		})
		require.ErrorIs(t, err, domain.ErrAuthorityMismatch)
	})

	args := ports.CreateAccountArgs{
		Payer:   domain.SignedBy(payer),
		Address: derived.Address,
		Owner:   programID,
		Data:    data,
		Proof:   &proof,
	}
	require.NoError(t, create(args))

	payerBalance, err := l.Balance(ctx, payer)
	require.NoError(t, err)
	require.Zero(t, payerBalance)
	accountBalance, err := l.Balance(ctx, derived.Address)
	require.NoError(t, err)
	require.Equal(t, reserve, accountBalance)

	require.NoError(t, l.Airdrop(ctx, payer, reserve))
	require.ErrorIs(t, create(args), domain.ErrAlreadyInitialized)

	closeAccount := func(program solana.PublicKey) (uint64, error) {
		var reclaimed uint64
		err := l.run(func(ctx context.Context) (err error) {
			reclaimed, err = l.CloseProgramAccount(
				ctx, derived.Address, program, payer,
			)
			return
		})
		return reclaimed, err
	}

	_, err = closeAccount(solana.NewWallet().PublicKey())
	require.ErrorIs(t, err, domain.ErrInvalidAccountOwner)

	reclaimed, err := closeAccount(programID)
	require.NoError(t, err)
	require.Equal(t, reserve, reclaimed)

	payerBalance, err = l.Balance(ctx, payer)
	require.NoError(t, err)
	require.Equal(t, 2*reserve, payerBalance)
}

func TestRollback(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()
	from := l.funded(t, 100)
	to := solana.NewWallet().PublicKey()

	err := l.run(func(ctx context.Context) error {
		if err := l.Transfer(ctx, ports.TransferArgs{
			Asset:     domain.NativeAsset,
			From:      from,
			To:        to,
			Authority: domain.SignedBy(from),
			Amount:    60,
		}); err != nil {
			return err
		}
		return l.Transfer(ctx, ports.TransferArgs{
			Asset:     domain.NativeAsset,
			From:      from,
			To:        to,
			Authority: domain.SignedBy(from),
			Amount:    60,
		})
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	balance, err := l.Balance(ctx, from)
	require.NoError(t, err)
	require.Equal(t, uint64(100), balance)
	balance, err = l.Balance(ctx, to)
	require.NoError(t, err)
	require.Zero(t, balance)
}
