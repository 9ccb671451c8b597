package domain_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

var (
	vaultProgramID  = solana.MustPublicKeyFromBase58("4vrVwqf5txbavZ5viVRbTsPS8rTB986v3PWBtwbnLrXE")
	escrowProgramID = solana.MustPublicKeyFromBase58("G12PpJUib62fdSGLveZxVTZnr9wnmF2bXsfY7TFPDAxX")
)

func TestFindIsDeterministic(t *testing.T) {
	t.Parallel()

	deriver := domain.NewDeriver(escrowProgramID)
	maker := solana.NewWallet().PublicKey()

	first, err := deriver.Find(
		domain.EscrowNamespace, maker.Bytes(), domain.SeedBytes(1),
	)
	require.NoError(t, err)
	second, err := deriver.Find(
		domain.EscrowNamespace, maker.Bytes(), domain.SeedBytes(1),
	)
	require.NoError(t, err)

	require.Equal(t, first.Address, second.Address)
	require.Equal(t, first.Bump, second.Bump)

	other, err := deriver.Find(
		domain.EscrowNamespace, maker.Bytes(), domain.SeedBytes(2),
	)
	require.NoError(t, err)
	require.NotEqual(t, first.Address, other.Address)
}

func TestFindMatchesProgramAddress(t *testing.T) {
	t.Parallel()

	deriver := domain.NewDeriver(vaultProgramID)
	owner := solana.NewWallet().PublicKey()

	derived, err := deriver.Find(domain.StateNamespace, owner.Bytes())
	require.NoError(t, err)

	addr, bump, err := solana.FindProgramAddress(
		[][]byte{[]byte(domain.StateNamespace), owner.Bytes()}, vaultProgramID,
	)
	require.NoError(t, err)
	require.Equal(t, addr, derived.Address)
	require.Equal(t, bump, derived.Bump)
}

func TestRederive(t *testing.T) {
	t.Parallel()

	deriver := domain.NewDeriver(vaultProgramID)
	owner := solana.NewWallet().PublicKey()

	derived, err := deriver.Find(domain.StateNamespace, owner.Bytes())
	require.NoError(t, err)

	t.Run("same_bump", func(t *testing.T) {
		rederived, err := deriver.Rederive(
			domain.StateNamespace, derived.Bump, owner.Bytes(),
		)
		require.NoError(t, err)
		require.Equal(t, derived.Address, rederived.Address)
		require.Equal(t, derived.Seeds(), rederived.Seeds())
	})

	t.Run("wrong_parent", func(t *testing.T) {
		other := solana.NewWallet().PublicKey()
		rederived, err := deriver.Rederive(
			domain.StateNamespace, derived.Bump, other.Bytes(),
		)
		if err == nil {
			require.NotEqual(t, derived.Address, rederived.Address)
		}
	})
}

func TestSeeds(t *testing.T) {
	t.Parallel()

	deriver := domain.NewDeriver(escrowProgramID)
	maker := solana.NewWallet().PublicKey()

	derived, err := deriver.Find(
		domain.EscrowNamespace, maker.Bytes(), domain.SeedBytes(258),
	)
	require.NoError(t, err)

	seeds := derived.Seeds()
	require.Len(t, seeds, 4)
	require.Equal(t, []byte("escrow"), seeds[0])
	require.Equal(t, maker.Bytes(), seeds[1])
	require.Equal(t, []byte{2, 1, 0, 0, 0, 0, 0, 0}, seeds[2])
	require.Equal(t, []byte{derived.Bump}, seeds[3])
}

func TestFindExhausted(t *testing.T) {
	t.Parallel()

	// With a single candidate bump roughly half of the seeds have no valid
	// derived address.
	deriver := domain.Deriver{ProgramID: escrowProgramID, MinBump: 255}
	maker := solana.NewWallet().PublicKey()

	exhausted := 0
	for i := uint64(0); i < 64; i++ {
		derived, err := deriver.Find(
			domain.EscrowNamespace, maker.Bytes(), domain.SeedBytes(i),
		)
		if err != nil {
			require.True(t, errors.Is(err, domain.ErrDerivationExhausted))
			exhausted++
			continue
		}
		require.Equal(t, uint8(255), derived.Bump)
	}
	require.NotZero(t, exhausted)
}

func TestFailingFind(t *testing.T) {
	t.Parallel()

	deriver := domain.NewDeriver(escrowProgramID)

	tests := []struct {
		name       string
		namespace  string
		components [][]byte
	}{
		{
			name:      "empty_namespace",
			namespace: "",
		},
		{
			name:       "seed_too_long",
			namespace:  domain.EscrowNamespace,
			components: [][]byte{bytes.Repeat([]byte{1}, 33)},
		},
		{
			name:       "too_many_seeds",
			namespace:  domain.EscrowNamespace,
			components: make([][]byte, 15),
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			derived, err := deriver.Find(tt.namespace, tt.components...)
			require.ErrorIs(t, err, domain.ErrInvalidSeeds)
			require.Nil(t, derived)
		})
	}
}
