package domain_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

func TestAuthorizes(t *testing.T) {
	t.Parallel()

	deriver := domain.NewDeriver(vaultProgramID)
	owner := solana.NewWallet().PublicKey()
	derived, err := deriver.Find(domain.StateNamespace, owner.Bytes())
	require.NoError(t, err)

	t.Run("signer", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, domain.SignedBy(owner).Authorizes(owner))
		require.ErrorIs(
			t, domain.SignedBy(owner).Authorizes(derived.Address),
			domain.ErrUnauthorized,
		)
	})

	t.Run("proof", func(t *testing.T) {
		t.Parallel()

		authority := domain.ProvenBy(derived.Proof())
		require.NoError(t, authority.Authorizes(derived.Address))
		require.ErrorIs(t, authority.Authorizes(owner), domain.ErrAuthorityMismatch)
	})

	t.Run("stale_proof", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			proof domain.AuthorityProof
		}{
			{
				name: "wrong_bump",
				proof: domain.AuthorityProof{
					ProgramID: vaultProgramID,
					Seeds: [][]byte{
						[]byte(domain.StateNamespace), owner.Bytes(),
						{derived.Bump - 1},
					},
				},
			},
			{
				name: "wrong_parent",
				proof: domain.AuthorityProof{
					ProgramID: vaultProgramID,
					Seeds: [][]byte{
						[]byte(domain.StateNamespace),
						solana.NewWallet().PublicKey().Bytes(),
						{derived.Bump},
					},
				},
			},
			{
				name: "wrong_program",
				proof: domain.AuthorityProof{
					ProgramID: escrowProgramID,
					Seeds:     derived.Seeds(),
				},
			},
		}

		for _, tt := range tests {
			authority := domain.ProvenBy(tt.proof)
			require.ErrorIs(
				t, authority.Authorizes(derived.Address),
				domain.ErrAuthorityMismatch, tt.name,
			)
		}
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		require.ErrorIs(
			t, domain.Authority{}.Authorizes(solana.PublicKey{}),
			domain.ErrAuthorityMismatch,
		)
	})
}
