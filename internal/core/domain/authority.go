package domain

import (
	"github.com/gagliardetto/solana-go"
)

// AuthorityProof stands in for a signature of a derived address: the seeds,
// trailing bump included, and the program they are derived for.
type AuthorityProof struct {
	ProgramID solana.PublicKey
	Seeds     [][]byte
}

// Address re-derives the address the proof speaks for.
func (p AuthorityProof) Address() (solana.PublicKey, error) {
	return solana.CreateProgramAddress(p.Seeds, p.ProgramID)
}

// Authority is who authorizes a ledger operation: either a key that signed the
// request or a proof for a derived address. Exactly one is set.
type Authority struct {
	Signer solana.PublicKey
	Proof  *AuthorityProof
}

// SignedBy returns the authority of a verified signer.
func SignedBy(signer solana.PublicKey) Authority {
	return Authority{Signer: signer}
}

// ProvenBy returns the authority of a derived address.
func ProvenBy(proof AuthorityProof) Authority {
	return Authority{Proof: &proof}
}

// Key returns the address this authority acts as.
func (a Authority) Key() (solana.PublicKey, error) {
	if a.Proof != nil {
		addr, err := a.Proof.Address()
		if err != nil {
			return solana.PublicKey{}, ErrAuthorityMismatch
		}
		return addr, nil
	}
	if a.Signer.IsZero() {
		return solana.PublicKey{}, ErrAuthorityMismatch
	}
	return a.Signer, nil
}

// Authorizes returns an error unless the authority acts as expected.
func (a Authority) Authorizes(expected solana.PublicKey) error {
	key, err := a.Key()
	if err != nil {
		return err
	}
	if !key.Equals(expected) {
		return ErrAuthorityMismatch
	}
	return nil
}
