package domain

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
)

// VaultState is the record tracking the vault of a single owner. The state
// account lives at ("state", owner) and the native holding account at
// ("vault", state address), both derived for the vault program.
type VaultState struct {
	VaultBump     uint8
	StateBump     uint8
	Owner         solana.PublicKey
	TotalDeposits uint64
}

type vaultStateLayout struct {
	Discriminator [DiscriminatorSize]byte
	VaultBump     uint8
	StateBump     uint8
	Owner         solana.PublicKey
	TotalDeposits uint64
}

// NewVaultState returns the state of a freshly initialized vault.
func NewVaultState(
	owner solana.PublicKey, stateBump, vaultBump uint8,
) *VaultState {
	return &VaultState{
		VaultBump: vaultBump,
		StateBump: stateBump,
		Owner:     owner,
	}
}

// DecodeVaultState parses the data of a vault state account.
func DecodeVaultState(data []byte) (*VaultState, error) {
	if len(data) != VaultStateSize {
		return nil, fmt.Errorf(
			"%w: vault state size, expected: %d, actual: %d",
			ErrInvalidAccountData, VaultStateSize, len(data),
		)
	}
	var layout vaultStateLayout
	if err := binary.Read(
		bytes.NewReader(data), binary.LittleEndian, &layout,
	); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccountData, err)
	}
	if layout.Discriminator != vaultStateDiscriminator {
		return nil, fmt.Errorf("%w: not a vault state", ErrInvalidAccountData)
	}
	return &VaultState{
		VaultBump:     layout.VaultBump,
		StateBump:     layout.StateBump,
		Owner:         layout.Owner,
		TotalDeposits: layout.TotalDeposits,
	}, nil
}

// Encode serializes the vault state prefixed by its type tag.
func (s *VaultState) Encode() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, VaultStateSize))
	_ = binary.Write(buf, binary.LittleEndian, vaultStateLayout{
		Discriminator: vaultStateDiscriminator,
		VaultBump:     s.VaultBump,
		StateBump:     s.StateBump,
		Owner:         s.Owner,
		TotalDeposits: s.TotalDeposits,
	})
	return buf.Bytes()
}

// Authorize returns an error if caller is not the vault's owner.
func (s *VaultState) Authorize(caller solana.PublicKey) error {
	if !s.Owner.Equals(caller) {
		return ErrNotOwner
	}
	return nil
}

// RecordDeposit increments the deposits counter. The counter never decreases.
func (s *VaultState) RecordDeposit(amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if amount > math.MaxUint64-s.TotalDeposits {
		return ErrAmountOverflow
	}
	s.TotalDeposits += amount
	return nil
}

// StateAddress re-derives the address of the state account.
func (s *VaultState) StateAddress(d Deriver) (*DerivedAddress, error) {
	return d.Rederive(StateNamespace, s.StateBump, s.Owner.Bytes())
}

// VaultAddress re-derives the address of the native holding account.
func (s *VaultState) VaultAddress(d Deriver) (*DerivedAddress, error) {
	state, err := s.StateAddress(d)
	if err != nil {
		return nil, err
	}
	return d.Rederive(VaultNamespace, s.VaultBump, state.Address.Bytes())
}
