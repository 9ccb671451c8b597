package domain

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
)

const (
	// MaxSeeds is the max number of seeds, bump included, of a derived address.
	MaxSeeds = 16
	// MaxSeedLength is the max length of a single seed.
	MaxSeedLength = 32
)

// DerivedAddress is a program derived address along with everything needed
// to reproduce it: the namespace tag, the parent components and the bump.
type DerivedAddress struct {
	ProgramID  solana.PublicKey
	Namespace  string
	Components [][]byte
	Bump       uint8
	Address    solana.PublicKey
}

// Seeds returns the exact seeds, trailing bump included, that derive the
// address.
func (d DerivedAddress) Seeds() [][]byte {
	seeds := make([][]byte, 0, len(d.Components)+2)
	seeds = append(seeds, []byte(d.Namespace))
	seeds = append(seeds, d.Components...)
	return append(seeds, []byte{d.Bump})
}

// Proof returns the authority proof that lets the derived address act as
// transfer authority.
func (d DerivedAddress) Proof() AuthorityProof {
	return AuthorityProof{ProgramID: d.ProgramID, Seeds: d.Seeds()}
}

// Deriver maps (namespace, components) to derived addresses of a program.
// Bumps are scanned downward from 255 to MinBump included.
type Deriver struct {
	ProgramID solana.PublicKey
	MinBump   uint8
}

// NewDeriver returns a Deriver scanning the whole bump range.
func NewDeriver(programID solana.PublicKey) Deriver {
	return Deriver{ProgramID: programID}
}

// Find returns the derived address for the first valid bump.
func (d Deriver) Find(
	namespace string, components ...[]byte,
) (*DerivedAddress, error) {
	if err := validateSeeds(namespace, components); err != nil {
		return nil, err
	}

	seeds := make([][]byte, 0, len(components)+2)
	seeds = append(seeds, []byte(namespace))
	seeds = append(seeds, components...)

	for bump := math.MaxUint8; bump >= int(d.MinBump); bump-- {
		addr, err := solana.CreateProgramAddress(
			append(seeds, []byte{uint8(bump)}), d.ProgramID,
		)
		if err != nil {
			continue
		}
		return &DerivedAddress{
			ProgramID:  d.ProgramID,
			Namespace:  namespace,
			Components: components,
			Bump:       uint8(bump),
			Address:    addr,
		}, nil
	}

	return nil, fmt.Errorf(
		"%w: namespace %s, bump range [%d, %d]",
		ErrDerivationExhausted, namespace, d.MinBump, math.MaxUint8,
	)
}

// Rederive reproduces the derived address from a persisted bump without
// scanning.
func (d Deriver) Rederive(
	namespace string, bump uint8, components ...[]byte,
) (*DerivedAddress, error) {
	if err := validateSeeds(namespace, components); err != nil {
		return nil, err
	}

	derived := &DerivedAddress{
		ProgramID:  d.ProgramID,
		Namespace:  namespace,
		Components: components,
		Bump:       bump,
	}
	addr, err := solana.CreateProgramAddress(derived.Seeds(), d.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSeeds, err)
	}
	derived.Address = addr
	return derived, nil
}

// SeedBytes encodes a numeric seed as 8 little endian bytes.
func SeedBytes(seed uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, seed)
	return buf
}

func validateSeeds(namespace string, components [][]byte) error {
	if len(components)+2 > MaxSeeds {
		return fmt.Errorf("%w: too many seeds", ErrInvalidSeeds)
	}
	if len(namespace) <= 0 || len(namespace) > MaxSeedLength {
		return fmt.Errorf("%w: namespace length", ErrInvalidSeeds)
	}
	for _, c := range components {
		if len(c) > MaxSeedLength {
			return fmt.Errorf("%w: seed exceeds %d bytes", ErrInvalidSeeds, MaxSeedLength)
		}
	}
	return nil
}
