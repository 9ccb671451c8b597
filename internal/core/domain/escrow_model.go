package domain

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	// EscrowCreated is the status of an escrow waiting to be taken or refunded.
	EscrowCreated EscrowStatus = iota
	// EscrowTaken is the terminal status of a swapped escrow.
	EscrowTaken
	// EscrowRefunded is the terminal status of a cancelled escrow.
	EscrowRefunded
)

var escrowStatusStr = map[EscrowStatus]string{
	EscrowCreated:  "CREATED",
	EscrowTaken:    "TAKEN",
	EscrowRefunded: "REFUNDED",
}

// EscrowStatus is the state of an escrow in its lifecycle.
type EscrowStatus uint8

func (s EscrowStatus) String() string {
	str, ok := escrowStatusStr[s]
	if !ok {
		return "UNKNOWN"
	}
	return str
}

// IsTerminal returns whether no further transition is possible.
func (s EscrowStatus) IsTerminal() bool {
	return s == EscrowTaken || s == EscrowRefunded
}

// Escrow is the offer of a maker to swap AmountA of TokenA for AmountB of
// TokenB. The record lives at ("escrow", maker, seed) of the escrow program,
// the offered tokens are held by the associated token account of the escrow
// address for TokenA.
type Escrow struct {
	Maker   solana.PublicKey
	TokenA  solana.PublicKey
	TokenB  solana.PublicKey
	AmountA uint64
	AmountB uint64
	Bump    uint8

	// Not persisted with the record, filled when loading it.
	Seed    uint64
	Address solana.PublicKey
}

type escrowLayout struct {
	Discriminator [DiscriminatorSize]byte
	Maker         solana.PublicKey
	TokenA        solana.PublicKey
	TokenB        solana.PublicKey
	AmountA       uint64
	AmountB       uint64
	Bump          uint8
}

// NewEscrow returns a new escrow offer, rejecting degenerate amounts and
// native asset legs.
func NewEscrow(
	maker, tokenA, tokenB solana.PublicKey, seed, amountA, amountB uint64,
) (*Escrow, error) {
	if amountA == 0 || amountB == 0 {
		return nil, ErrInvalidAmount
	}
	if tokenA.Equals(NativeAsset) || tokenB.Equals(NativeAsset) {
		return nil, ErrUnsupportedAsset
	}
	return &Escrow{
		Maker:   maker,
		TokenA:  tokenA,
		TokenB:  tokenB,
		AmountA: amountA,
		AmountB: amountB,
		Seed:    seed,
	}, nil
}

// DecodeEscrow parses the data of an escrow account.
func DecodeEscrow(data []byte) (*Escrow, error) {
	if len(data) != EscrowSize {
		return nil, fmt.Errorf(
			"%w: escrow size, expected: %d, actual: %d",
			ErrInvalidAccountData, EscrowSize, len(data),
		)
	}
	var layout escrowLayout
	if err := binary.Read(
		bytes.NewReader(data), binary.LittleEndian, &layout,
	); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccountData, err)
	}
	if layout.Discriminator != escrowDiscriminator {
		return nil, fmt.Errorf("%w: not an escrow", ErrInvalidAccountData)
	}
	return &Escrow{
		Maker:   layout.Maker,
		TokenA:  layout.TokenA,
		TokenB:  layout.TokenB,
		AmountA: layout.AmountA,
		AmountB: layout.AmountB,
		Bump:    layout.Bump,
	}, nil
}

// Encode serializes the escrow prefixed by its type tag.
func (e *Escrow) Encode() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, EscrowSize))
	_ = binary.Write(buf, binary.LittleEndian, escrowLayout{
		Discriminator: escrowDiscriminator,
		Maker:         e.Maker,
		TokenA:        e.TokenA,
		TokenB:        e.TokenB,
		AmountA:       e.AmountA,
		AmountB:       e.AmountB,
		Bump:          e.Bump,
	})
	return buf.Bytes()
}

// Authorize returns an error if caller is not the escrow's maker.
func (e *Escrow) Authorize(caller solana.PublicKey) error {
	if !e.Maker.Equals(caller) {
		return ErrNotOwner
	}
	return nil
}

// DerivedAddress re-derives the escrow address from the persisted bump. Its
// proof is the authority of the holding account.
func (e *Escrow) DerivedAddress(d Deriver) (*DerivedAddress, error) {
	return d.Rederive(
		EscrowNamespace, e.Bump, e.Maker.Bytes(), SeedBytes(e.Seed),
	)
}

// HoldingAddress returns the token account custodying the offered tokens.
func (e *Escrow) HoldingAddress() (solana.PublicKey, error) {
	return AssociatedTokenAddress(e.Address, e.TokenA)
}
