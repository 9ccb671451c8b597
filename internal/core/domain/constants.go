package domain

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// Namespaces tag the first seed of every derived address.
const (
	StateNamespace  = "state"
	VaultNamespace  = "vault"
	EscrowNamespace = "escrow"
)

const (
	// DiscriminatorSize is the length of the type tag prefixing program
	// records.
	DiscriminatorSize = 8
	// TokenAccountSize is the length of a token account layout.
	TokenAccountSize = 165
	// VaultStateSize is tag | vault_bump | state_bump | owner | total_deposits.
	VaultStateSize = DiscriminatorSize + 1 + 1 + 32 + 8
	// EscrowSize is tag | maker | token_a | token_b | amount_a | amount_b | bump.
	EscrowSize = DiscriminatorSize + 32*3 + 8*2 + 1
)

var (
	// NativeAsset identifies the lamports held directly by accounts.
	NativeAsset = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	// SystemProgramID owns wallets and native holding accounts.
	SystemProgramID = solana.SystemProgramID
	// TokenProgramID owns token accounts.
	TokenProgramID = solana.TokenProgramID

	vaultStateDiscriminator = accountDiscriminator("VaultState")
	escrowDiscriminator     = accountDiscriminator("Escrow")
)

func accountDiscriminator(name string) [DiscriminatorSize]byte {
	var tag [DiscriminatorSize]byte
	sum := sha256.Sum256([]byte("account:" + name))
	copy(tag[:], sum[:DiscriminatorSize])
	return tag
}
