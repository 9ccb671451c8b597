package domain

import (
	"github.com/shopspring/decimal"
)

const (
	// AccountStorageOverhead is the number of bytes charged for every account
	// on top of its data.
	AccountStorageOverhead = 128

	DefaultLamportsPerByteYear = 3480
)

var DefaultExemptionThreshold = decimal.NewFromFloat(2.0)

// Rent computes the reserve an account must hold to remain allocated.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  decimal.Decimal
}

// DefaultRent returns the rent parameters used when none are configured.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
	}
}

// MinimumBalance returns the reserve of an account holding space bytes of
// data.
func (r Rent) MinimumBalance(space uint64) uint64 {
	bytes := decimal.NewFromInt(int64(space + AccountStorageOverhead))
	perByte := decimal.NewFromInt(int64(r.LamportsPerByteYear))
	return uint64(bytes.Mul(perByte).Mul(r.ExemptionThreshold).Floor().IntPart())
}
