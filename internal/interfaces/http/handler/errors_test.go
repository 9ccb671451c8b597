package httphandler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/application/account"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	pubsubinfra "github.com/tdex-network/custody-daemon/internal/infrastructure/pubsub"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{domain.ErrVaultAlreadyInitialized, http.StatusConflict, "ALREADY_INITIALIZED"},
		{domain.ErrEscrowAlreadyExists, http.StatusConflict, "ALREADY_INITIALIZED"},
		{domain.ErrEscrowClosed, http.StatusConflict, "STALE_STATE"},
		{domain.ErrVaultNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrEscrowNotFound, http.StatusNotFound, "NOT_FOUND"},
		{pubsubinfra.ErrSubscriptionNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrNotOwner, http.StatusForbidden, "UNAUTHORIZED"},
		{domain.ErrAuthorityMismatch, http.StatusForbidden, "UNAUTHORIZED"},
		{account.ErrFaucetDisabled, http.StatusForbidden, "UNAUTHORIZED"},
		{
			fmt.Errorf("%w: 10 available", domain.ErrReserveViolation),
			http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE",
		},
		{domain.ErrAssetMismatch, http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE"},
		{domain.ErrUnsupportedAsset, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{domain.ErrDerivationExhausted, http.StatusUnprocessableEntity, "DERIVATION_EXHAUSTED"},
		{domain.ErrAmountOverflow, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{pubsubinfra.ErrInvalidEndpoint, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL"},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.expectedCode, func(t *testing.T) {
			status, code := statusFromError(tt.err)
			require.Equal(t, tt.expectedStatus, status, tt.err.Error())
			require.Equal(t, tt.expectedCode, code)
		})
	}
}
