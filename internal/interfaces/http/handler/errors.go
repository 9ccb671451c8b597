package httphandler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/application/account"
	"github.com/tdex-network/custody-daemon/internal/core/application/pubsub"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	pubsubinfra "github.com/tdex-network/custody-daemon/internal/infrastructure/pubsub"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	errs   []error
	status int
	code   string
}

// Order matters: the first matching group wins.
var errorMappings = []errorMapping{
	{
		errs:   []error{domain.ErrAlreadyInitialized},
		status: http.StatusConflict,
		code:   "ALREADY_INITIALIZED",
	},
	{
		errs:   []error{domain.ErrStaleState},
		status: http.StatusConflict,
		code:   "STALE_STATE",
	},
	{
		errs:   []error{domain.ErrNotFound, pubsubinfra.ErrSubscriptionNotFound},
		status: http.StatusNotFound,
		code:   "NOT_FOUND",
	},
	{
		errs:   []error{domain.ErrUnauthorized, account.ErrFaucetDisabled},
		status: http.StatusForbidden,
		code:   "UNAUTHORIZED",
	},
	{
		errs:   []error{domain.ErrDerivationExhausted},
		status: http.StatusUnprocessableEntity,
		code:   "DERIVATION_EXHAUSTED",
	},
	{
		errs:   []error{domain.ErrUnsupportedAsset},
		status: http.StatusBadRequest,
		code:   "INVALID_ARGUMENT",
	},
	{
		errs: []error{
			domain.ErrInsufficientBalance, domain.ErrAssetMismatch,
			domain.ErrAccountNotEmpty,
		},
		status: http.StatusUnprocessableEntity,
		code:   "INSUFFICIENT_BALANCE",
	},
	{
		errs: []error{
			domain.ErrInvalidAmount, domain.ErrInvalidSeeds,
			pubsub.ErrInvalidEvent, pubsub.ErrMissingWebhookID,
			pubsubinfra.ErrMissingEvent, pubsubinfra.ErrInvalidEndpoint,
		},
		status: http.StatusBadRequest,
		code:   "INVALID_ARGUMENT",
	},
}

func statusFromError(err error) (int, string) {
	for _, m := range errorMappings {
		for _, target := range m.errs {
			if errors.Is(err, target) {
				return m.status, m.code
			}
		}
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func fail(c *gin.Context, err error) {
	status, code := statusFromError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.WithError(err).Errorf("http: %s %s", c.Request.Method, c.FullPath())
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, Code: code})
}

func badRequest(c *gin.Context, format string, args ...interface{}) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error: fmt.Sprintf(format, args...),
		Code:  "INVALID_ARGUMENT",
	})
}
