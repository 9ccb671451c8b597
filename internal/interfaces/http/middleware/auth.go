package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/interfaces/http/permissions"
	"github.com/tdex-network/custody-daemon/pkg/reqauth"
)

const (
	signerKey = "custody.signer"

	// MaxBodySize is the largest request body accepted by restricted routes.
	MaxBodySize = 1 << 20
)

// Auth verifies the signature of requests to restricted routes and stores
// the signer in the gin context. A signature is accepted only once. Webhook
// routes are further restricted to the operator key, if any.
func Auth(
	maxSkew time.Duration, operator *solana.PublicKey,
) gin.HandlerFunc {
	whitelist := permissions.Whitelist()
	permissionMap := permissions.AllPermissionsByRoute()
	replayGuard := reqauth.NewReplayGuard(maxSkew)

	return func(c *gin.Context) {
		route := permissions.Route(c.Request.Method, c.FullPath())
		if _, ok := whitelist[route]; ok || c.FullPath() == "" {
			c.Next()
			return
		}

		op, ok := permissionMap[route]
		if !ok {
			log.Warnf("%s: unknown permissions required for route", route)
			abort(c, http.StatusForbidden, "FORBIDDEN", "unknown route permissions")
			return
		}

		body, err := io.ReadAll(
			http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodySize),
		)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				abort(
					c, http.StatusRequestEntityTooLarge, "BAD_REQUEST",
					"request body too large",
				)
				return
			}
			abort(c, http.StatusBadRequest, "BAD_REQUEST", "failed to read request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		headers := reqauth.Headers{
			Signer:    c.GetHeader(reqauth.SignerHeader),
			Timestamp: c.GetHeader(reqauth.TimestampHeader),
			Signature: c.GetHeader(reqauth.SignatureHeader),
		}
		now := time.Now()
		signer, err := reqauth.Verify(
			headers, c.Request.Method, c.Request.URL.Path, body, now, maxSkew,
		)
		if err != nil {
			abort(c, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error())
			return
		}
		if err := replayGuard.Use(headers, now); err != nil {
			log.WithField("signer", signer.String()).Warn("rejected replayed request")
			abort(c, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error())
			return
		}

		if op.RequiresOperator() {
			if operator == nil || !operator.Equals(signer) {
				abort(c, http.StatusForbidden, "UNAUTHORIZED", "operator only")
				return
			}
		}

		c.Set(signerKey, signer)
		c.Next()
	}
}

// Signer returns the verified signer of the request.
func Signer(c *gin.Context) (solana.PublicKey, bool) {
	v, ok := c.Get(signerKey)
	if !ok {
		return solana.PublicKey{}, false
	}
	signer, ok := v.(solana.PublicKey)
	return signer, ok
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}
