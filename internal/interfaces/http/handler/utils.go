package httphandler

import (
	"net/http"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/tdex-network/custody-daemon/internal/interfaces/http/middleware"
)

// caller returns the verified signer of the request or aborts it.
func caller(c *gin.Context) (solana.PublicKey, bool) {
	signer, ok := middleware.Signer(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			Error: "missing request signer",
			Code:  "UNAUTHENTICATED",
		})
	}
	return signer, ok
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, "invalid request body: %s", err)
		return false
	}
	return true
}

func parseKeyParam(c *gin.Context, name string) (solana.PublicKey, bool) {
	key, err := solana.PublicKeyFromBase58(c.Param(name))
	if err != nil {
		badRequest(c, "invalid %s: %s", name, err)
		return solana.PublicKey{}, false
	}
	return key, true
}

// parseKeyQuery returns nil if the query parameter is not set.
func parseKeyQuery(c *gin.Context, name string) (*solana.PublicKey, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, true
	}
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		badRequest(c, "invalid %s: %s", name, err)
		return nil, false
	}
	return &key, true
}

func parseSeedParam(c *gin.Context) (uint64, bool) {
	seed, err := strconv.ParseUint(c.Param("seed"), 10, 64)
	if err != nil {
		badRequest(c, "invalid seed: %s", err)
		return 0, false
	}
	return seed, true
}

func requireKeys(c *gin.Context, keys map[string]solana.PublicKey) bool {
	for name, key := range keys {
		if key.IsZero() {
			badRequest(c, "missing %s", name)
			return false
		}
	}
	return true
}
