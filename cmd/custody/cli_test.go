package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/pkg/reqauth"
)

func TestParseSol(t *testing.T) {
	tests := []struct {
		amount   string
		expected uint64
	}{
		{"1", 1_000_000_000},
		{"0.5", 500_000_000},
		{"0.000000001", 1},
		{"12.345", 12_345_000_000},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.amount, func(t *testing.T) {
			lamports, err := parseSol(tt.amount)
			require.NoError(t, err)
			require.Equal(t, tt.expected, lamports)
			require.Equal(t, tt.amount, formatSol(lamports))
		})
	}
}

func TestFailingParseSol(t *testing.T) {
	for _, amount := range []string{"", "abc", "0", "-1", "0.0000000001"} {
		_, err := parseSol(amount)
		require.Error(t, err, amount)
	}
}

func TestKeypairFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "id.json")
	key := solana.NewWallet().PrivateKey

	require.NoError(t, writeKeypair(path, key))

	loaded, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	require.NoError(t, err)
	require.Equal(t, key.PublicKey(), loaded.PublicKey())
}

func TestDaemonClient(t *testing.T) {
	key := solana.NewWallet().PrivateKey

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			signer, err := reqauth.Verify(
				reqauth.Headers{
					Signer:    r.Header.Get(reqauth.SignerHeader),
					Timestamp: r.Header.Get(reqauth.TimestampHeader),
					Signature: r.Header.Get(reqauth.SignatureHeader),
				},
				r.Method, r.URL.Path, body, time.Now(), time.Minute,
			)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				//nolint
				json.NewEncoder(w).Encode(errorResponse{err.Error(), "UNAUTHENTICATED"})
				return
			}
			if r.URL.Path == "/v1/vault/withdraw" {
				w.WriteHeader(http.StatusForbidden)
				//nolint
				json.NewEncoder(w).Encode(errorResponse{"caller is not the owner", "UNAUTHORIZED"})
				return
			}
			//nolint
			json.NewEncoder(w).Encode(map[string]string{
				"signer":     signer.String(),
				"request_id": r.Header.Get(requestIDHeader),
			})
		},
	))
	t.Cleanup(server.Close)

	client := newDaemonClient(server.URL+"/", key)

	var resp map[string]string
	err := client.post("/v1/vault/deposit", map[string]interface{}{"amount": 1}, &resp)
	require.NoError(t, err)
	require.Equal(t, key.PublicKey().String(), resp["signer"])
	require.NotEmpty(t, resp["request_id"])

	err = client.post("/v1/vault/withdraw", map[string]interface{}{"amount": 1}, nil)
	var daemonErr *daemonError
	require.True(t, errors.As(err, &daemonErr))
	require.Equal(t, http.StatusForbidden, daemonErr.status)
	require.Equal(t, "UNAUTHORIZED", daemonErr.code)
	require.Contains(t, err.Error(), "caller is not the owner")
}
