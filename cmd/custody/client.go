package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/tdex-network/custody-daemon/pkg/reqauth"
	"github.com/thanhpk/randstr"
	"github.com/urfave/cli/v2"
)

const requestIDHeader = "X-Request-Id"

// daemonClient sends JSON requests to custodyd, signed with the configured
// keypair.
type daemonClient struct {
	baseURL string
	key     solana.PrivateKey
	client  *http.Client
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// daemonError is a request rejected by the daemon.
type daemonError struct {
	status    int
	code      string
	msg       string
	requestID string
}

func (e *daemonError) Error() string {
	return fmt.Sprintf(
		"%s (%d %s, request %s)", e.msg, e.status, e.code, e.requestID,
	)
}

func getDaemonClient(_ *cli.Context) (*daemonClient, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	baseURL, ok := state["daemon_url"]
	if !ok || baseURL == "" {
		return nil, errors.New("set daemon_url with `config set daemon_url`")
	}
	keypairPath, ok := state["keypair"]
	if !ok || keypairPath == "" {
		return nil, errors.New("set keypair with `config set keypair` or run `keygen`")
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(keypairPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair: %w", err)
	}
	return newDaemonClient(baseURL, key), nil
}

func newDaemonClient(baseURL string, key solana.PrivateKey) *daemonClient {
	return &daemonClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		key:     key,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *daemonClient) get(path string, out interface{}) error {
	return c.do(http.MethodGet, path, nil, out)
}

func (c *daemonClient) post(path string, body, out interface{}) error {
	return c.do(http.MethodPost, path, body, out)
}

func (c *daemonClient) delete(path string) error {
	return c.do(http.MethodDelete, path, nil, nil)
}

func (c *daemonClient) do(method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	requestID := randstr.Hex(16)
	req.Header.Set(requestIDHeader, requestID)

	headers, err := reqauth.Sign(c.key, method, req.URL.Path, payload, time.Now())
	if err != nil {
		return err
	}
	for k, v := range headers.Map() {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to connect to daemon: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Error == "" {
			errResp.Error = strings.TrimSpace(string(respBody))
		}
		return &daemonError{
			status:    resp.StatusCode,
			code:      errResp.Code,
			msg:       errResp.Error,
			requestID: requestID,
		}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, out)
}
