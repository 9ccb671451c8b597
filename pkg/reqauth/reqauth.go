// Package reqauth signs and verifies HTTP requests with ed25519 keys. The
// signature covers the method, path, unix timestamp and body of a request,
// one per line.
package reqauth

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
)

const (
	SignerHeader    = "X-Custody-Signer"
	TimestampHeader = "X-Custody-Timestamp"
	SignatureHeader = "X-Custody-Signature"
)

var (
	ErrMissingHeaders   = errors.New("missing authentication headers")
	ErrInvalidSigner    = errors.New("invalid signer key")
	ErrInvalidTimestamp = errors.New("invalid request timestamp")
	ErrExpiredRequest   = errors.New("request timestamp out of allowed skew")
	ErrInvalidSignature = errors.New("invalid request signature")
	ErrReplayedRequest  = errors.New("request signature already used")
)

// Headers holds the authentication headers of a request.
type Headers struct {
	Signer    string
	Timestamp string
	Signature string
}

// Map returns the headers keyed by name.
func (h Headers) Map() map[string]string {
	return map[string]string{
		SignerHeader:    h.Signer,
		TimestampHeader: h.Timestamp,
		SignatureHeader: h.Signature,
	}
}

// Payload returns the message signed for a request.
func Payload(method, path, timestamp string, body []byte) []byte {
	msg := make([]byte, 0, len(method)+len(path)+len(timestamp)+len(body)+3)
	msg = append(msg, method...)
	msg = append(msg, '\n')
	msg = append(msg, path...)
	msg = append(msg, '\n')
	msg = append(msg, timestamp...)
	msg = append(msg, '\n')
	return append(msg, body...)
}

// Sign returns the authentication headers of a request sent at the given
// time.
func Sign(
	key solana.PrivateKey, method, path string, body []byte, now time.Time,
) (*Headers, error) {
	timestamp := strconv.FormatInt(now.Unix(), 10)
	sig, err := key.Sign(Payload(method, path, timestamp, body))
	if err != nil {
		return nil, fmt.Errorf("signing request: %w", err)
	}
	return &Headers{
		Signer:    key.PublicKey().String(),
		Timestamp: timestamp,
		Signature: sig.String(),
	}, nil
}

// Verify checks the headers of a request received at the given time and
// returns the signer.
func Verify(
	h Headers, method, path string, body []byte,
	now time.Time, maxSkew time.Duration,
) (solana.PublicKey, error) {
	if h.Signer == "" || h.Timestamp == "" || h.Signature == "" {
		return solana.PublicKey{}, ErrMissingHeaders
	}

	signer, err := solana.PublicKeyFromBase58(h.Signer)
	if err != nil {
		return solana.PublicKey{}, ErrInvalidSigner
	}

	ts, err := strconv.ParseInt(h.Timestamp, 10, 64)
	if err != nil {
		return solana.PublicKey{}, ErrInvalidTimestamp
	}
	skew := now.Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > maxSkew {
		return solana.PublicKey{}, ErrExpiredRequest
	}

	sig, err := solana.SignatureFromBase58(h.Signature)
	if err != nil {
		return solana.PublicKey{}, ErrInvalidSignature
	}
	if !sig.Verify(signer, Payload(method, path, h.Timestamp, body)) {
		return solana.PublicKey{}, ErrInvalidSignature
	}
	return signer, nil
}

// ReplayGuard remembers the signatures of verified requests until their
// timestamp falls out of the allowed skew, and rejects any reuse meanwhile.
type ReplayGuard struct {
	lock    sync.Mutex
	maxSkew time.Duration
	seen    map[solana.Signature]time.Time
}

func NewReplayGuard(maxSkew time.Duration) *ReplayGuard {
	return &ReplayGuard{
		maxSkew: maxSkew,
		seen:    make(map[solana.Signature]time.Time),
	}
}

// Use marks the signature of already verified headers as used at the given
// time. It returns ErrReplayedRequest if the signature is still remembered.
func (g *ReplayGuard) Use(h Headers, now time.Time) error {
	sig, err := solana.SignatureFromBase58(h.Signature)
	if err != nil {
		return ErrInvalidSignature
	}
	ts, err := strconv.ParseInt(h.Timestamp, 10, 64)
	if err != nil {
		return ErrInvalidTimestamp
	}

	g.lock.Lock()
	defer g.lock.Unlock()

	for s, expiry := range g.seen {
		if now.After(expiry) {
			delete(g.seen, s)
		}
	}

	if _, ok := g.seen[sig]; ok {
		return ErrReplayedRequest
	}
	g.seen[sig] = time.Unix(ts, 0).Add(g.maxSkew)
	return nil
}

// Len returns the number of remembered signatures.
func (g *ReplayGuard) Len() int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return len(g.seen)
}
