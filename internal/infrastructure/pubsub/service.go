package pubsub

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
)

var (
	// MaxNumOfFailingRequests ...
	MaxNumOfFailingRequests = 10
	// FailingRatio ...
	FailingRatio = 0.6
)

type service struct {
	store      *store
	httpClient *client
	cb         *gobreaker.CircuitBreaker
	limiter    ratelimit.Limiter
}

// NewService returns a webhook based pubsub. Subscriptions are persisted in
// datadir, or kept in memory if empty. Outgoing requests are capped at
// maxRequestsPerSecond.
func NewService(
	datadir string, requestTimeout time.Duration, maxRequestsPerSecond int,
	logger badger.Logger,
) (ports.PubSub, error) {
	if requestTimeout <= 0 {
		return nil, fmt.Errorf("request timeout must be positive")
	}
	if maxRequestsPerSecond <= 0 {
		return nil, fmt.Errorf("rate limit must be positive")
	}

	store, err := newStore(datadir, logger)
	if err != nil {
		return nil, err
	}

	return &service{
		store:      store,
		httpClient: newHTTPClient(requestTimeout),
		cb:         newCircuitBreaker(),
		limiter:    ratelimit.New(maxRequestsPerSecond),
	}, nil
}

func (ws *service) Subscribe(topic, endpoint, secret string) (string, error) {
	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return "", err
	}

	existing, err := ws.store.find(sub.Event, sub.Endpoint)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}

	if err := ws.store.add(sub); err != nil {
		return "", err
	}
	return sub.ID, nil
}

func (ws *service) Unsubscribe(id string) error {
	return ws.store.remove(id)
}

func (ws *service) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	return ws.listSubscriptionsForTopic(topic).toPortable()
}

func (ws *service) Publish(topic string, message string) error {
	subs := ws.listSubscriptionsForTopic(topic)

	eg := &errgroup.Group{}
	for i := range subs {
		sub := subs[i]
		eg.Go(func() error { return ws.doRequest(sub, message) })
	}
	return eg.Wait()
}

func (ws *service) Close() error {
	return ws.store.close()
}

func (ws *service) listSubscriptionsForTopic(topic string) subscriptions {
	subs, err := ws.store.getForTopic(topic)
	if err != nil {
		log.WithError(err).Warnf("pubsub: failed to get subscriptions for %s", topic)
		return nil
	}
	if topic != ports.AnyTopic && topic != ports.UnspecifiedTopic {
		subsForAnyTopic, err := ws.store.getForTopic(ports.AnyTopic)
		if err != nil {
			log.WithError(err).Warn("pubsub: failed to get catch-all subscriptions")
		}
		subs = append(subs, subsForAnyTopic...)
	}
	return subs
}

func (ws *service) doRequest(sub Subscription, payload string) error {
	ws.limiter.Take()

	_, err := ws.cb.Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if sub.IsSecured() {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"event": sub.Event,
				"iat":   time.Now().Unix(),
			})
			tokenString, err := token.SignedString([]byte(sub.Secret))
			if err != nil {
				return nil, err
			}
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		status, resp, err := ws.httpClient.post(sub.Endpoint, payload, headers)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("%w %d: %s", ErrUnexpectedStatusCode, status, resp)
		}
		return nil, nil
	})
	if err != nil {
		log.WithError(err).WithField("endpoint", sub.Endpoint).Debug(
			"pubsub: webhook delivery failed",
		)
	}
	return err
}

// newCircuitBreaker returns a breaker that trips once more than
// MaxNumOfFailingRequests requests were made and the failing ratio reached
// FailingRatio.
func newCircuitBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "webhooks",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return int(counts.Requests) > MaxNumOfFailingRequests && ratio >= FailingRatio
		},
	})
}
