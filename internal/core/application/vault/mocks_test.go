package vault_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
)

type mockPubSub struct {
	mock.Mock

	lock      sync.Mutex
	published map[string]int
}

func (m *mockPubSub) Subscribe(topic, endpoint, secret string) (string, error) {
	args := m.Called(topic, endpoint, secret)
	return args.String(0), args.Error(1)
}

func (m *mockPubSub) Unsubscribe(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *mockPubSub) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	args := m.Called(topic)

	var res []ports.Subscription
	if a := args.Get(0); a != nil {
		res = a.([]ports.Subscription)
	}
	return res
}

func (m *mockPubSub) Publish(topic, message string) error {
	args := m.Called(topic, message)

	m.lock.Lock()
	defer m.lock.Unlock()
	if m.published == nil {
		m.published = make(map[string]int)
	}
	m.published[topic]++
	return args.Error(0)
}

// requirePublished waits for events to be published in background.
func (m *mockPubSub) requirePublished(t *testing.T, topic string, count int) {
	require.Eventually(t, func() bool {
		m.lock.Lock()
		defer m.lock.Unlock()
		return m.published[topic] == count
	}, 2*time.Second, 10*time.Millisecond)
}

func (m *mockPubSub) Close() error {
	args := m.Called()
	return args.Error(0)
}
