package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
)

const (
	EventVaultInitialized = "VAULT_INITIALIZED"
	EventVaultDeposit     = "VAULT_DEPOSIT"
	EventVaultWithdraw    = "VAULT_WITHDRAW"
	EventEscrowMade       = "ESCROW_MADE"
	EventEscrowTaken      = "ESCROW_TAKEN"
	EventEscrowRefunded   = "ESCROW_REFUNDED"
	EventAny              = ports.AnyTopic
)

var events = map[string]struct{}{
	EventVaultInitialized: {},
	EventVaultDeposit:     {},
	EventVaultWithdraw:    {},
	EventEscrowMade:       {},
	EventEscrowTaken:      {},
	EventEscrowRefunded:   {},
	EventAny:              {},
}

type Service struct {
	pubsub ports.PubSub
	wg     sync.WaitGroup
}

func NewService(pubsub ports.PubSub) (*Service, error) {
	if pubsub == nil {
		return nil, fmt.Errorf("missing pubsub")
	}
	return &Service{pubsub: pubsub}, nil
}

func (s *Service) AddWebhook(_ context.Context, hook Webhook) (string, error) {
	if !isValidEvent(hook.Event) {
		return "", ErrInvalidEvent
	}
	return s.pubsub.Subscribe(hook.Event, hook.Endpoint, hook.Secret)
}

func (s *Service) RemoveWebhook(_ context.Context, id string) error {
	if len(id) <= 0 {
		return ErrMissingWebhookID
	}
	return s.pubsub.Unsubscribe(id)
}

// ListWebhooks returns the webhooks notified for the given event. An empty
// event lists them all.
func (s *Service) ListWebhooks(
	_ context.Context, event string,
) ([]WebhookInfo, error) {
	if event != ports.UnspecifiedTopic && !isValidEvent(event) {
		return nil, ErrInvalidEvent
	}
	subs := s.pubsub.ListSubscriptionsForTopic(event)
	webhooks := make([]WebhookInfo, 0, len(subs))
	for _, sub := range subs {
		webhooks = append(webhooks, WebhookInfo{
			ID:       sub.Id(),
			Event:    sub.Topic(),
			Endpoint: sub.NotifyAt(),
			Secured:  sub.IsSecured(),
		})
	}
	return webhooks, nil
}

func (s *Service) PublishVaultInitializedEvent(
	vault *domain.VaultState, stateAddress, vaultAddress solana.PublicKey,
	balance uint64,
) error {
	event := EventVaultInitialized
	payload := map[string]interface{}{
		"event": event,
		"vault": getVaultPayload(vault, stateAddress, vaultAddress),
		"balance": map[string]uint64{
			"lamports": balance,
		},
	}
	return s.publish(event, payload)
}

func (s *Service) PublishVaultDepositEvent(
	vault *domain.VaultState, stateAddress, vaultAddress solana.PublicKey,
	amount, balance uint64,
) error {
	event := EventVaultDeposit
	payload := map[string]interface{}{
		"event":            event,
		"vault":            getVaultPayload(vault, stateAddress, vaultAddress),
		"amount_deposited": amount,
		"balance": map[string]uint64{
			"lamports": balance,
		},
	}
	return s.publish(event, payload)
}

func (s *Service) PublishVaultWithdrawEvent(
	vault *domain.VaultState, stateAddress, vaultAddress solana.PublicKey,
	amount, balance uint64,
) error {
	event := EventVaultWithdraw
	payload := map[string]interface{}{
		"event":            event,
		"vault":            getVaultPayload(vault, stateAddress, vaultAddress),
		"amount_withdrawn": amount,
		"balance": map[string]uint64{
			"lamports": balance,
		},
	}
	return s.publish(event, payload)
}

func (s *Service) PublishEscrowMadeEvent(escrow *domain.Escrow) error {
	event := EventEscrowMade
	payload := map[string]interface{}{
		"event":  event,
		"escrow": getEscrowPayload(escrow),
	}
	return s.publish(event, payload)
}

// PublishEscrowClosedEvent notifies that an escrow was taken or refunded,
// depending on the status of the receipt.
func (s *Service) PublishEscrowClosedEvent(receipt *domain.EscrowReceipt) error {
	event := EventEscrowRefunded
	if receipt.Status == domain.EscrowTaken {
		event = EventEscrowTaken
	}
	payload := map[string]interface{}{
		"event":   event,
		"receipt": getReceiptPayload(receipt),
	}
	return s.publish(event, payload)
}

// Go runs publishFn in background so that webhook delivery never delays an
// operation. Close waits for pending ones to return.
func (s *Service) Go(publishFn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		publishFn()
	}()
}

func (s *Service) Close() {
	s.wg.Wait()
	//nolint
	s.pubsub.Close()
}

func (s *Service) publish(event string, payload map[string]interface{}) error {
	message, _ := json.Marshal(payload)
	return s.pubsub.Publish(event, string(message))
}

func isValidEvent(event string) bool {
	_, ok := events[event]
	return ok
}
