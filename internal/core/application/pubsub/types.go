package pubsub

import "errors"

var (
	ErrInvalidEvent     = errors.New("invalid webhook event type")
	ErrMissingWebhookID = errors.New("missing webhook id")
)

type Webhook struct {
	Event    string
	Endpoint string
	Secret   string
}

type WebhookInfo struct {
	ID       string `json:"id"`
	Event    string `json:"event"`
	Endpoint string `json:"endpoint"`
	Secured  bool   `json:"is_secured"`
}
