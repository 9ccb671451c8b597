package pubsub

import "errors"

var (
	ErrMissingEvent         = errors.New("missing event")
	ErrInvalidEndpoint      = errors.New("invalid webhook endpoint, must be a valid http(s) URI")
	ErrSubscriptionNotFound = errors.New("webhook not found")
	ErrUnexpectedStatusCode = errors.New("webhook endpoint replied with unexpected status")
)
