package ports

const AnyTopic = "*"
const UnspecifiedTopic = ""

type Subscription interface {
	Topic() string
	Id() string
	IsSecured() bool
	NotifyAt() string
}

// PubSub defines the methods of a pubsub service notifying subscribers of
// the events of the daemon.
type PubSub interface {
	// Subscribe adds a new subscription for the requested topic.
	Subscribe(topic, endpoint, secret string) (string, error)
	// Unsubscribe removes the subscription with the given id.
	Unsubscribe(id string) error
	// ListSubscriptionsForTopic returns the info of all clients subscribed for
	// a certain topic. The unspecified topic lists all of them.
	ListSubscriptionsForTopic(topic string) []Subscription
	// Publish publishes a message for a certain topic. All clients subscribed
	// for such topic, or for any topic, receive the message.
	Publish(topic string, message string) error
	// Close should be used to gracefully close the connection with the store.
	Close() error
}
