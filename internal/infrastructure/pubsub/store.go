package pubsub

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/timshannon/badgerhold/v4"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
)

const subscriptionsDir = "pubsub"

// store persists subscriptions in a dedicated badger db, in memory if no
// datadir is given.
type store struct {
	db *badgerhold.Store
}

func newStore(datadir string, logger badger.Logger) (*store, error) {
	var dbDir string
	if len(datadir) > 0 {
		dbDir = filepath.Join(datadir, subscriptionsDir)
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	if len(dbDir) <= 0 {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, fmt.Errorf("opening subscriptions db: %w", err)
	}
	return &store{db}, nil
}

func (s *store) add(sub *Subscription) error {
	return s.db.Insert(sub.ID, *sub)
}

func (s *store) remove(id string) error {
	if err := s.db.Delete(id, Subscription{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return ErrSubscriptionNotFound
		}
		return err
	}
	return nil
}

func (s *store) find(event, endpoint string) (*Subscription, error) {
	var subs []Subscription
	query := badgerhold.Where("Event").Eq(event).Index("Event").
		And("Endpoint").Eq(endpoint)
	if err := s.db.Find(&subs, query); err != nil {
		return nil, err
	}
	if len(subs) <= 0 {
		return nil, nil
	}
	return &subs[0], nil
}

// getForTopic returns the subscriptions for the given topic sorted by id. The
// unspecified topic matches all subscriptions.
func (s *store) getForTopic(topic string) (subscriptions, error) {
	var query *badgerhold.Query
	if topic == ports.UnspecifiedTopic {
		query = &badgerhold.Query{}
	} else {
		query = badgerhold.Where("Event").Eq(topic).Index("Event")
	}

	var subs []Subscription
	if err := s.db.Find(&subs, query.SortBy("ID")); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *store) close() error {
	return s.db.Close()
}
