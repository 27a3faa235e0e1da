package snapshotstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"github.com/cockroachdb/pebble"

	"matchengine/domain/orderbook"
	kafkaclient "matchengine/infra/kafka"
)

// Store persists BookSnapshot values keyed by sequence number in a
// pebble database, and fires a compact change notification over Kafka
// for every snapshot it persists.
type Store struct {
	db       *pebble.DB
	notifier *kafkaclient.Producer
	topic    string
}

// Notification is the compact payload published to Kafka whenever a new
// snapshot is durably stored. Consumers use it to know a fresher snapshot
// exists without polling pebble directly.
type Notification struct {
	Seq       uint64
	BidLevels int
	AskLevels int
}

// Open opens (or creates) the pebble database at dir. notifier may be nil,
// in which case Persist skips the Kafka publish step — useful for tests
// and for embedding Store without a broker available.
func Open(dir string, notifier *kafkaclient.Producer, topic string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("snapshotstore: open %s: %w", dir, err)
	}
	return &Store{db: db, notifier: notifier, topic: topic}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Persist writes snap durably and, if a notifier is configured, publishes
// a Notification for it. The Kafka publish is best-effort: a failure to
// notify does not roll back the pebble write, since the write is the
// durability guarantee and the notification is only a convenience.
func (s *Store) Persist(ctx context.Context, snap *orderbook.BookSnapshot) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("snapshotstore: encode seq %d: %w", snap.Seq, err)
	}

	if err := s.db.Set(keyFor(snap.Seq), buf.Bytes(), pebble.Sync); err != nil {
		return fmt.Errorf("snapshotstore: persist seq %d: %w", snap.Seq, err)
	}

	if s.notifier == nil {
		return nil
	}

	notif := Notification{
		Seq:       snap.Seq,
		BidLevels: len(snap.Bids),
		AskLevels: len(snap.Asks),
	}
	var nbuf bytes.Buffer
	if err := gob.NewEncoder(&nbuf).Encode(notif); err != nil {
		return nil // notification is best-effort; the persisted write already succeeded
	}
	_ = s.notifier.Send(ctx, keyFor(snap.Seq), nbuf.Bytes())
	return nil
}

// Load returns the snapshot persisted under seq, if any.
func (s *Store) Load(seq uint64) (*orderbook.BookSnapshot, error) {
	val, closer, err := s.db.Get(keyFor(seq))
	if err != nil {
		return nil, fmt.Errorf("snapshotstore: load seq %d: %w", seq, err)
	}
	defer closer.Close()

	var snap orderbook.BookSnapshot
	if err := gob.NewDecoder(bytes.NewReader(val)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("snapshotstore: decode seq %d: %w", seq, err)
	}
	return &snap, nil
}

// Latest returns the most recently persisted snapshot, or nil if none has
// been persisted yet.
func (s *Store) Latest() (*orderbook.BookSnapshot, error) {
	// "snapshot0" is the smallest key strictly greater than every key with
	// the "snapshot/" prefix followed by arbitrary bytes, since '/' (0x2F)
	// sorts before '0' (0x30) at the first differing position.
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("snapshot/"),
		UpperBound: []byte("snapshot0"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	if !iter.Last() {
		return nil, nil
	}

	var snap orderbook.BookSnapshot
	if err := gob.NewDecoder(bytes.NewReader(iter.Value())).Decode(&snap); err != nil {
		return nil, fmt.Errorf("snapshotstore: decode latest: %w", err)
	}
	return &snap, nil
}

func keyFor(seq uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	return append([]byte("snapshot/"), buf[:]...)
}
