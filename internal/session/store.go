package session

import (
	"errors"
	"fmt"
	"log"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a session key is absent or has expired.
var ErrNotFound = errors.New("session not found")

// Store is a TTL-bounded key-value store for in-flight session state.
// Entries expire after the configured TTL; expired sessions read as absent,
// which callers treat as a fresh session.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// Open creates a session store backed by a Badger database at dir.
// A non-positive ttl falls back to one hour. An empty dir opens an
// in-memory store, used by tests and the chat REPL.
func Open(dir string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	return &Store{db: db, ttl: ttl}, nil
}

// Get returns the value stored under key, or ErrNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading session %q: %w", key, err)
	}
	return val, nil
}

// Set writes val under key, resetting the entry's TTL. Every turn touches
// its session, so active conversations never expire mid-dialogue.
func (s *Store) Set(key string, val []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), val).WithTTL(s.ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("writing session %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("deleting session %q: %w", key, err)
	}
	return nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		log.Printf("session: close: %v", err)
		return err
	}
	return nil
}
