// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/kinograph/kinograph/internal/config"
	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/metrics"
)

const stateKeyPrefix = "assistant:"

// ErrNotFound is returned when no state exists for a session ID.
var ErrNotFound = errors.New("session not found")

// Store is a BadgerDB-backed session store. Entries carry the
// configured TTL so abandoned sessions expire on their own; the value
// log still needs periodic GC (see GCService).
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// Open opens (or creates) the badger database at the configured path.
func Open(cfg config.SessionConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store %s: %w", cfg.Path, err)
	}
	return &Store{db: db, ttl: cfg.TTL}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// NewState creates and persists a fresh session.
func (s *Store) NewState() (*State, error) {
	st := &State{ID: uuid.NewString(), UpdatedAt: time.Now().UTC()}
	if err := s.Put(st); err != nil {
		return nil, err
	}
	metrics.SessionsCreated.Inc()
	return st, nil
}

// Get loads the state for id.
func (s *Store) Get(id string) (*State, error) {
	var st State
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(stateKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &st)
		})
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// GetOrCreate loads the state for id, or creates a fresh session when
// id is empty or unknown (expired sessions look unknown too).
func (s *Store) GetOrCreate(id string) (*State, error) {
	if id != "" {
		st, err := s.Get(id)
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return s.NewState()
}

// Put persists the state and refreshes its TTL.
func (s *Store) Put(st *State) error {
	st.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(stateKeyPrefix+st.ID), data).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
}

// Delete removes the state for id. Deleting an absent session is not
// an error.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(stateKeyPrefix + id))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

// GCService runs badger value-log garbage collection on a timer. It
// implements suture.Service.
type GCService struct {
	store    *Store
	interval time.Duration
}

// NewGCService wraps store with a periodic value-log GC loop.
func NewGCService(store *Store, interval time.Duration) *GCService {
	return &GCService{store: store, interval: interval}
}

// Serve runs until ctx is cancelled. badger returns ErrNoRewrite when
// a GC pass found nothing to do; that is the common case.
func (g *GCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for {
				err := g.store.db.RunValueLogGC(0.5)
				if err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						logging.Warn().Err(err).Msg("Session store GC pass failed")
					}
					break
				}
			}
		}
	}
}

func (g *GCService) String() string { return "session-gc" }
