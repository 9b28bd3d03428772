//go:build unit || e2e

package fake

import (
	"context"
	"encoding/json"
	"sync"

	"storefront/internal/domain/cart"
	"storefront/internal/usecase/shared"
)

// CartStore keeps sessions in memory with the same versioning contract as
// the redis store. States are copied through JSON so callers never share
// maps with the store.
type CartStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
	// ConflictsLeft makes the next Save calls fail with ErrCartConflict.
	ConflictsLeft int
	// LoadErr and SaveErr are returned when set.
	LoadErr error
	SaveErr error
	// RejectSave, when set, may fail a Save depending on what is written.
	RejectSave func(st *cart.State) error
	Saves      int
}

func NewCartStore() *CartStore {
	return &CartStore{sessions: map[string][]byte{}}
}

func (s *CartStore) Load(_ context.Context, sessionID string) (*cart.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	raw, ok := s.sessions[sessionID]
	if !ok {
		return cart.NewState(), nil
	}
	st := cart.NewState()
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *CartStore) Save(_ context.Context, sessionID string, st *cart.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if s.RejectSave != nil {
		if err := s.RejectSave(st); err != nil {
			return err
		}
	}
	if s.ConflictsLeft > 0 {
		s.ConflictsLeft--
		return shared.ErrCartConflict
	}

	var current int64
	if raw, ok := s.sessions[sessionID]; ok {
		var stored cart.State
		if err := json.Unmarshal(raw, &stored); err != nil {
			return err
		}
		current = stored.Version
	}
	if current != st.Version {
		return shared.ErrCartConflict
	}

	st.Version++
	raw, err := json.Marshal(st)
	if err != nil {
		st.Version--
		return err
	}
	s.sessions[sessionID] = raw
	s.Saves++
	return nil
}

// Put seeds a session, replacing whatever is stored.
func (s *CartStore) Put(sessionID string, st *cart.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(st)
	if err != nil {
		panic(err)
	}
	s.sessions[sessionID] = raw
}

// Get returns a copy of the stored session.
func (s *CartStore) Get(sessionID string) *cart.State {
	st, err := s.Load(context.Background(), sessionID)
	if err != nil {
		panic(err)
	}
	return st
}
