// Package store persists registrations. Both implementations share one error
// contract:
//   - sentinel.ErrNotFound (wrapped) when the registration does not exist
//   - nil on success
//   - a wrapped infrastructure error for anything else
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"eventreg/internal/registration/models"
	id "eventreg/pkg/domain"
	"eventreg/pkg/platform/sentinel"
)

type entry struct {
	registration *models.Registration
	seq          uint64
}

// InMemoryStore keeps registrations in memory for development and tests.
// Records are copied on the way in and out.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.RegistrationID]entry
	nextSeq uint64
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{entries: make(map[id.RegistrationID]entry)}
}

func (s *InMemoryStore) Create(_ context.Context, registration *models.Registration) error {
	if registration == nil {
		return fmt.Errorf("registration is required: %w", sentinel.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[registration.ID]; exists {
		return fmt.Errorf("registration %s exists: %w", registration.ID, sentinel.ErrConflict)
	}
	s.nextSeq++
	s.entries[registration.ID] = entry{registration: registration.Clone(), seq: s.nextSeq}
	return nil
}

// List returns every registration, newest first. Equal creation times fall
// back to insertion order, newest first.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.registration.CreatedAt.Equal(b.registration.CreatedAt) {
			return a.registration.CreatedAt.After(b.registration.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]*models.Registration, len(entries))
	for i, e := range entries {
		out[i] = e.registration.Clone()
	}
	return out, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, registrationID id.RegistrationID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[registrationID]
	if !ok {
		return nil, fmt.Errorf("registration not found: %w", sentinel.ErrNotFound)
	}
	return e.registration.Clone(), nil
}

// Update replaces the editable fields of an existing registration.
func (s *InMemoryStore) Update(_ context.Context, registration *models.Registration) error {
	if registration == nil {
		return fmt.Errorf("registration is required: %w", sentinel.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[registration.ID]
	if !ok {
		return fmt.Errorf("registration not found: %w", sentinel.ErrNotFound)
	}
	updated := registration.Clone()
	updated.CreatedAt = e.registration.CreatedAt
	s.entries[registration.ID] = entry{registration: updated, seq: e.seq}
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, registrationID id.RegistrationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[registrationID]; !ok {
		return fmt.Errorf("registration not found: %w", sentinel.ErrNotFound)
	}
	delete(s.entries, registrationID)
	return nil
}
