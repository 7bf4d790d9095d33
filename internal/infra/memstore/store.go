// Package memstore is an in-process LeadStore used for local development
// when Supabase is not configured, and as a collaborator in tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/boddenberg/leads-crm-go/internal/domain"

	"github.com/google/uuid"
)

// Store keeps leads in memory. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	leads map[string]domain.Lead
	now   func() time.Time
}

// New creates an empty store. Seed leads are copied in as given.
func New(seed ...domain.Lead) *Store {
	s := &Store{
		leads: make(map[string]domain.Lead, len(seed)),
		now:   time.Now,
	}
	for _, l := range seed {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		s.leads[l.ID] = l.Clone()
	}
	return s
}

// WithClock replaces the clock used to stamp created_at.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// ListLeads returns a copy of every lead, newest first.
func (s *Store) ListLeads(_ context.Context) ([]domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, l.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CreateLead stores a new lead with a fresh id and creation time.
func (s *Store) CreateLead(_ context.Context, in *domain.LeadInput) error {
	if in == nil || in.Name == "" {
		return &domain.ErrValidation{Field: "name", Message: "Nome é obrigatório"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := apply(domain.Lead{ID: uuid.NewString(), CreatedAt: s.now().UTC()}, in)
	s.leads[l.ID] = l
	return nil
}

// UpdateLead replaces the mutable fields of an existing lead.
func (s *Store) UpdateLead(_ context.Context, id string, in *domain.LeadInput) error {
	if in == nil || in.Name == "" {
		return &domain.ErrValidation{Field: "name", Message: "Nome é obrigatório"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok {
		return &domain.ErrNotFound{Resource: "lead", ID: id}
	}
	s.leads[id] = apply(l, in)
	return nil
}

// DeleteLead removes a lead.
func (s *Store) DeleteLead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leads[id]; !ok {
		return &domain.ErrNotFound{Resource: "lead", ID: id}
	}
	delete(s.leads, id)
	return nil
}

// Len returns the number of stored leads.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}

func apply(l domain.Lead, in *domain.LeadInput) domain.Lead {
	stage := in.Stage
	l.Name = in.Name
	l.Email = in.Email
	l.Phone = in.Phone
	l.Company = in.Company
	l.Source = in.Source
	l.Notes = in.Notes
	l.Stage = &stage
	return l.Clone()
}
