package service

import "github.com/boddenberg/leads-crm-go/internal/domain"

// Selection tracks the lead inspected in the detail panel. It never talks to
// the persistence collaborator.
type Selection struct {
	lead *domain.Lead
}

// Select inspects a snapshot of l. The lead does not have to be part of the
// current collection.
func (s *Selection) Select(l domain.Lead) {
	c := l.Clone()
	s.lead = &c
}

// Clear drops the selection.
func (s *Selection) Clear() {
	s.lead = nil
}

// Current returns the selected lead, or nil.
func (s *Selection) Current() *domain.Lead {
	return s.lead
}

// Is reports whether the lead with the given id is selected.
func (s *Selection) Is(id string) bool {
	return s.lead != nil && s.lead.ID == id
}

// Resolve re-binds the selection to the fresh record with the same id, or
// clears it when the id is gone. It reports whether a stale selection was dropped.
func (s *Selection) Resolve(leads []domain.Lead) bool {
	if s.lead == nil {
		return false
	}
	if l, ok := findLead(leads, s.lead.ID); ok {
		s.Select(l)
		return false
	}
	s.lead = nil
	return true
}

// State returns the serializable selection state.
func (s *Selection) State() domain.SelectionState {
	if s.lead == nil {
		return domain.SelectionState{}
	}
	c := s.lead.Clone()
	return domain.SelectionState{Lead: &c}
}

func findLead(leads []domain.Lead, id string) (domain.Lead, bool) {
	for _, l := range leads {
		if l.ID == id {
			return l, true
		}
	}
	return domain.Lead{}, false
}
