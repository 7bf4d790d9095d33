// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the lead view
// core from the persistence collaborator and the session cache.
package port

import (
	"context"

	"github.com/boddenberg/leads-crm-go/internal/domain"
)

// LeadStore is the persistence collaborator for lead records.
// Implemented by the Supabase adapter and by the in-memory store.
type LeadStore interface {
	// ListLeads returns every lead ordered by created_at descending.
	ListLeads(ctx context.Context) ([]domain.Lead, error)
	CreateLead(ctx context.Context, in *domain.LeadInput) error
	// UpdateLead returns *domain.ErrNotFound for an unknown id.
	UpdateLead(ctx context.Context, id string, in *domain.LeadInput) error
	// DeleteLead returns *domain.ErrNotFound for an unknown id.
	DeleteLead(ctx context.Context, id string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
