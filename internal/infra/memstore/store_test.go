package memstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/leads-crm-go/internal/domain"
	"github.com/boddenberg/leads-crm-go/internal/infra/memstore"
)

func TestStore_CreateListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := memstore.New().WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})

	for _, name := range []string{"Ana", "Bruno", "Carla"} {
		if err := s.CreateLead(ctx, domain.NewLeadInput(domain.LeadFields{Name: name})); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	leads, err := s.ListLeads(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(leads) != 3 {
		t.Fatalf("expected 3 leads, got %d", len(leads))
	}
	if leads[0].Name != "Carla" || leads[2].Name != "Ana" {
		t.Errorf("expected newest first, got %s..%s", leads[0].Name, leads[2].Name)
	}
	if !leads[0].HasStage(domain.StageNew) {
		t.Errorf("expected default stage Novo, got %s", leads[0].StageLabel())
	}
	if leads[0].Email != nil {
		t.Errorf("expected null email, got %q", *leads[0].Email)
	}
}

func TestStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := memstore.New(domain.Lead{ID: "lead-1", Name: "Ana", CreatedAt: time.Now()})

	err := s.UpdateLead(ctx, "lead-1", domain.NewLeadInput(domain.LeadFields{
		Name:  "Ana Souza",
		Email: "ana@example.com",
		Stage: string(domain.StageClosed),
	}))
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	leads, _ := s.ListLeads(ctx)
	if leads[0].Name != "Ana Souza" || !leads[0].HasStage(domain.StageClosed) {
		t.Errorf("update not applied: %+v", leads[0])
	}

	if err := s.DeleteLead(ctx, "lead-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}

func TestStore_UnknownID(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	var notFound *domain.ErrNotFound
	if err := s.UpdateLead(ctx, "missing", domain.NewLeadInput(domain.LeadFields{Name: "x"})); !errors.As(err, &notFound) {
		t.Errorf("update: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteLead(ctx, "missing"); !errors.As(err, &notFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	email := "ana@example.com"
	s := memstore.New(domain.Lead{ID: "lead-1", Name: "Ana", Email: &email})

	leads, _ := s.ListLeads(ctx)
	*leads[0].Email = "changed@example.com"
	leads[0].Name = "changed"

	again, _ := s.ListLeads(ctx)
	if again[0].Name != "Ana" || *again[0].Email != "ana@example.com" {
		t.Errorf("store state leaked through returned slice: %+v", again[0])
	}
}
