package validation_test

import (
	"errors"
	"testing"

	"github.com/boddenberg/leads-crm-go/internal/domain"
	"github.com/boddenberg/leads-crm-go/internal/infra/validation"
)

func TestLeadFields_Valid(t *testing.T) {
	v := validation.New()

	err := v.LeadFields(domain.LeadFields{Name: "Maria", Stage: "Proposta enviada"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestLeadFields_EmptyStageAllowed(t *testing.T) {
	v := validation.New()

	if err := v.LeadFields(domain.LeadFields{Name: "Maria"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestLeadFields_BlankName(t *testing.T) {
	v := validation.New()

	err := v.LeadFields(domain.LeadFields{Name: "   ", Email: "a@b.com"})

	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if verr.Field != "name" {
		t.Errorf("expected field 'name', got '%s'", verr.Field)
	}
}

func TestLeadFields_UnknownStage(t *testing.T) {
	v := validation.New()

	err := v.LeadFields(domain.LeadFields{Name: "Maria", Stage: "novo"})

	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if verr.Field != "stage" {
		t.Errorf("expected field 'stage', got '%s'", verr.Field)
	}
}
