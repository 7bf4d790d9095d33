// Package validation checks lead form payloads before they reach the
// persistence collaborator.
package validation

import (
	"errors"
	"fmt"

	"github.com/boddenberg/leads-crm-go/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with the lead rules registered.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the "lead_stage" rule registered.
func New() *Validator {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("lead_stage", func(fl validator.FieldLevel) bool {
		return domain.Stage(fl.Field().String()).IsValid()
	})
	return &Validator{v: v}
}

// LeadFields validates trimmed form fields. The first failing field is
// reported as *domain.ErrValidation.
func (val *Validator) LeadFields(f domain.LeadFields) error {
	err := val.v.Struct(f.Trimmed())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.ErrValidation{Field: "form", Message: err.Error()}
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Name":
		return &domain.ErrValidation{Field: "name", Message: "Nome é obrigatório"}
	case "Stage":
		return &domain.ErrValidation{Field: "stage", Message: fmt.Sprintf("Status inválido: %v", fe.Value())}
	default:
		return &domain.ErrValidation{Field: fe.Field(), Message: fe.Error()}
	}
}
