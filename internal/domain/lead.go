// Package domain holds the lead record, its pipeline stages and the
// view-state types shared by the core and its adapters.
package domain

import (
	"strings"
	"time"
)

// ============================================================
// Stage
// ============================================================

// Stage is the pipeline status of a lead. A lead without a stage carries a nil *Stage.
type Stage string

const (
	StageNew          Stage = "Novo"
	StageContacted    Stage = "Contato feito"
	StageProposalSent Stage = "Proposta enviada"
	StageClosed       Stage = "Fechado"
	StageLost         Stage = "Perdido"
)

// NoStageLabel labels leads whose stage is null.
const NoStageLabel = "Sem status"

// StatusAll is the status filter value that disables status filtering.
const StatusAll = "Todos"

// Stages lists the stage enumeration in pipeline order.
var Stages = []Stage{StageNew, StageContacted, StageProposalSent, StageClosed, StageLost}

// IsValid reports whether s belongs to the stage enumeration.
func (s Stage) IsValid() bool {
	switch s {
	case StageNew, StageContacted, StageProposalSent, StageClosed, StageLost:
		return true
	default:
		return false
	}
}

// StatusOptions returns the status filter options, "Todos" first.
func StatusOptions() []string {
	opts := make([]string, 0, len(Stages)+1)
	opts = append(opts, StatusAll)
	for _, s := range Stages {
		opts = append(opts, string(s))
	}
	return opts
}

// ============================================================
// Lead
// ============================================================

// Lead mirrors a row of the leads table. Nil pointers are SQL nulls.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Company   *string   `json:"company"`
	Source    *string   `json:"source"`
	Stage     *Stage    `json:"stage"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// StageLabel returns the stage value, or "Sem status" when the stage is null.
func (l Lead) StageLabel() string {
	if l.Stage == nil || *l.Stage == "" {
		return NoStageLabel
	}
	return string(*l.Stage)
}

// HasStage reports whether the lead is at stage s.
func (l Lead) HasStage(s Stage) bool {
	return l.Stage != nil && *l.Stage == s
}

// Clone returns a deep copy so snapshots never alias the collection.
func (l Lead) Clone() Lead {
	c := l
	c.Email = cloneString(l.Email)
	c.Phone = cloneString(l.Phone)
	c.Company = cloneString(l.Company)
	c.Source = cloneString(l.Source)
	c.Notes = cloneString(l.Notes)
	if l.Stage != nil {
		s := *l.Stage
		c.Stage = &s
	}
	return c
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}

// ============================================================
// LeadFields / LeadInput
// ============================================================

// LeadFields holds the raw values of the create/edit form.
type LeadFields struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Source  string `json:"source"`
	Stage   string `json:"stage" validate:"omitempty,lead_stage"`
	Notes   string `json:"notes"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f LeadFields) Trimmed() LeadFields {
	return LeadFields{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
		Company: strings.TrimSpace(f.Company),
		Source:  strings.TrimSpace(f.Source),
		Stage:   strings.TrimSpace(f.Stage),
		Notes:   strings.TrimSpace(f.Notes),
	}
}

// FieldsFromLead pre-populates form fields from a lead snapshot.
func FieldsFromLead(l Lead) LeadFields {
	f := LeadFields{
		Name:    l.Name,
		Email:   deref(l.Email),
		Phone:   deref(l.Phone),
		Company: deref(l.Company),
		Source:  deref(l.Source),
		Notes:   deref(l.Notes),
		Stage:   string(StageNew),
	}
	if l.Stage != nil && *l.Stage != "" {
		f.Stage = string(*l.Stage)
	}
	return f
}

// LeadInput is the normalized payload sent to the persistence collaborator.
type LeadInput struct {
	Name    string  `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	Source  *string `json:"source"`
	Stage   Stage   `json:"stage"`
	Notes   *string `json:"notes"`
}

// NewLeadInput normalizes already validated fields: empty optionals become
// nulls and an empty stage defaults to "Novo".
func NewLeadInput(f LeadFields) *LeadInput {
	f = f.Trimmed()
	in := &LeadInput{
		Name:    f.Name,
		Email:   nullable(f.Email),
		Phone:   nullable(f.Phone),
		Company: nullable(f.Company),
		Source:  nullable(f.Source),
		Notes:   nullable(f.Notes),
		Stage:   Stage(f.Stage),
	}
	if in.Stage == "" {
		in.Stage = StageNew
	}
	return in
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
