package service

import (
	"errors"

	"github.com/boddenberg/leads-crm-go/internal/domain"
)

// ============================================================
// Form workflow
// ============================================================

// Submission is an accepted form submit waiting for the dispatcher.
type Submission struct {
	gen       uint64
	validated bool
	Mode   domain.FormMode
	LeadID string
	Fields domain.LeadFields
}

// FormWorkflow is the create/edit form state machine.
//
// Every transition bumps a generation counter; a dispatch that completes
// after the form was cancelled or reopened only releases the busy flag.
type FormWorkflow struct {
	state          domain.FormState
	gen            uint64
	validate       func(domain.LeadFields) error
	closeOnFailure bool
}

// NewFormWorkflow creates a closed form. validate runs on every submit;
// closeOnFailure closes the form even when the collaborator rejects the mutation.
func NewFormWorkflow(validate func(domain.LeadFields) error, closeOnFailure bool) *FormWorkflow {
	return &FormWorkflow{
		state:          domain.FormState{Mode: domain.FormClosed},
		validate:       validate,
		closeOnFailure: closeOnFailure,
	}
}

// OpenNew opens an empty form in creating mode with stage "Novo".
func (w *FormWorkflow) OpenNew() {
	w.gen++
	w.state = domain.FormState{
		Mode:  domain.FormCreating,
		Draft: domain.LeadFields{Stage: string(domain.StageNew)},
		Busy:  w.state.Busy,
	}
}

// OpenEdit opens the form in editing mode on a snapshot of l.
func (w *FormWorkflow) OpenEdit(l domain.Lead) {
	w.gen++
	snapshot := l.Clone()
	w.state = domain.FormState{
		Mode:        domain.FormEditing,
		EditingLead: &snapshot,
		Draft:       domain.FieldsFromLead(snapshot),
		Busy:        w.state.Busy,
	}
}

// Cancel closes the form and discards the draft. An in-flight dispatch is not
// aborted; the busy flag stays until it completes.
func (w *FormWorkflow) Cancel() {
	w.gen++
	w.state = domain.FormState{Mode: domain.FormClosed, Busy: w.state.Busy}
}

// BeginSubmit validates fields and marks the form busy. Rejected submits
// leave the form open with the error surfaced.
func (w *FormWorkflow) BeginSubmit(fields domain.LeadFields) (Submission, error) {
	if w.state.Mode == domain.FormClosed {
		return Submission{}, &domain.ErrValidation{Field: "form", Message: "Nenhum formulário aberto"}
	}
	if w.state.Busy {
		return Submission{}, &domain.ErrBusy{Operation: "submit"}
	}

	w.state.Draft = fields
	w.state.Error = ""
	if w.validate != nil {
		if err := w.validate(fields); err != nil {
			w.state.Error = errorMessage(err)
			return Submission{}, err
		}
	}

	w.state.Busy = true
	sub := Submission{gen: w.gen, validated: w.validate != nil, Mode: w.state.Mode, Fields: fields}
	if w.state.EditingLead != nil {
		sub.LeadID = w.state.EditingLead.ID
	}
	return sub, nil
}

// Finish applies the result of a dispatched submission.
func (w *FormWorkflow) Finish(sub Submission, err error) {
	w.state.Busy = false
	if sub.gen != w.gen {
		return
	}

	var verr *domain.ErrValidation
	switch {
	case err == nil:
		w.close()
	case errors.As(err, &verr):
		w.state.Error = errorMessage(err)
	case w.closeOnFailure:
		w.close()
	default:
		w.state.Error = "Não foi possível salvar o lead: " + err.Error()
	}
}

// Resolve closes an edit form whose lead no longer exists in leads.
// It reports whether the form was closed.
func (w *FormWorkflow) Resolve(leads []domain.Lead) bool {
	if w.state.Mode != domain.FormEditing || w.state.EditingLead == nil {
		return false
	}
	if _, ok := findLead(leads, w.state.EditingLead.ID); ok {
		return false
	}
	w.close()
	return true
}

// State returns a copy of the form state.
func (w *FormWorkflow) State() domain.FormState {
	s := w.state
	if s.EditingLead != nil {
		c := s.EditingLead.Clone()
		s.EditingLead = &c
	}
	return s
}

func (w *FormWorkflow) close() {
	w.gen++
	w.state = domain.FormState{Mode: domain.FormClosed, Busy: w.state.Busy}
}

func errorMessage(err error) string {
	var verr *domain.ErrValidation
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
