package service_test

import (
	"errors"
	"testing"

	"github.com/boddenberg/leads-crm-go/internal/domain"
	"github.com/boddenberg/leads-crm-go/internal/infra/validation"
	"github.com/boddenberg/leads-crm-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkflow(closeOnFailure bool) *service.FormWorkflow {
	return service.NewFormWorkflow(validation.New().LeadFields, closeOnFailure)
}

func TestFormWorkflow_OpenNewDefaultsStage(t *testing.T) {
	w := newWorkflow(false)
	w.OpenNew()

	st := w.State()
	assert.Equal(t, domain.FormCreating, st.Mode)
	assert.Equal(t, "Novo", st.Draft.Stage)
	assert.Nil(t, st.EditingLead)
}

func TestFormWorkflow_OpenEditSnapshotsLead(t *testing.T) {
	l := lead("7", "Ana", nil)
	l.Email = str("ana@example.com")

	w := newWorkflow(false)
	w.OpenEdit(l)
	*l.Email = "changed@example.com"

	st := w.State()
	require.NotNil(t, st.EditingLead)
	assert.Equal(t, domain.FormEditing, st.Mode)
	assert.Equal(t, "ana@example.com", st.Draft.Email)
	assert.Equal(t, "ana@example.com", *st.EditingLead.Email)
	assert.Equal(t, "Novo", st.Draft.Stage)
}

func TestFormWorkflow_SubmitOnClosedFormIsRejected(t *testing.T) {
	w := newWorkflow(false)
	_, err := w.BeginSubmit(domain.LeadFields{Name: "Ana"})

	var verr *domain.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "form", verr.Field)
}

func TestFormWorkflow_BlankNameKeepsFormOpen(t *testing.T) {
	w := newWorkflow(false)
	w.OpenNew()

	_, err := w.BeginSubmit(domain.LeadFields{Name: "   "})
	require.Error(t, err)

	st := w.State()
	assert.Equal(t, domain.FormCreating, st.Mode)
	assert.Equal(t, "Nome é obrigatório", st.Error)
	assert.False(t, st.Busy)
}

func TestFormWorkflow_DoubleSubmitIsBusy(t *testing.T) {
	w := newWorkflow(false)
	w.OpenNew()

	sub, err := w.BeginSubmit(domain.LeadFields{Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, domain.FormCreating, sub.Mode)

	_, err = w.BeginSubmit(domain.LeadFields{Name: "Ana"})
	var berr *domain.ErrBusy
	require.ErrorAs(t, err, &berr)

	w.Finish(sub, nil)
	st := w.State()
	assert.Equal(t, domain.FormClosed, st.Mode)
	assert.False(t, st.Busy)
}

func TestFormWorkflow_FailureKeepsFormOpenWithError(t *testing.T) {
	w := newWorkflow(false)
	w.OpenEdit(lead("1", "Ana", nil))

	sub, err := w.BeginSubmit(domain.LeadFields{Name: "Ana Souza"})
	require.NoError(t, err)
	assert.Equal(t, "1", sub.LeadID)

	w.Finish(sub, errors.New("connection refused"))

	st := w.State()
	assert.Equal(t, domain.FormEditing, st.Mode)
	assert.Contains(t, st.Error, "connection refused")
	assert.Equal(t, "Ana Souza", st.Draft.Name)
}

func TestFormWorkflow_FailureClosesWhenConfigured(t *testing.T) {
	w := newWorkflow(true)
	w.OpenNew()

	sub, err := w.BeginSubmit(domain.LeadFields{Name: "Ana"})
	require.NoError(t, err)
	w.Finish(sub, errors.New("boom"))

	assert.Equal(t, domain.FormClosed, w.State().Mode)
}

func TestFormWorkflow_CancelDuringDispatchIsNotReopened(t *testing.T) {
	w := newWorkflow(false)
	w.OpenNew()

	sub, err := w.BeginSubmit(domain.LeadFields{Name: "Ana"})
	require.NoError(t, err)

	w.Cancel()
	assert.True(t, w.State().Busy)

	w.Finish(sub, errors.New("boom"))
	st := w.State()
	assert.Equal(t, domain.FormClosed, st.Mode)
	assert.Empty(t, st.Error)
	assert.False(t, st.Busy)
}

func TestFormWorkflow_ResolveClosesVanishedEditTarget(t *testing.T) {
	w := newWorkflow(false)
	w.OpenEdit(lead("9", "Zé", nil))

	assert.False(t, w.Resolve([]domain.Lead{lead("9", "Zé", nil)}))
	assert.True(t, w.Resolve(fiveLeads()))
	assert.Equal(t, domain.FormClosed, w.State().Mode)
}
