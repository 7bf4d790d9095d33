package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/leads-crm-go/internal/domain"
	"github.com/boddenberg/leads-crm-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func loadedView(t *testing.T, store *mockStore, leads []domain.Lead) *service.LeadView {
	t.Helper()
	store.On("ListLeads", mock.Anything).Return(leads, nil).Once()
	v := newView(store, service.ViewOptions{})
	require.NoError(t, v.Load(context.Background()))
	return v
}

func TestLeadView_RenderFiveLeads(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())

	page := v.Render()
	assert.Equal(t, 5, page.VisibleCount)
	assert.Equal(t, domain.Summary{Total: 5, New: 2, InProgress: 1, Closed: 1}, page.Summary)
	assert.Len(t, page.Histogram, 4)
	assert.Equal(t, "Digite o nome...", page.SearchPlaceholder)
	assert.Equal(t, []string{"Todos", "Novo", "Contato feito", "Proposta enviada", "Fechado", "Perdido"}, page.StatusOptions)
	assert.Nil(t, page.Selected)
	assert.Empty(t, page.LoadError)
}

func TestLeadView_LoadFailureYieldsEmptyCollection(t *testing.T) {
	store := &mockStore{}
	store.On("ListLeads", mock.Anything).Return(nil, errors.New("timeout")).Once()

	v := newView(store, service.ViewOptions{})
	err := v.Load(context.Background())
	require.Error(t, err)

	page := v.Render()
	assert.Empty(t, page.Leads)
	assert.Equal(t, 0, page.Summary.Total)
	assert.NotEmpty(t, page.LoadError)
}

func TestLeadView_FiltersDoNotTouchSummary(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())

	require.NoError(t, v.SetStatusFilter("Novo"))
	page := v.Render()
	assert.Equal(t, 2, page.VisibleCount)
	assert.Equal(t, 5, page.Summary.Total)

	assert.Error(t, v.SetStatusFilter("Arquivado"))
	assert.Equal(t, "Novo", v.State().Filter.StatusFilter)
}

func TestLeadView_SwitchingSearchFieldClearsTerm(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())

	v.SetSearchTerm("ana")
	require.NoError(t, v.SetSearchField(domain.SearchByName))
	assert.Equal(t, "ana", v.State().Filter.SearchTerm)

	require.NoError(t, v.SetSearchField(domain.SearchByPhone))
	st := v.State().Filter
	assert.Equal(t, domain.SearchByPhone, st.SearchField)
	assert.Empty(t, st.SearchTerm)
	assert.Equal(t, "Digite o telefone (apenas números)...", v.Render().SearchPlaceholder)

	assert.Error(t, v.SetSearchField("company"))
}

func TestLeadView_ToggleSearchKeepsTerm(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())

	assert.True(t, v.ToggleSearch())
	v.SetSearchTerm("bruno")
	assert.False(t, v.ToggleSearch())
	assert.Equal(t, "bruno", v.State().Filter.SearchTerm)
}

func TestLeadView_SelectionNeverCallsStore(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())

	require.NoError(t, v.SelectByID("3"))
	page := v.Render()
	require.NotNil(t, page.Selected)
	assert.Equal(t, "Carla Dias", page.Selected.Name)

	var nf *domain.ErrNotFound
	assert.ErrorAs(t, v.SelectByID("missing"), &nf)

	v.ClearSelection()
	assert.Nil(t, v.Render().Selected)
	store.AssertNumberOfCalls(t, "ListLeads", 1)
}

func TestLeadView_OpenNewThenCancelMakesNoCalls(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())

	v.OpenNew()
	assert.Equal(t, domain.FormCreating, v.State().Form.Mode)
	v.Cancel()
	assert.Equal(t, domain.FormClosed, v.State().Form.Mode)

	store.AssertNotCalled(t, "CreateLead", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "UpdateLead", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNumberOfCalls(t, "ListLeads", 1)
}

func TestLeadView_SubmitCreateReloads(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())

	created := append([]domain.Lead{lead("6", "Fabio", stage(domain.StageNew))}, fiveLeads()...)
	store.On("CreateLead", mock.Anything, mock.MatchedBy(func(in *domain.LeadInput) bool {
		return in.Name == "Fabio" && in.Stage == domain.StageNew && in.Email == nil
	})).Return(nil).Once()
	store.On("ListLeads", mock.Anything).Return(created, nil).Once()

	v.OpenNew()
	require.NoError(t, v.Submit(context.Background(), domain.LeadFields{Name: " Fabio ", Stage: "Novo"}))

	page := v.Render()
	assert.Equal(t, domain.FormClosed, page.Form.Mode)
	assert.Equal(t, 6, page.Summary.Total)
	store.AssertExpectations(t)
}

func TestLeadView_EditWithClearedNameNeverUpdates(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())

	require.NoError(t, v.OpenEditByID("1"))
	err := v.Submit(context.Background(), domain.LeadFields{Name: "", Stage: "Novo"})

	var verr *domain.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	st := v.State().Form
	assert.Equal(t, domain.FormEditing, st.Mode)
	assert.Equal(t, "Nome é obrigatório", st.Error)
	store.AssertNotCalled(t, "UpdateLead", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNumberOfCalls(t, "ListLeads", 1)
}

func TestLeadView_UpdateFailureKeepsFormOpenAndReloads(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())

	store.On("UpdateLead", mock.Anything, "2", mock.Anything).Return(errors.New("503")).Once()
	store.On("ListLeads", mock.Anything).Return(fiveLeads(), nil).Once()

	require.NoError(t, v.OpenEditByID("2"))
	err := v.Submit(context.Background(), domain.LeadFields{Name: "Bruno L.", Stage: "Fechado"})
	require.Error(t, err)

	st := v.State().Form
	assert.Equal(t, domain.FormEditing, st.Mode)
	assert.NotEmpty(t, st.Error)
	assert.False(t, st.Busy)
	store.AssertExpectations(t)
}

func TestLeadView_UpdateFailureClosesFormWhenConfigured(t *testing.T) {
	store := &mockStore{}
	store.On("ListLeads", mock.Anything).Return(fiveLeads(), nil)
	store.On("UpdateLead", mock.Anything, "2", mock.Anything).Return(errors.New("503")).Once()

	v := newView(store, service.ViewOptions{CloseFormOnFailure: true})
	require.NoError(t, v.Load(context.Background()))
	require.NoError(t, v.OpenEditByID("2"))

	require.Error(t, v.Submit(context.Background(), domain.LeadFields{Name: "Bruno"}))
	assert.Equal(t, domain.FormClosed, v.State().Form.Mode)
}

func TestLeadView_DeleteSelectedClearsSelection(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())

	remaining := fiveLeads()[:3]
	store.On("DeleteLead", mock.Anything, "4").Return(nil).Once()
	store.On("ListLeads", mock.Anything).Return(remaining, nil).Once()

	require.NoError(t, v.SelectByID("4"))
	require.NoError(t, v.Delete(context.Background(), "4"))

	page := v.Render()
	assert.Nil(t, page.Selected)
	assert.Equal(t, 3, page.VisibleCount)
	assert.Empty(t, page.Deleting)
	store.AssertExpectations(t)
}

func TestLeadView_DeleteOtherKeepsSelection(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())

	store.On("DeleteLead", mock.Anything, "5").Return(nil).Once()
	store.On("ListLeads", mock.Anything).Return(fiveLeads()[:4], nil).Once()

	require.NoError(t, v.SelectByID("1"))
	require.NoError(t, v.Delete(context.Background(), "5"))

	page := v.Render()
	require.NotNil(t, page.Selected)
	assert.Equal(t, "1", page.Selected.ID)
}

func TestLeadView_DeleteFailureSetsNotice(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())

	store.On("DeleteLead", mock.Anything, "1").Return(errors.New("forbidden")).Once()
	store.On("ListLeads", mock.Anything).Return(fiveLeads(), nil).Once()

	require.NoError(t, v.SelectByID("1"))
	require.Error(t, v.Delete(context.Background(), "1"))

	page := v.Render()
	require.NotNil(t, page.Selected)
	assert.NotEmpty(t, page.Notice)
}

func TestLeadView_ReloadDropsStaleSelectionAndEditForm(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())

	require.NoError(t, v.SelectByID("2"))
	require.NoError(t, v.OpenEditByID("2"))

	store.On("ListLeads", mock.Anything).Return([]domain.Lead{lead("1", "Ana Souza", nil)}, nil).Once()
	require.NoError(t, v.Load(context.Background()))

	st := v.State()
	assert.Nil(t, st.Selection.Lead)
	assert.Equal(t, domain.FormClosed, st.Form.Mode)
	assert.NotEmpty(t, st.Notice)
}

func TestLeadView_ReloadRefreshesSelection(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())
	require.NoError(t, v.SelectByID("3"))

	updated := fiveLeads()
	updated[2].Stage = stage(domain.StageProposalSent)
	store.On("ListLeads", mock.Anything).Return(updated, nil).Once()
	require.NoError(t, v.Load(context.Background()))

	page := v.Render()
	require.NotNil(t, page.Selected)
	assert.Equal(t, "Proposta enviada", page.Selected.StageLabel)
}

func TestLeadView_SubmitSurvivesCancelledContext(t *testing.T) {
	store := &mockStore{}
	v := loadedView(t, store, fiveLeads())

	store.On("CreateLead", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything).Return(nil).Once()
	store.On("ListLeads", mock.Anything).Return(fiveLeads(), nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v.OpenNew()
	require.NoError(t, v.Submit(ctx, domain.LeadFields{Name: "Gabi"}))
	store.AssertExpectations(t)
}
