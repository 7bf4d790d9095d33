package service

import (
	"context"
	"sync"
	"time"

	"github.com/boddenberg/leads-crm-go/internal/domain"

	"go.uber.org/zap"
)

const (
	noticeSelectionGone = "O lead selecionado não existe mais"
	noticeEditingGone   = "O lead em edição não existe mais"
	noticeDeleteFailed  = "Não foi possível excluir o lead"
	noticeLoadFailed    = "Não foi possível carregar os leads"
)

// ViewOptions tunes the controller behaviour.
type ViewOptions struct {
	// CloseFormOnFailure closes the form even when the collaborator rejects
	// the mutation, instead of keeping it open with the error.
	CloseFormOnFailure bool
}

// LeadView is one operator's view of the leads: the loaded collection plus
// filter, selection and form state.
//
// Each transition runs to completion under mu. Collaborator calls happen
// outside the lock and their results are applied in completion order, so
// the latest completed load wins.
type LeadView struct {
	dispatcher *Dispatcher
	logger     *zap.Logger
	now        func() time.Time

	mu        sync.Mutex
	leads     []domain.Lead
	filter    domain.FilterState
	selection Selection
	form      *FormWorkflow
	deleting  string
	notice    string
	loadErr   string
	loadedAt  time.Time
}

// NewLeadView creates an empty view. Call Load to fetch the collection.
func NewLeadView(dispatcher *Dispatcher, opts ViewOptions, logger *zap.Logger) *LeadView {
	return &LeadView{
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
		leads:      []domain.Lead{},
		filter:     domain.DefaultFilter(),
		form:       NewFormWorkflow(dispatcher.Validate, opts.CloseFormOnFailure),
	}
}

// ============================================================
// Loading / rendering
// ============================================================

// Load replaces the collection with a fresh fetch. A failed load leaves an
// empty collection and a load error on the page.
func (v *LeadView) Load(ctx context.Context) error {
	leads, err := v.dispatcher.Reload(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.notice = ""
	v.applyLoad(leads, err)
	return err
}

// applyLoad must be called with mu held.
func (v *LeadView) applyLoad(leads []domain.Lead, err error) {
	v.leads = leads
	v.loadedAt = v.now()
	v.loadErr = ""
	if err != nil {
		v.loadErr = noticeLoadFailed
	}
	if v.selection.Resolve(leads) {
		v.notice = noticeSelectionGone
	}
	if v.form.Resolve(leads) {
		v.notice = noticeEditingGone
	}
}

// Render computes the page from the current state.
func (v *LeadView) Render() domain.Page {
	v.mu.Lock()
	defer v.mu.Unlock()

	visible := Visible(v.leads, v.filter)
	page := domain.Page{
		Leads:             visible,
		VisibleCount:      len(visible),
		Summary:           Summarize(v.leads),
		Histogram:         Histogram(v.leads),
		Filter:            v.filter,
		StatusOptions:     domain.StatusOptions(),
		SearchPlaceholder: v.filter.SearchField.Placeholder(),
		Form:              v.form.State(),
		Deleting:          v.deleting,
		Notice:            v.notice,
		LoadError:         v.loadErr,
		LoadedAt:          v.loadedAt,
	}
	if cur := v.selection.Current(); cur != nil {
		d := Detail(*cur)
		page.Selected = &d
	}
	return page
}

// State returns a snapshot of the view state.
func (v *LeadView) State() domain.ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return domain.ViewState{
		Filter:    v.filter,
		Selection: v.selection.State(),
		Form:      v.form.State(),
		Deleting:  v.deleting,
		Notice:    v.notice,
		LoadError: v.loadErr,
		LoadedAt:  v.loadedAt,
	}
}

// Leads returns a copy of the loaded collection.
func (v *LeadView) Leads() []domain.Lead {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]domain.Lead, len(v.leads))
	copy(out, v.leads)
	return out
}

// ============================================================
// Filter / search
// ============================================================

// SetStatusFilter filters by stage; "Todos" disables the status filter.
func (v *LeadView) SetStatusFilter(status string) error {
	if status != domain.StatusAll && !domain.Stage(status).IsValid() {
		return &domain.ErrValidation{Field: "status", Message: "Status inválido: " + status}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.StatusFilter = status
	return nil
}

// SetSearchField changes the searched attribute. Switching fields clears the term.
func (v *LeadView) SetSearchField(field domain.SearchField) error {
	if !field.IsValid() {
		return &domain.ErrValidation{Field: "search_field", Message: "Campo de busca inválido: " + string(field)}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.filter.SearchField != field {
		v.filter.SearchField = field
		v.filter.SearchTerm = ""
	}
	return nil
}

// SetSearchTerm sets the free-text search term.
func (v *LeadView) SetSearchTerm(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.SearchTerm = term
}

// ToggleSearch shows or hides the search panel and returns the new state.
// Hiding the panel keeps the field and term.
func (v *LeadView) ToggleSearch() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.SearchOpen = !v.filter.SearchOpen
	return v.filter.SearchOpen
}

// ============================================================
// Selection
// ============================================================

// Select inspects l in the detail panel.
func (v *LeadView) Select(l domain.Lead) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection.Select(l)
}

// SelectByID selects a lead of the loaded collection.
func (v *LeadView) SelectByID(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	l, ok := findLead(v.leads, id)
	if !ok {
		return &domain.ErrNotFound{Resource: "lead", ID: id}
	}
	v.selection.Select(l)
	return nil
}

// ClearSelection closes the detail panel.
func (v *LeadView) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection.Clear()
}

// ============================================================
// Form workflow
// ============================================================

// OpenNew opens the create form.
func (v *LeadView) OpenNew() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form.OpenNew()
}

// OpenEdit opens the edit form on a snapshot of l.
func (v *LeadView) OpenEdit(l domain.Lead) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form.OpenEdit(l)
}

// OpenEditByID opens the edit form on a lead of the loaded collection.
func (v *LeadView) OpenEditByID(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	l, ok := findLead(v.leads, id)
	if !ok {
		return &domain.ErrNotFound{Resource: "lead", ID: id}
	}
	v.form.OpenEdit(l)
	return nil
}

// Cancel closes the form without dispatching anything.
func (v *LeadView) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form.Cancel()
}

// Submit dispatches the open form. Validation failures keep the form open
// and never reach the collaborator. The collection is reloaded after every
// dispatched mutation; the returned error is the mutation's own error.
func (v *LeadView) Submit(ctx context.Context, fields domain.LeadFields) error {
	v.mu.Lock()
	if v.deleting != "" {
		v.mu.Unlock()
		return &domain.ErrBusy{Operation: "delete"}
	}
	sub, err := v.form.BeginSubmit(fields)
	v.mu.Unlock()
	if err != nil {
		return err
	}

	// Closing the page must not abort a mutation the collaborator may already have applied.
	outcome, err := v.dispatcher.Submit(context.WithoutCancel(ctx), sub)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.form.Finish(sub, err)
		return err
	}
	v.form.Finish(sub, outcome.Err)
	v.notice = ""
	v.applyLoad(outcome.Leads, outcome.LoadErr)
	return outcome.Err
}

// ============================================================
// Delete
// ============================================================

// Delete removes a lead and reloads. Deleting the selected lead clears the
// selection once the collaborator confirms.
func (v *LeadView) Delete(ctx context.Context, id string) error {
	v.mu.Lock()
	if v.deleting != "" {
		v.mu.Unlock()
		return &domain.ErrBusy{Operation: "delete"}
	}
	if v.form.State().Busy {
		v.mu.Unlock()
		return &domain.ErrBusy{Operation: "submit"}
	}
	v.deleting = id
	v.mu.Unlock()

	outcome, err := v.dispatcher.SubmitDelete(context.WithoutCancel(ctx), id)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.deleting = ""
	if err != nil {
		return err
	}

	v.notice = ""
	if outcome.Err == nil && v.selection.Is(id) {
		v.selection.Clear()
	}
	v.applyLoad(outcome.Leads, outcome.LoadErr)
	if outcome.Err != nil {
		v.notice = noticeDeleteFailed
		v.logger.Warn("delete not applied", zap.String("lead_id", id), zap.Error(outcome.Err))
	}
	return outcome.Err
}
