package service_test

import (
	"context"
	"time"

	"github.com/boddenberg/leads-crm-go/internal/domain"
	"github.com/boddenberg/leads-crm-go/internal/infra/observability"
	"github.com/boddenberg/leads-crm-go/internal/infra/validation"
	"github.com/boddenberg/leads-crm-go/internal/service"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// --- Mocks ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	args := m.Called(ctx)
	leads, _ := args.Get(0).([]domain.Lead)
	return leads, args.Error(1)
}

func (m *mockStore) CreateLead(ctx context.Context, in *domain.LeadInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockStore) UpdateLead(ctx context.Context, id string, in *domain.LeadInput) error {
	return m.Called(ctx, id, in).Error(0)
}

func (m *mockStore) DeleteLead(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// --- Fixtures ---

func stage(s domain.Stage) *domain.Stage { return &s }

func str(s string) *string { return &s }

func lead(id, name string, st *domain.Stage) domain.Lead {
	return domain.Lead{
		ID:        id,
		Name:      name,
		Stage:     st,
		CreatedAt: time.Date(2025, 2, 10, 15, 0, 0, 0, time.UTC),
	}
}

// fiveLeads is the collection used across scenarios: [Novo, Novo, Contato feito, Fechado, null].
func fiveLeads() []domain.Lead {
	return []domain.Lead{
		lead("1", "Ana Souza", stage(domain.StageNew)),
		lead("2", "Bruno Lima", stage(domain.StageNew)),
		lead("3", "Carla Dias", stage(domain.StageContacted)),
		lead("4", "Daniel Rocha", stage(domain.StageClosed)),
		lead("5", "Eva Martins", nil),
	}
}

func newDispatcher(store *mockStore) (*service.Dispatcher, *observability.Metrics) {
	metrics := observability.NewMetrics()
	return service.NewDispatcher(store, validation.New(), metrics, zap.NewNop()), metrics
}

func newView(store *mockStore, opts service.ViewOptions) *service.LeadView {
	d, _ := newDispatcher(store)
	return service.NewLeadView(d, opts, zap.NewNop())
}
