// Package service is the leads core: filtering and aggregation over the
// loaded collection, the selection and form workflows, and the dispatcher
// that sends mutations to the persistence collaborator and reloads.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/leads-crm-go/internal/domain"
	"github.com/boddenberg/leads-crm-go/internal/infra/observability"
	"github.com/boddenberg/leads-crm-go/internal/infra/validation"
	"github.com/boddenberg/leads-crm-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/leads")

var errMissingLead = &domain.ErrValidation{Field: "id", Message: "Lead não informado"}

// Outcome is the result of a dispatched mutation and the reload that follows it.
//
// Err is the collaborator error of the mutation (nil on success). Leads is the
// reloaded collection, empty when LoadErr is set.
type Outcome struct {
	Err     error
	Leads   []domain.Lead
	LoadErr error
}

// Dispatcher sends validated mutations to the store and reloads the
// collection after every attempt, successful or not.
type Dispatcher struct {
	store     port.LeadStore
	validator *validation.Validator
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(
	store port.LeadStore,
	validator *validation.Validator,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		store:     store,
		validator: validator,
		metrics:   metrics,
		logger:    logger,
	}
}

// Validate checks form fields and counts rejections.
func (d *Dispatcher) Validate(fields domain.LeadFields) error {
	err := d.validator.LeadFields(fields)
	if err == nil {
		return nil
	}
	field := "form"
	var verr *domain.ErrValidation
	if errors.As(err, &verr) {
		field = verr.Field
	}
	d.metrics.IncrValidationRejection(field)
	d.logger.Debug("lead form rejected", zap.String("field", field), zap.Error(err))
	return err
}

// Reload fetches the full collection. On failure it returns an empty
// collection together with the error.
func (d *Dispatcher) Reload(ctx context.Context) ([]domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Dispatcher.Reload")
	defer span.End()

	start := time.Now()
	leads, err := d.store.ListLeads(ctx)
	d.metrics.RecordDuration("load", time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		d.metrics.IncrExternalError("load")
		d.logger.Error("failed to load leads", zap.Error(err))
		return []domain.Lead{}, fmt.Errorf("load leads: %w", err)
	}
	if leads == nil {
		leads = []domain.Lead{}
	}

	span.SetAttributes(attribute.Int("leads.count", len(leads)))
	d.metrics.SetCollectionSize(len(leads))
	return leads, nil
}

// Submit dispatches an accepted form submission. Fields already checked by
// the form workflow are not validated again.
func (d *Dispatcher) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	if !sub.validated {
		if err := d.Validate(sub.Fields); err != nil {
			return nil, err
		}
	}
	switch sub.Mode {
	case domain.FormCreating:
		return d.create(ctx, sub.Fields), nil
	case domain.FormEditing:
		if sub.LeadID == "" {
			return nil, errMissingLead
		}
		return d.update(ctx, sub.LeadID, sub.Fields), nil
	default:
		return nil, &domain.ErrValidation{Field: "form", Message: "Nenhum formulário aberto"}
	}
}

// SubmitCreate validates fields, inserts the lead and reloads.
// A validation error is returned as the second value and nothing is dispatched.
func (d *Dispatcher) SubmitCreate(ctx context.Context, fields domain.LeadFields) (*Outcome, error) {
	if err := d.Validate(fields); err != nil {
		return nil, err
	}
	return d.create(ctx, fields), nil
}

// SubmitUpdate validates fields, updates lead id and reloads.
func (d *Dispatcher) SubmitUpdate(ctx context.Context, id string, fields domain.LeadFields) (*Outcome, error) {
	if id == "" {
		return nil, errMissingLead
	}
	if err := d.Validate(fields); err != nil {
		return nil, err
	}
	return d.update(ctx, id, fields), nil
}

func (d *Dispatcher) create(ctx context.Context, fields domain.LeadFields) *Outcome {
	input := domain.NewLeadInput(fields)
	return d.mutate(ctx, "create", "", func(ctx context.Context) error {
		return d.store.CreateLead(ctx, input)
	})
}

func (d *Dispatcher) update(ctx context.Context, id string, fields domain.LeadFields) *Outcome {
	input := domain.NewLeadInput(fields)
	return d.mutate(ctx, "update", id, func(ctx context.Context) error {
		return d.store.UpdateLead(ctx, id, input)
	})
}

// SubmitDelete removes lead id and reloads.
func (d *Dispatcher) SubmitDelete(ctx context.Context, id string) (*Outcome, error) {
	if id == "" {
		return nil, errMissingLead
	}
	return d.mutate(ctx, "delete", id, func(ctx context.Context) error {
		return d.store.DeleteLead(ctx, id)
	}), nil
}

func (d *Dispatcher) mutate(ctx context.Context, op, id string, fn func(context.Context) error) *Outcome {
	ctx, span := tracer.Start(ctx, "Dispatcher."+op)
	defer span.End()
	if id != "" {
		span.SetAttributes(attribute.String("lead.id", id))
	}

	start := time.Now()
	err := fn(ctx)
	d.metrics.RecordDuration(op, time.Since(start))

	out := &Outcome{}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
		d.metrics.IncrDispatch(op, observability.OutcomeFailure)
		d.metrics.IncrExternalError(op)
		d.logger.Error("lead mutation failed",
			zap.String("operation", op),
			zap.String("lead_id", id),
			zap.Error(err),
		)
		out.Err = fmt.Errorf("%s lead: %w", op, err)
	} else {
		d.metrics.IncrDispatch(op, observability.OutcomeSuccess)
		d.logger.Info("lead mutation applied",
			zap.String("operation", op),
			zap.String("lead_id", id),
		)
	}

	out.Leads, out.LoadErr = d.Reload(ctx)
	return out
}
