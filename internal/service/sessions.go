package service

import (
	"context"

	"github.com/boddenberg/leads-crm-go/internal/infra/observability"
	"github.com/boddenberg/leads-crm-go/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Sessions keeps one LeadView per operator. A view is created and loaded on
// first access; concurrent first requests for the same operator share it.
type Sessions struct {
	cache   port.Cache[*LeadView]
	newView func() *LeadView
	metrics *observability.Metrics
	logger  *zap.Logger
	group   singleflight.Group
}

// NewSessions creates a session registry over c. newView builds an unloaded view.
func NewSessions(
	c port.Cache[*LeadView],
	newView func() *LeadView,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Sessions {
	return &Sessions{
		cache:   c,
		newView: newView,
		metrics: metrics,
		logger:  logger,
	}
}

// Get returns the operator's view, loading a new one when none is cached.
func (s *Sessions) Get(ctx context.Context, operator string) *LeadView {
	if v, ok := s.cache.Get(operator); ok {
		s.metrics.IncrSessionHit()
		return v
	}

	res, _, _ := s.group.Do(operator, func() (any, error) {
		if v, ok := s.cache.Get(operator); ok {
			return v, nil
		}
		s.metrics.IncrSessionMiss()
		v := s.newView()
		if err := v.Load(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("new session started without leads",
				zap.String("operator", operator),
				zap.Error(err),
			)
		}
		s.cache.Set(operator, v)
		s.logger.Info("view session created", zap.String("operator", operator))
		return v, nil
	})
	return res.(*LeadView)
}

// Drop discards the operator's view.
func (s *Sessions) Drop(operator string) {
	s.cache.Delete(operator)
}
