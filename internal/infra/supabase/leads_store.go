package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/boddenberg/leads-crm-go/internal/domain"
	"github.com/boddenberg/leads-crm-go/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Leads store (port.LeadStore)
// ============================================================

// leadRow maps the leads table columns.
type leadRow struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Company   *string `json:"company"`
	Source    *string `json:"source"`
	Stage     *string `json:"stage"`
	Notes     *string `json:"notes"`
	CreatedAt string  `json:"created_at"`
}

func (r leadRow) toDomain(logger *zap.Logger) domain.Lead {
	l := domain.Lead{
		ID:      r.ID,
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Company: r.Company,
		Source:  r.Source,
		Notes:   r.Notes,
	}
	if r.Stage != nil && *r.Stage != "" {
		s := domain.Stage(*r.Stage)
		l.Stage = &s
	}
	l.CreatedAt = parseCreatedAt(r.CreatedAt)
	if l.CreatedAt.IsZero() && r.CreatedAt != "" {
		logger.Debug("supabase: unparseable created_at",
			zap.String("lead_id", r.ID),
			zap.String("created_at", r.CreatedAt),
		)
	}
	return l
}

// parseCreatedAt accepts timestamptz and timestamp columns. It returns the
// zero time when neither layout matches.
func parseCreatedAt(raw string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ListLeads fetches every lead, newest first.
func (c *Client) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListLeads")
	defer span.End()

	var leads []domain.Lead
	path := fmt.Sprintf("%s?select=*&order=created_at.desc", c.table)

	err := c.execute("leads.list", func() error {
		return resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
			if err != nil {
				if !retryable(err) {
					return resilience.Permanent(err)
				}
				return err
			}

			var rows []leadRow
			if len(body) > 0 {
				if err := json.Unmarshal(body, &rows); err != nil {
					return resilience.Permanent(fmt.Errorf("decode leads: %w", err))
				}
			}

			leads = make([]domain.Lead, 0, len(rows))
			for _, r := range rows {
				leads = append(leads, r.toDomain(c.logger))
			}
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("leads.count", len(leads)))
	return leads, nil
}

// CreateLead inserts a lead row. Inserts are never retried.
func (c *Client) CreateLead(ctx context.Context, in *domain.LeadInput) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateLead")
	defer span.End()

	err := c.execute("leads.create", func() error {
		_, err := c.doRequest(ctx, http.MethodPost, c.table, in, "return=minimal")
		return err
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// UpdateLead patches the row with the given id.
func (c *Client) UpdateLead(ctx context.Context, id string, in *domain.LeadInput) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateLead")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", id))

	var matched int
	path := fmt.Sprintf("%s?id=eq.%s", c.table, url.QueryEscape(id))

	err := c.execute("leads.update", func() error {
		body, err := c.doRequest(ctx, http.MethodPatch, path, in, "return=representation")
		if err != nil {
			return err
		}
		matched, err = countRows(body)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	if matched == 0 {
		return &domain.ErrNotFound{Resource: "lead", ID: id}
	}
	return nil
}

// DeleteLead removes the row with the given id.
func (c *Client) DeleteLead(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteLead")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", id))

	var matched int
	path := fmt.Sprintf("%s?id=eq.%s", c.table, url.QueryEscape(id))

	err := c.execute("leads.delete", func() error {
		body, err := c.doRequest(ctx, http.MethodDelete, path, nil, "return=representation")
		if err != nil {
			return err
		}
		matched, err = countRows(body)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	if matched == 0 {
		return &domain.ErrNotFound{Resource: "lead", ID: id}
	}
	return nil
}

// Ping checks that the leads table is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Supabase.Ping")
	defer span.End()

	path := fmt.Sprintf("%s?select=id&limit=1", c.table)
	return c.execute("leads.ping", func() error {
		_, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
		return err
	})
}

func countRows(body []byte) (int, error) {
	if len(body) == 0 {
		return 0, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("decode representation: %w", err)
	}
	return len(rows), nil
}
