package service

import (
	"time"

	"github.com/boddenberg/leads-crm-go/internal/domain"
	"github.com/boddenberg/leads-crm-go/internal/infra/phone"
)

const (
	emptyPlaceholder = "-"
	dateLayout       = "02/01/2006"
)

// displayLocation renders creation dates; falls back to UTC when tzdata is missing.
var displayLocation = loadDisplayLocation()

func loadDisplayLocation() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.UTC
	}
	return loc
}

// Detail projects a lead for the detail panel. Empty fields render as "-".
func Detail(l domain.Lead) domain.LeadDetail {
	d := domain.LeadDetail{
		ID:         l.ID,
		Name:       orPlaceholder(l.Name),
		Email:      orPlaceholder(valueOf(l.Email)),
		Phone:      orPlaceholder(phone.Display(valueOf(l.Phone))),
		Company:    orPlaceholder(valueOf(l.Company)),
		Source:     orPlaceholder(valueOf(l.Source)),
		StageLabel: l.StageLabel(),
		CreatedOn:  emptyPlaceholder,
		Notes:      orPlaceholder(valueOf(l.Notes)),
	}
	if !l.CreatedAt.IsZero() {
		d.CreatedOn = l.CreatedAt.In(displayLocation).Format(dateLayout)
	}
	return d
}

func orPlaceholder(s string) string {
	if s == "" {
		return emptyPlaceholder
	}
	return s
}
