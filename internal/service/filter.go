package service

import (
	"strings"

	"github.com/boddenberg/leads-crm-go/internal/domain"
)

// ============================================================
// Filter / search engine
// ============================================================

// Visible returns the leads matching both the search and the status
// predicates, in collection order. The input slice is never modified.
func Visible(leads []domain.Lead, f domain.FilterState) []domain.Lead {
	out := make([]domain.Lead, 0, len(leads))
	for _, l := range leads {
		if MatchesSearch(l, f.SearchField, f.SearchTerm) && MatchesStatus(l, f.StatusFilter) {
			out = append(out, l)
		}
	}
	return out
}

// MatchesSearch applies the search term to the chosen field. A blank term
// matches everything.
func MatchesSearch(l domain.Lead, field domain.SearchField, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}

	switch field {
	case domain.SearchByName:
		return strings.Contains(strings.ToLower(l.Name), term)
	case domain.SearchByEmail:
		return strings.Contains(strings.ToLower(valueOf(l.Email)), term)
	case domain.SearchByPhone:
		return strings.Contains(digitsOnly(valueOf(l.Phone)), digitsOnly(term))
	default:
		return false
	}
}

// MatchesStatus is true for "Todos" or an exact stage match. A lead without
// a stage never matches a concrete stage.
func MatchesStatus(l domain.Lead, status string) bool {
	if status == domain.StatusAll {
		return true
	}
	return l.Stage != nil && string(*l.Stage) == status
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func valueOf(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

