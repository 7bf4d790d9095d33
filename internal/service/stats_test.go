package service_test

import (
	"testing"

	"github.com/boddenberg/leads-crm-go/internal/domain"
	"github.com/boddenberg/leads-crm-go/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_FiveLeads(t *testing.T) {
	got := service.Summarize(fiveLeads())
	assert.Equal(t, domain.Summary{Total: 5, New: 2, InProgress: 1, Closed: 1}, got)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, domain.Summary{}, service.Summarize(nil))
}

func TestSummarize_ProposalCountsAsInProgressAndLostIsUncounted(t *testing.T) {
	leads := []domain.Lead{
		lead("1", "A", stage(domain.StageProposalSent)),
		lead("2", "B", stage(domain.StageLost)),
	}
	got := service.Summarize(leads)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 1, got.InProgress)
	assert.LessOrEqual(t, got.New+got.InProgress+got.Closed, got.Total)
}

func TestHistogram_FirstOccurrenceOrderAndColors(t *testing.T) {
	got := service.Histogram(fiveLeads())

	assert.Equal(t, []domain.Bucket{
		{Label: "Novo", Count: 2, Color: "#3b82f6"},
		{Label: "Contato feito", Count: 1, Color: "#f59e0b"},
		{Label: "Fechado", Count: 1, Color: "#22c55e"},
		{Label: "Sem status", Count: 1, Color: "#a1a1aa"},
	}, got)

	sum := 0
	for _, b := range got {
		sum += b.Count
	}
	assert.Equal(t, 5, sum)
}

func TestStageColor_UnknownFallsBack(t *testing.T) {
	assert.Equal(t, "#a1a1aa", service.StageColor("Arquivado"))
	assert.Equal(t, "#ef4444", service.StageColor("Perdido"))
}
