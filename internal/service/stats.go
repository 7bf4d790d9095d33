package service

import "github.com/boddenberg/leads-crm-go/internal/domain"

// stageColors is the chart palette; labels missing here use the "Sem status" color.
var stageColors = map[string]string{
	string(domain.StageNew):          "#3b82f6",
	string(domain.StageContacted):    "#f59e0b",
	string(domain.StageProposalSent): "#a855f7",
	string(domain.StageClosed):       "#22c55e",
	string(domain.StageLost):         "#ef4444",
	domain.NoStageLabel:              "#a1a1aa",
}

// StageColor returns the chart color for a stage label.
func StageColor(label string) string {
	if c, ok := stageColors[label]; ok {
		return c
	}
	return stageColors[domain.NoStageLabel]
}

// Summarize computes the dashboard counters.
func Summarize(leads []domain.Lead) domain.Summary {
	s := domain.Summary{Total: len(leads)}
	for _, l := range leads {
		switch {
		case l.HasStage(domain.StageNew):
			s.New++
		case l.HasStage(domain.StageContacted), l.HasStage(domain.StageProposalSent):
			s.InProgress++
		case l.HasStage(domain.StageClosed):
			s.Closed++
		}
	}
	return s
}

// Histogram groups leads by stage label in order of first occurrence.
// Counts always sum to len(leads).
func Histogram(leads []domain.Lead) []domain.Bucket {
	buckets := make([]domain.Bucket, 0, len(stageColors))
	index := make(map[string]int, len(stageColors))

	for _, l := range leads {
		label := l.StageLabel()
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, domain.Bucket{Label: label, Color: StageColor(label)})
		}
		buckets[i].Count++
	}
	return buckets
}
