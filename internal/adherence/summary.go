package adherence

import "github.com/vcscsvcscs/medimind-backend/pkg/model"

// Summarize reduces a day's occurrences into adherence totals
func Summarize(occurrences []model.DoseOccurrence) model.AdherenceSummary {
	medicines := make(map[string]struct{})
	taken := 0

	for _, occ := range occurrences {
		medicines[occ.MedicineID] = struct{}{}
		if occ.Taken {
			taken++
		}
	}

	total := len(occurrences)
	return model.AdherenceSummary{
		TotalMedicines:      len(medicines),
		TotalDoses:          total,
		TakenDoses:          taken,
		RemainingDoses:      total - taken,
		AdherencePercentage: Percentage(taken, total),
	}
}

// Percentage returns round-half-up(taken / total * 100) clamped to [0, 100], or 0 when total is 0
func Percentage(taken, total int) int {
	if total <= 0 {
		return 0
	}
	pct := (taken*200 + total) / (total * 2)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
