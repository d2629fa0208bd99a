package sqlite

import (
	"math"
	"time"

	"gradtrack/internal/coerce"
	"gradtrack/internal/domain"
)

// Rank weights. Higher scores are better.
const (
	fitWeight      = 0.6
	costWeight     = 0.3
	deadlineWeight = 0.1

	costCeiling  = 100000.0
	urgencyDays  = 180.0
	unknownDates = 0.5
)

// CalculateRank scores a row the way the spreadsheet backend does:
// fit (1-10) weighted 60%, cheapness below 100k weighted 30% and deadline
// urgency over the next six months weighted 10%. Result is 0-100, two decimals.
func CalculateRank(w domain.WireRecord, now time.Time) float64 {
	fit := float64(coerce.Integer(w[domain.LabelFitScore], domain.DefaultFitScore, domain.MinFitScore, domain.MaxFitScore)) / 10
	cost := math.Max(0, (costCeiling-coerce.Number(w[domain.LabelTuitionCost], 0))/costCeiling)

	urgency := 0.0
	if deadline := coerce.String(w[domain.LabelApplicationDeadline]); deadline != "" {
		d, err := time.ParseInLocation(time.DateOnly, deadline, now.Location())
		switch {
		case err != nil:
			urgency = unknownDates
		default:
			daysLeft := math.Floor(d.Sub(now).Hours() / 24)
			if daysLeft <= 0 {
				urgency = 1
			} else {
				urgency = math.Max(0, (urgencyDays-daysLeft)/urgencyDays)
			}
		}
	}

	score := fit*fitWeight + cost*costWeight + urgency*deadlineWeight
	return math.Round(score*100*100) / 100
}
