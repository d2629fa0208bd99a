package mappers

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"gradtrack/internal/coerce"
	"gradtrack/internal/domain"
)

var amountPrinter = message.NewPrinter(language.English)

// ToDisplay builds the row/card view of a store record.
func ToDisplay(w domain.WireRecord) domain.DisplayRecord {
	return DisplayFromProgram(ToEditModel(w))
}

func DisplayFromProgram(p domain.Program) domain.DisplayRecord {
	sym := coerce.CurrencySymbol(p.Currency)

	d := domain.DisplayRecord{
		Program:        p,
		CurrencySymbol: sym,
		TuitionLabel:   sym + formatAmount(p.TuitionCost),
		FeeLabel:       sym + formatAmount(p.ApplicationFee),
		FitLabel:       fmt.Sprintf("%d/%d", p.FitScore, domain.MaxFitScore),
	}
	if p.CalculatedRank != nil {
		d.RankLabel = strconv.FormatFloat(*p.CalculatedRank, 'f', -1, 64)
	}
	return d
}

func ToDisplayAll(rows []domain.WireRecord) []domain.DisplayRecord {
	out := make([]domain.DisplayRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToDisplay(r))
	}
	return out
}

// formatAmount groups thousands; cents only when there are any.
func formatAmount(f float64) string {
	if f == math.Trunc(f) {
		return amountPrinter.Sprintf("%.0f", f)
	}
	return amountPrinter.Sprintf("%.2f", f)
}
