package mappers

import (
	"strings"

	"gradtrack/internal/coerce"
	"gradtrack/internal/domain"
)

// ToEditModel tolerates any wire record. Absent keys get the form
// defaults; it never fails. Empty identity fields are left empty for
// validation to report.
func ToEditModel(w domain.WireRecord) domain.Program {
	p := domain.Program{
		SchoolName:   str(w, domain.LabelSchoolName),
		ProgramTitle: str(w, domain.LabelProgramTitle),
		URL:          str(w, domain.LabelURL),
		Location:     str(w, domain.LabelLocation),
		ContactEmail: str(w, domain.LabelContactEmail),

		FitScore:        coerce.Integer(w[domain.LabelFitScore], domain.DefaultFitScore, domain.MinFitScore, domain.MaxFitScore),
		CurriculumFocus: str(w, domain.LabelCurriculumFocus),
		Pros:            str(w, domain.LabelPros),
		Cons:            str(w, domain.LabelCons),

		ApplicationDeadline: str(w, domain.LabelApplicationDeadline),
		TuitionCost:         nonNegative(coerce.Number(w[domain.LabelTuitionCost], 0)),
		Currency:            strOr(w, domain.LabelCurrency, domain.DefaultCurrency),
		ApplicationFee:      nonNegative(coerce.Number(w[domain.LabelApplicationFee], 0)),
		FundingScholarships: str(w, domain.LabelFundingScholarships),
		Duration:            str(w, domain.LabelDuration),

		GREGMATRequired: domain.TestPolicy(strOr(w, domain.LabelGREGMATRequired, string(domain.DefaultTestPolicy))),
		LettersOfRecQty: coerce.Integer(w[domain.LabelLettersOfRecQty], 0, 0),
		EnglishTest:     str(w, domain.LabelEnglishTest),
		SOPEssayDone:    coerce.Boolean(w[domain.LabelSOPEssayDone]),

		Status:       domain.Status(strOr(w, domain.LabelStatus, string(domain.DefaultStatus))),
		PortalLogin:  str(w, domain.LabelPortalLogin),
		DecisionDate: str(w, domain.LabelDecisionDate),
		IsFavorite:   coerce.Boolean(w[domain.LabelIsFavorite]),
	}

	if rank, ok := coerce.ParseNumber(w[domain.LabelCalculatedRank]); ok {
		p.CalculatedRank = &rank
	}
	return p
}

// ToWirePayload maps a program to the payload sent on create/update.
// Calculated Rank is never included. Booleans go out as native bools and
// numbers as float64, the same types a JSON decode of the store's rows yields.
func ToWirePayload(p domain.Program) domain.WireRecord {
	return domain.WireRecord{
		domain.LabelSchoolName:          p.SchoolName,
		domain.LabelProgramTitle:        p.ProgramTitle,
		domain.LabelURL:                 p.URL,
		domain.LabelLocation:            p.Location,
		domain.LabelContactEmail:        p.ContactEmail,
		domain.LabelFitScore:            float64(p.FitScore),
		domain.LabelPros:                p.Pros,
		domain.LabelCons:                p.Cons,
		domain.LabelCurriculumFocus:     p.CurriculumFocus,
		domain.LabelApplicationDeadline: p.ApplicationDeadline,
		domain.LabelTuitionCost:         p.TuitionCost,
		domain.LabelCurrency:            p.Currency,
		domain.LabelApplicationFee:      p.ApplicationFee,
		domain.LabelFundingScholarships: p.FundingScholarships,
		domain.LabelDuration:            p.Duration,
		domain.LabelGREGMATRequired:     string(p.GREGMATRequired),
		domain.LabelLettersOfRecQty:     float64(p.LettersOfRecQty),
		domain.LabelEnglishTest:         p.EnglishTest,
		domain.LabelSOPEssayDone:        p.SOPEssayDone,
		domain.LabelStatus:              string(p.Status),
		domain.LabelPortalLogin:         p.PortalLogin,
		domain.LabelDecisionDate:        p.DecisionDate,
		domain.LabelIsFavorite:          p.IsFavorite,
	}
}

func ToEditModels(rows []domain.WireRecord) []domain.Program {
	out := make([]domain.Program, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToEditModel(r))
	}
	return out
}

func str(w domain.WireRecord, label string) string {
	return coerce.String(w[label])
}

// strOr treats a missing, null or blank cell as absent.
func strOr(w domain.WireRecord, label, def string) string {
	s := coerce.String(w[label])
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
