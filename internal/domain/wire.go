package domain

import "gradtrack/internal/coerce"

// Column labels used by the spreadsheet store. They must match exactly,
// case and spacing included.
const (
	LabelSchoolName          = "School Name"
	LabelProgramTitle        = "Program Title"
	LabelURL                 = "URL"
	LabelLocation            = "Location"
	LabelContactEmail        = "Contact Email"
	LabelFitScore            = "Fit Score"
	LabelCalculatedRank      = "Calculated Rank"
	LabelPros                = "Pros"
	LabelCons                = "Cons"
	LabelCurriculumFocus     = "Curriculum Focus"
	LabelApplicationDeadline = "Application Deadline"
	LabelTuitionCost         = "Tuition Cost"
	LabelCurrency            = "Currency"
	LabelApplicationFee      = "Application Fee"
	LabelFundingScholarships = "Funding/Scholarships"
	LabelDuration            = "Duration"
	LabelGREGMATRequired     = "GRE/GMAT Required"
	LabelLettersOfRecQty     = "Letters of Rec Qty"
	LabelEnglishTest         = "English Test"
	LabelSOPEssayDone        = "SOP/Essay Done"
	LabelStatus              = "Status"
	LabelPortalLogin         = "Portal Login"
	LabelDecisionDate        = "Decision Date"
	LabelIsFavorite          = "Is Favorite"
)

// EditableLabels is every writable column, in sheet order.
var EditableLabels = []string{
	LabelSchoolName,
	LabelProgramTitle,
	LabelURL,
	LabelLocation,
	LabelContactEmail,
	LabelFitScore,
	LabelPros,
	LabelCons,
	LabelCurriculumFocus,
	LabelApplicationDeadline,
	LabelTuitionCost,
	LabelCurrency,
	LabelApplicationFee,
	LabelFundingScholarships,
	LabelDuration,
	LabelGREGMATRequired,
	LabelLettersOfRecQty,
	LabelEnglishTest,
	LabelSOPEssayDone,
	LabelStatus,
	LabelPortalLogin,
	LabelDecisionDate,
	LabelIsFavorite,
}

// SheetLabels is the full column set as returned by the store.
var SheetLabels = append([]string{LabelCalculatedRank}, EditableLabels...)

// WireRecord is a program as exchanged with the store: label -> value, where a
// value may be a string, a number, a native bool or the strings "TRUE"/"FALSE".
type WireRecord map[string]any

// Identity addresses a program for update and delete.
type Identity struct {
	SchoolName   string
	ProgramTitle string
}

func (id Identity) String() string {
	return id.SchoolName + " / " + id.ProgramTitle
}

func (w WireRecord) Identity() Identity {
	return Identity{
		SchoolName:   coerce.String(w[LabelSchoolName]),
		ProgramTitle: coerce.String(w[LabelProgramTitle]),
	}
}

// Clone returns a shallow copy; values are scalars so this is enough.
func (w WireRecord) Clone() WireRecord {
	out := make(WireRecord, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

func (w WireRecord) GetSchoolName() string   { return coerce.String(w[LabelSchoolName]) }
func (w WireRecord) GetProgramTitle() string { return coerce.String(w[LabelProgramTitle]) }
func (w WireRecord) GetLocation() string     { return coerce.String(w[LabelLocation]) }
func (w WireRecord) GetStatus() string       { return coerce.String(w[LabelStatus]) }
func (w WireRecord) Favorite() bool          { return coerce.Boolean(w[LabelIsFavorite]) }
