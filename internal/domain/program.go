package domain

// Status is the application stage of a program.
type Status string

const (
	StatusResearching Status = "Researching"
	StatusToApply     Status = "To Apply"
	StatusInProgress  Status = "In Progress"
	StatusSubmitted   Status = "Submitted"
	StatusInterview   Status = "Interview"
	StatusAccepted    Status = "Accepted"
	StatusRejected    Status = "Rejected"

	// StatusAll is the filter sentinel; it is never a valid program status.
	StatusAll = "All"
)

// Statuses lists every valid status in pipeline order.
var Statuses = []Status{
	StatusResearching,
	StatusToApply,
	StatusInProgress,
	StatusSubmitted,
	StatusInterview,
	StatusAccepted,
	StatusRejected,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// TestPolicy says whether GRE/GMAT scores are required.
type TestPolicy string

const (
	TestRequired TestPolicy = "Yes"
	TestNo       TestPolicy = "No"
	TestOptional TestPolicy = "Optional"
)

var TestPolicies = []TestPolicy{TestRequired, TestNo, TestOptional}

// Currencies are the codes the tracker knows a symbol for.
var Currencies = []string{"USD", "EUR", "GBP", "CAD", "AUD", "INR", "CNY", "JPY"}

// Defaults applied when a field is absent on the wire.
const (
	DefaultFitScore   = 5
	MinFitScore       = 1
	MaxFitScore       = 10
	DefaultCurrency   = "USD"
	DefaultStatus     = StatusResearching
	DefaultTestPolicy = TestOptional
)

// Program is the canonical, strictly typed record used by forms and business logic.
// Every program read from a store maps into this model, and every write maps from it.
type Program struct {
	// Identity
	SchoolName   string `json:"school_name"`
	ProgramTitle string `json:"program_title"`
	URL          string `json:"url"`
	Location     string `json:"location"`
	ContactEmail string `json:"contact_email"`

	// Fit
	FitScore        int    `json:"fit_score"`
	CurriculumFocus string `json:"curriculum_focus"`
	Pros            string `json:"pros"`
	Cons            string `json:"cons"`

	// Logistics
	ApplicationDeadline string  `json:"application_deadline"` // YYYY-MM-DD or ""
	TuitionCost         float64 `json:"tuition_cost"`
	Currency            string  `json:"currency"`
	ApplicationFee      float64 `json:"application_fee"`
	FundingScholarships string  `json:"funding_scholarships"`
	Duration            string  `json:"duration"`

	// Requirements
	GREGMATRequired TestPolicy `json:"gre_gmat_required"`
	LettersOfRecQty int        `json:"letters_of_rec_qty"`
	EnglishTest     string     `json:"english_test"`
	SOPEssayDone    bool       `json:"sop_essay_done"`

	// Status
	Status       Status `json:"status"`
	PortalLogin  string `json:"portal_login"`
	DecisionDate string `json:"decision_date"`
	IsFavorite   bool   `json:"is_favorite"`

	// CalculatedRank is computed by the store. Read-only: nil on new programs
	// and never sent back.
	CalculatedRank *float64 `json:"-"`
}

// NewProgram returns a blank program with the form defaults filled in.
func NewProgram(school, title string) Program {
	return Program{
		SchoolName:      school,
		ProgramTitle:    title,
		FitScore:        DefaultFitScore,
		Currency:        DefaultCurrency,
		GREGMATRequired: DefaultTestPolicy,
		Status:          DefaultStatus,
	}
}

func (p Program) Identity() Identity {
	return Identity{SchoolName: p.SchoolName, ProgramTitle: p.ProgramTitle}
}

// Accessors shared with WireRecord so both shapes can be filtered.

func (p Program) GetSchoolName() string   { return p.SchoolName }
func (p Program) GetProgramTitle() string { return p.ProgramTitle }
func (p Program) GetLocation() string     { return p.Location }
func (p Program) GetStatus() string       { return string(p.Status) }
func (p Program) Favorite() bool          { return p.IsFavorite }
