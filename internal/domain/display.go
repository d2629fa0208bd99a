package domain

// DisplayRecord is what a table row or a card renders.
type DisplayRecord struct {
	Program

	CurrencySymbol string `json:"currency_symbol"`
	TuitionLabel   string `json:"tuition_label"` // "$55,000"
	FeeLabel       string `json:"fee_label"`
	FitLabel       string `json:"fit_label"`  // "9/10"
	RankLabel      string `json:"rank_label"` // "" when the store sent no rank
}
