// internal/model/loan.go
package model

// Loan is one pipeline record from a lead source (CSV export or the
// seeded demo pipeline).
type Loan struct {
	Name        string   `db:"name" json:"name"`
	Stage       string   `db:"stage" json:"stage"`
	LoanNum     string   `db:"loan_num" json:"loanNum"`
	Property    string   `db:"property" json:"property"`
	LoanAmount  float64  `db:"loan_amount" json:"loanAmount"`
	Rate        *float64 `db:"rate" json:"rate"`
	Program     string   `db:"program" json:"program"`
	ClosingDate string   `db:"closing_date" json:"closingDate,omitempty"`
	Email       string   `db:"email" json:"email,omitempty"`
	Phone       string   `db:"phone" json:"phone,omitempty"`
	BuyerAgent  string   `db:"buyer_agent" json:"buyerAgent,omitempty"`
}

// LoanAnalysis is a Loan enriched with refi opportunity numbers against
// current market rates.
type LoanAnalysis struct {
	Loan
	MarketRate     float64  `json:"marketRate"`
	RateDelta      *float64 `json:"rateDelta"`
	MonthlySavings float64  `json:"monthlySavings"`
	RefiScore      int      `json:"refiScore"`
}

// PipelineSummary is the result of analyzing the full pipeline.
type PipelineSummary struct {
	Loans               []LoanAnalysis `json:"loans"`
	TotalPipeline       float64        `json:"total_pipeline"`
	FundedCount         int            `json:"funded_count"`
	RefiReadyCount      int            `json:"refi_ready_count"`
	TotalMonthlySavings float64        `json:"total_monthly_savings"`
	Rates               Rates          `json:"rates"`
}
