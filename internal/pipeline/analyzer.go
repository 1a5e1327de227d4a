// internal/pipeline/analyzer.go
package pipeline

import (
	"math"

	"github.com/rateworks/refi-outreach/internal/model"
)

// Refi scoring thresholds. A funded loan scoring RefiReadyScore or
// higher counts as refi-ready.
const (
	RefiReadyScore = 70
	maxRefiScore   = 99
)

// Analyze enriches every pipeline loan with refi opportunity numbers
// against the given market rates and aggregates pipeline totals.
func Analyze(loans []model.Loan, rates model.Rates) model.PipelineSummary {
	summary := model.PipelineSummary{
		Loans: make([]model.LoanAnalysis, 0, len(loans)),
		Rates: rates,
	}

	for _, loan := range loans {
		if loan.LoanAmount > 0 {
			summary.TotalPipeline += loan.LoanAmount
		}
		if loan.Stage == "Funded" {
			summary.FundedCount++
		}

		la := model.LoanAnalysis{Loan: loan, MarketRate: rates.ForProgram(loan.Program)}

		if loan.Rate != nil && la.MarketRate > 0 {
			delta := *loan.Rate - la.MarketRate
			la.RateDelta = &delta
			if delta > 0 {
				current := MonthlyPayment(loan.LoanAmount, *loan.Rate, 30)
				proposed := MonthlyPayment(loan.LoanAmount, la.MarketRate, 30)
				la.MonthlySavings = math.Round(math.Max(0, current-proposed)*100) / 100
				la.RefiScore = scoreLoan(delta, loan.LoanAmount)
			}
		}

		if la.RefiScore >= RefiReadyScore && loan.Stage == "Funded" {
			summary.RefiReadyCount++
			summary.TotalMonthlySavings += la.MonthlySavings
		}

		summary.Loans = append(summary.Loans, la)
	}

	summary.TotalMonthlySavings = math.Round(summary.TotalMonthlySavings*100) / 100
	return summary
}

// scoreLoan weighs the rate delta against the loan size.
func scoreLoan(rateDelta, loanAmount float64) int {
	score := 0

	switch {
	case rateDelta >= 0.75:
		score += 60
	case rateDelta >= 0.50:
		score += 40
	case rateDelta >= 0.25:
		score += 20
	default:
		score += 5
	}

	switch {
	case loanAmount >= 800000:
		score += 30
	case loanAmount >= 500000:
		score += 20
	case loanAmount >= 300000:
		score += 10
	}

	if score > maxRefiScore {
		score = maxRefiScore
	}
	return score
}

// MonthlyPayment is the standard amortized payment for a fixed-rate
// loan. Rate is an annual percentage, term in years.
func MonthlyPayment(principal, annualRate float64, years int) float64 {
	if principal <= 0 || annualRate <= 0 {
		return 0
	}
	r := annualRate / 100 / 12
	n := float64(years * 12)
	factor := math.Pow(1+r, n)
	return principal * (r * factor) / (factor - 1)
}
