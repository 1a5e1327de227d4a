// internal/service/template_service.go
package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	appErrors "github.com/rateworks/refi-outreach/internal/errors"
	"github.com/rateworks/refi-outreach/internal/model"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

// RenderTemplate substitutes every {placeholder} token with its value.
// A token with no matching variable fails with ErrTemplateRender naming
// the missing key; partial output is never returned.
func RenderTemplate(template string, vars map[string]string) (string, error) {
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if _, ok := vars[match[1]]; !ok {
			return "", appErrors.NewTemplateRender(match[1])
		}
	}

	result := template
	for k, v := range vars {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result, nil
}

// LeadVars builds the template variable set for one lead. Rates keep
// their natural precision; dollar amounts are comma-grouped with no
// cents, the way the cadence copy expects.
func LeadVars(lead *model.Lead, originator, nmls string) map[string]string {
	return map[string]string{
		"name":            lead.FirstName(),
		"current_rate":    formatRate(lead.CurrentRate),
		"market_rate":     formatRate(lead.MarketRate),
		"rate_delta":      formatRate(math.Abs(lead.RateDelta)),
		"monthly_savings": formatDollars(lead.MonthlySavings),
		"loan_amount":     formatDollars(lead.LoanAmount),
		"originator":      originator,
		"nmls":            nmls,
	}
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatDollars renders 1114750 as "1,114,750".
func formatDollars(v float64) string {
	whole := strconv.FormatInt(int64(math.Round(v)), 10)
	negative := strings.HasPrefix(whole, "-")
	if negative {
		whole = whole[1:]
	}

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}

	if negative {
		return "-" + b.String()
	}
	return b.String()
}
