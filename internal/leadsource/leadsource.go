// internal/leadsource/leadsource.go
package leadsource

import "github.com/rateworks/refi-outreach/internal/model"

// Source supplies raw pipeline records to the campaign builder.
// Column-name variance is the source's responsibility; records handed
// out are already normalized.
type Source interface {
	Fetch() ([]model.Loan, error)
}
