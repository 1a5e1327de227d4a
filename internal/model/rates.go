// internal/model/rates.go
package model

import "time"

// Rates holds the current 30-year market rates per loan program.
type Rates struct {
	Conventional30 float64   `json:"conventional_30"`
	Jumbo30        float64   `json:"jumbo_30"`
	FHA30          float64   `json:"fha_30"`
	VA30           float64   `json:"va_30"`
	LastUpdated    time.Time `json:"last_updated"`
}

// ForProgram maps a loan program to its market rate. Unknown programs
// fall back to conventional.
func (r Rates) ForProgram(program string) float64 {
	switch program {
	case "Jumbo":
		return r.Jumbo30
	case "FHA":
		return r.FHA30
	case "VA":
		return r.VA30
	default:
		return r.Conventional30
	}
}
