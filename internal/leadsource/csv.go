// internal/leadsource/csv.go
package leadsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rateworks/refi-outreach/internal/model"
)

// CSVSource parses borrower CSV exports. CRM exports vary in column
// naming ("Primary Borrower" vs "Name", "Phone" vs "Mobile"), so each
// field is resolved against a list of accepted headers.
type CSVSource struct {
	Reader io.Reader
}

func NewCSVSource(r io.Reader) *CSVSource {
	return &CSVSource{Reader: r}
}

func (s *CSVSource) Fetch() ([]model.Loan, error) {
	reader := csv.NewReader(s.Reader)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := map[string]int{}
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}

	pick := func(record []string, names ...string) string {
		for _, name := range names {
			if i, ok := index[name]; ok && i < len(record) && record[i] != "" {
				return strings.TrimSpace(record[i])
			}
		}
		return ""
	}

	loans := []model.Loan{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		loan := model.Loan{
			Name:     pick(record, "Primary Borrower", "Name"),
			Email:    pick(record, "Primary Borrower: Email", "Email"),
			Phone:    pick(record, "Phone", "Mobile"),
			Stage:    pick(record, "Stage"),
			LoanNum:  pick(record, "Loan Number", "LoanNum"),
			Property: pick(record, "Subject Property: Address: 1", "Property"),
			Program:  pick(record, "Program"),
		}
		if loan.Name == "" {
			loan.Name = "Unknown"
		}
		if loan.Stage == "" {
			loan.Stage = "Funded"
		}
		if loan.Program == "" {
			loan.Program = "Conventional"
		}

		loan.LoanAmount = parseAmount(pick(record, "Total Loan Amount", "Amount"))
		if rate := parseRate(pick(record, "Interest Rate", "Rate")); rate > 0 {
			loan.Rate = &rate
		}

		loans = append(loans, loan)
	}
	return loans, nil
}

// parseAmount strips currency formatting ("$1,114,750" -> 1114750).
func parseAmount(raw string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	if cleaned == "" {
		return 0
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return amount
}

// parseRate strips a trailing percent sign ("6.5%" -> 6.5).
func parseRate(raw string) float64 {
	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if cleaned == "" {
		return 0
	}
	rate, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return rate
}
