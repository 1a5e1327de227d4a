// internal/leadsource/static.go
package leadsource

import "github.com/rateworks/refi-outreach/internal/model"

func rate(v float64) *float64 { return &v }

// StaticSource serves the embedded demo pipeline (CRM audit snapshot)
// when no database is configured.
type StaticSource struct{}

func NewStaticSource() *StaticSource { return &StaticSource{} }

func (s *StaticSource) Fetch() ([]model.Loan, error) {
	return []model.Loan{
		{Name: "Megan Carter", Stage: "Funded", LoanNum: "4342859", Property: "9213 Ash Ave SE, Snoqualmie WA", LoanAmount: 1114750, Rate: rate(6.500), Program: "Jumbo", ClosingDate: "6/20/2025", BuyerAgent: "Barb Pexa"},
		{Name: "Chelsey Milton", Stage: "Application", LoanNum: "3010572614", Property: "TBD", LoanAmount: 546025, Rate: rate(6.750), Program: "Conventional", ClosingDate: "3/9/2026"},
		{Name: "Anuj Mittal", Stage: "Funded", LoanNum: "3010526", Property: "3493 NE Harrison St", LoanAmount: 850000, Rate: rate(6.875), Program: "Jumbo", ClosingDate: "11/12/2025", BuyerAgent: "Manu Vij"},
		{Name: "JIYEON PARK", Stage: "Funded", LoanNum: "3010542", Property: "13910 123rd Ave NE", LoanAmount: 720000, Rate: rate(6.625), Program: "Jumbo", ClosingDate: "12/1/2025", BuyerAgent: "Emma Park"},
		{Name: "Cooper White", Stage: "Application", LoanNum: "3010554", Property: "TBD", LoanAmount: 480000, Rate: rate(6.500), Program: "Conventional", BuyerAgent: "Derek Sarr"},
		{Name: "john thang", Stage: "Application", LoanNum: "4214710", Property: "TBD", LoanAmount: 350000, Rate: rate(6.875), Program: "Conventional", BuyerAgent: "lisa nguyen"},
		{Name: "Jared Larsen", Stage: "Funded", LoanNum: "4073624", Property: "18501 SE Newport Wy", LoanAmount: 600000, Rate: rate(7.125), Program: "Conventional", ClosingDate: "9/26/2023", BuyerAgent: "Karen Cor"},
		{Name: "Matthew Simon", Stage: "Application", Property: "1156 NW 58th St", LoanAmount: 425000, Rate: rate(6.750), Program: "Conventional"},
		{Name: "Chris Candelario", Stage: "Application", LoanNum: "4379189", Property: "TBD", LoanAmount: 390000, Rate: rate(6.625), Program: "Conventional", BuyerAgent: "Barb Pexa"},
		{Name: "Faezeh Amjadi", Stage: "Application", LoanNum: "4421329", Property: "TBD", LoanAmount: 375000, Rate: rate(6.500), Program: "Conventional"},
		{Name: "Stanley Gene", Stage: "Funded", LoanNum: "30105361", Property: "1352 Brewster Dr", LoanAmount: 550000, Rate: rate(6.750), Program: "Conventional", ClosingDate: "2/11/2026", BuyerAgent: "Kelly O'Go"},
		{Name: "Samantha Sim", Stage: "Funded", LoanNum: "3010535", Property: "206 1st Ave E", LoanAmount: 415200, Rate: rate(6.875), Program: "Conventional", ClosingDate: "12/4/2025", BuyerAgent: "Makenna K"},
		{Name: "Michael Lentz", Stage: "Funded", LoanNum: "3010536", Property: "10605 SE 30th St", LoanAmount: 520000, Rate: rate(6.625), Program: "Conventional", ClosingDate: "12/12/2025", BuyerAgent: "Barb Pexa"},
		{Name: "catherine Jin", Stage: "Funded", LoanNum: "4124925", Property: "3633 Beach Dr", LoanAmount: 750000, Rate: rate(7.250), Program: "Jumbo", ClosingDate: "1/22/2024", BuyerAgent: "Yao Lu"},
		{Name: "Catherine Jin", Stage: "Lost", Property: "3633 Beach Dr", Program: "Conventional"},
	}, nil
}
